package graceful

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"coffeeshop/pkg/logger"
)

// Context creates a context that is canceled when an OS interrupt signal is received.
// This allows for a clean shutdown of the application.
func Context(ctx context.Context, log *zap.Logger) (context.Context, context.CancelFunc) {
	log = logger.OrNop(log)
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info("received termination signal, starting graceful shutdown", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
