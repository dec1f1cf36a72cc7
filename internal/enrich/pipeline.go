package enrich

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"coffeeshop/pkg/logger"
)

// Pipeline coordinates the execution of a sequence of stages for an item.
// Steps within the same stage run in parallel, and stages themselves run
// sequentially. Step errors are logged and do not stop processing unless
// they wrap ErrHalt.
type Pipeline[T any] struct {
	stages []Stage[T]
	logger *zap.Logger
}

// NewPipeline constructs a Pipeline from the provided stages. Stages will be
// applied to each item in order.
func NewPipeline[T any](log *zap.Logger, stages ...Stage[T]) *Pipeline[T] {
	log = logger.OrNop(log)
	return &Pipeline[T]{stages: stages, logger: log}
}

// Run applies every stage to item and returns the step errors in the order
// the steps were declared. It reports whether all stages ran.
func (p *Pipeline[T]) Run(ctx context.Context, item *T) (bool, []error) {
	var errs []error
	for i, stage := range p.stages {
		stageErrs := make([]error, len(stage.steps))
		var wg sync.WaitGroup
		for j, step := range stage.steps {
			wg.Add(1)
			go func(j int, step Step[T]) {
				defer wg.Done()
				stageErrs[j] = step(ctx, item)
			}(j, step)
		}
		wg.Wait() // stage barrier: ensure all steps finished before the next stage

		halted := false
		for _, err := range stageErrs {
			if err == nil {
				continue
			}
			errs = append(errs, err)
			p.logger.Warn("step failed", zap.Int("stage", i), zap.String("stage_name", stage.name), zap.Error(err))
			if errors.Is(err, ErrHalt) {
				halted = true
			}
		}
		if halted {
			return false, errs
		}
		if ctx.Err() != nil {
			return false, append(errs, ctx.Err())
		}
	}
	return true, errs
}
