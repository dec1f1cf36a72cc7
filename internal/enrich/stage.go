// Package enrich provides a small, generic pipeline abstraction that allows
// running independent steps in parallel within a stage, while enforcing
// sequential execution between stages.
package enrich

import (
	"context"
	"errors"
)

// ErrHalt, when returned (or wrapped) by a step, stops the remaining stages
// for the current item. The other steps of the same stage still finish.
var ErrHalt = errors.New("halt pipeline")

// Step represents a single operation that mutates the given item.
// Implementations should be safe to run concurrently with other steps in the
// same stage operating on the same item. If a step fails it should return an
// error; the pipeline will log the error and continue.
//
// Example:
//
//	func fetchShop(ctx context.Context, l *load) error { l.shop = ...; return nil }
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups a set of steps that are safe to execute in parallel for a
// single item.
//
// Note: Step functions must coordinate on shared fields if they might write to
// the same location concurrently.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

// NewStage constructs a Stage from the provided steps.
func NewStage[T any](steps ...Step[T]) Stage[T] {
	return Stage[T]{steps: steps}
}

// Named returns a copy of the stage labelled for logging.
func (s Stage[T]) Named(name string) Stage[T] {
	s.name = name
	return s
}
