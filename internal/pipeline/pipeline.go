// Package pipeline provides a minimal step sequencer. A pipeline is an
// ordered list of steps over a mutable context value; each step decides
// whether to continue, skip the rest of the pipeline, or abort with an
// error.
package pipeline

import (
	"context"
	"fmt"

	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// Action is the outcome of a step execution
type Action int

const (
	// Continue advances to the next step
	Continue Action = iota
	// Skip terminates the pipeline successfully (nothing left to do)
	Skip
	// Abort terminates the pipeline with the step's error
	Abort
)

// Step is one stage of a pipeline over context type C
type Step[C any] interface {
	// Name identifies the step in logs and errors
	Name() string

	// ShouldExecute reports whether the step applies to the current context
	ShouldExecute(c *C) bool

	// Execute runs the step, mutating the context. When it returns
	// Abort the accompanying error is surfaced as the pipeline error.
	Execute(ctx context.Context, c *C) (Action, error)
}

// Pipeline is an ordered list of steps sharing a context value
type Pipeline[C any] struct {
	name  string
	steps []Step[C]
}

// New creates a pipeline with the given steps
func New[C any](name string, steps ...Step[C]) *Pipeline[C] {
	return &Pipeline[C]{name: name, steps: steps}
}

// Run executes the steps in order. Steps whose ShouldExecute returns
// false are passed over. A Skip result ends the run successfully; an
// Abort result ends it with the step's error.
func (p *Pipeline[C]) Run(ctx context.Context, c *C) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", p.name, util.ErrCancelled)
		}

		if !step.ShouldExecute(c) {
			util.DebugLog("Pipeline %s: skipping step %s", p.name, step.Name())
			continue
		}

		util.DebugLog("Pipeline %s: executing step %s", p.name, step.Name())
		action, err := step.Execute(ctx, c)
		switch action {
		case Continue:
			// next step
		case Skip:
			util.DebugLog("Pipeline %s: step %s ended the run", p.name, step.Name())
			return nil
		case Abort:
			if err == nil {
				err = fmt.Errorf("step aborted")
			}
			return fmt.Errorf("%s: step %s: %w", p.name, step.Name(), err)
		default:
			return fmt.Errorf("%s: step %s returned unknown action %d", p.name, step.Name(), action)
		}
	}
	return nil
}

// StepFunc adapts a function to the Step interface
type StepFunc[C any] struct {
	StepName string
	When     func(c *C) bool
	Fn       func(ctx context.Context, c *C) (Action, error)
}

func (s StepFunc[C]) Name() string { return s.StepName }

func (s StepFunc[C]) ShouldExecute(c *C) bool {
	if s.When == nil {
		return true
	}
	return s.When(c)
}

func (s StepFunc[C]) Execute(ctx context.Context, c *C) (Action, error) {
	return s.Fn(ctx, c)
}
