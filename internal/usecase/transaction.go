package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Transaction runs a sequence of steps across stores that share no database
// transaction. When a step fails, the compensations of the steps that already
// succeeded run in reverse order.
type Transaction struct {
	operations    []Operation
	compensations []Compensation
	logger        *zap.Logger
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type Compensation struct {
	Name string
	Fn   func(context.Context) error
}

func NewTransaction(logger *zap.Logger) *Transaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transaction{logger: logger}
}

// AddStep registers an operation and its compensation. A nil compensation
// means the step has nothing to undo.
func (t *Transaction) AddStep(name string, fn, compensate func(context.Context) error) {
	t.operations = append(t.operations, Operation{Name: name, Fn: fn})
	t.compensations = append(t.compensations, Compensation{Name: name, Fn: compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", op.Name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAtIndex int) {
	for i := failedAtIndex - 1; i >= 0; i-- {
		comp := t.compensations[i]
		if comp.Fn == nil {
			continue
		}
		// Compensations must run even when the request context is gone.
		if err := comp.Fn(context.WithoutCancel(ctx)); err != nil {
			t.logger.Error("compensation failed, manual cleanup required",
				zap.String("step", comp.Name), zap.Error(err))
		}
	}
}
