package useradmin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BulkExecutor applies the single-user deletion workflow independently
// across a list of principal references. One item's failure never aborts
// the others, and the result list always matches input order.
type BulkExecutor struct {
	manager *LifecycleManager
	workers int
	logger  Logger
}

type BulkOption func(*BulkExecutor)

func NewBulkExecutor(manager *LifecycleManager, opts ...BulkOption) *BulkExecutor {
	e := &BulkExecutor{
		manager: manager,
		workers: 1,
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithWorkers bounds how many per-item delete workflows run in flight
// at once. The default of 1 processes refs sequentially.
func WithWorkers(n int) BulkOption {
	return func(e *BulkExecutor) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithBulkLogger(l Logger) BulkOption {
	return func(e *BulkExecutor) {
		if l != nil {
			e.logger = l
		}
	}
}

// DeleteMany deletes every referenced principal, isolating per-item
// failures. revokeTokens applies uniformly across the batch.
func (e *BulkExecutor) DeleteMany(ctx context.Context, refs []string, revokeTokens bool) *BulkResult {
	results := make([]OperationResult, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, ref := range refs {
		g.Go(func() error {
			results[i] = e.deleteOne(gctx, ref, revokeTokens)
			return nil
		})
	}

	// worker funcs never return errors, failures are data
	_ = g.Wait()

	sum := &BulkResult{Results: results}

	e.logger.Info("bulk delete complete",
		"total", len(refs),
		"succeeded", sum.SuccessCount(),
		"failed", sum.FailureCount(),
	)

	return sum
}

func (e *BulkExecutor) deleteOne(ctx context.Context, ref string, revokeTokens bool) (result OperationResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic during bulk delete item", "ref", ref, "panic", r)
			result = OperationResult{
				Ref:    ref,
				Status: StatusFailed,
				Detail: fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	res, err := e.manager.DeleteUser(ctx, ref, revokeTokens)
	if err != nil {
		if res != nil {
			return *res
		}
		return OperationResult{
			Ref:    ref,
			Status: StatusFailed,
			Detail: err.Error(),
		}
	}

	return *res
}
