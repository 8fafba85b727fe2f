package provisioning

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"
)

// Executor runs at most one task at a time. Submissions while a task is
// running are rejected, never queued.
type Executor struct {
	busy atomic.Bool
	wg   sync.WaitGroup
}

// NewExecutor returns an idle executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// TrySubmit starts task in the background if the slot is free and reports
// whether it did. The slot is released when task returns or panics; a panic
// is handed to onPanic.
func (e *Executor) TrySubmit(task func(), onPanic func(error)) bool {
	accepted, _ := e.TrySubmitIf(nil, task, onPanic)
	return accepted
}

// TrySubmitIf is TrySubmit with an admission check. admit runs while the
// slot is held; a non-nil error releases the slot, skips task and is
// returned.
func (e *Executor) TrySubmitIf(admit func() error, task func(), onPanic func(error)) (bool, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return false, nil
	}
	if admit != nil {
		if err := admit(); err != nil {
			e.busy.Store(false)
			return false, err
		}
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.busy.Store(false)
		defer func() {
			if r := recover(); r != nil && onPanic != nil {
				onPanic(fmt.Errorf("%v", r))
			}
		}()
		task()
	}()
	return true, nil
}

// Busy reports whether a task currently holds the slot.
func (e *Executor) Busy() bool {
	return e.busy.Load()
}

// Wait blocks until the running task, if any, has finished.
func (e *Executor) Wait() {
	e.wg.Wait()
}
