package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/madeup/vm"
	"github.com/chazu/madeup/vm/dist"
)

// ErrWorkerStopped is returned for work submitted after Stop.
var ErrWorkerStopped = errors.New("run worker stopped")

// runRequest is a unit of work to be executed on the worker goroutine.
type runRequest struct {
	fn   func() interface{}
	done chan runResult
}

// runResult holds the return value of a unit of work.
type runResult struct {
	value interface{}
	err   error
}

// RunWorker executes interpreter work one unit at a time on a dedicated
// goroutine. Runs are independent, but sessions are not safe for
// concurrent use and every run holds a full scene in memory, so the
// server funnels all evaluation through one worker.
type RunWorker struct {
	base     []vm.Option
	requests chan runRequest
	quit     chan struct{}
	stop     sync.Once
}

// NewRunWorker creates a RunWorker and starts the processing goroutine.
// base options apply to every Interpret call.
func NewRunWorker(base ...vm.Option) *RunWorker {
	w := &RunWorker{
		base:     base,
		requests: make(chan runRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// loop processes requests sequentially.
func (w *RunWorker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs fn, recovering from panics.
func (w *RunWorker) execute(fn func() interface{}) runResult {
	var result runResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("run panicked: %v", r)
				result.err = fmt.Errorf("%v", r)
			}
		}()
		result.value = fn()
	}()
	return result
}

// Do submits fn for execution on the worker goroutine and blocks until it
// completes or ctx is done. A panic in fn is returned as an error.
func (w *RunWorker) Do(ctx context.Context, fn func() interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-w.quit:
		return nil, ErrWorkerStopped
	default:
	}

	req := runRequest{
		fn:   fn,
		done: make(chan runResult, 1),
	}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, ErrWorkerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case result := <-req.done:
		return result.value, result.err
	case <-w.quit:
		return nil, ErrWorkerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Interpret runs source with the worker's base options followed by opts
// and reports the outcome. A failed program still yields a report; the
// error is reserved for the worker itself.
func (w *RunWorker) Interpret(ctx context.Context, source string, opts ...vm.Option) (*dist.Report, error) {
	all := append(append([]vm.Option(nil), w.base...), opts...)
	value, err := w.Do(ctx, func() interface{} {
		result, runErr := vm.Interpret(source, all...)
		return dist.NewReport(result, runErr)
	})
	if err != nil {
		return nil, err
	}
	return value.(*dist.Report), nil
}

// Stop shuts down the worker goroutine. It is safe to call more than once.
func (w *RunWorker) Stop() {
	w.stop.Do(func() { close(w.quit) })
}
