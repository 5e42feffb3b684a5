package control

import (
	"errors"
	"fmt"
)

var ErrPanic = errors.New("control: unit panicked")

// Join reports the outcome of one spawned unit.
type Join struct {
	done chan struct{}
	err  error
}

// Spawn runs fn on its own goroutine. A panic inside fn is recovered and
// reported as ErrPanic.
func Spawn(fn func() error) *Join {
	j := &Join{done: make(chan struct{})}
	go func() {
		defer close(j.done)
		defer func() {
			if v := recover(); v != nil {
				j.err = fmt.Errorf("%w: %v", ErrPanic, v)
			}
		}()
		j.err = fn()
	}()
	return j
}

// Finished returns a join that has already resolved with err.
func Finished(err error) *Join {
	j := &Join{done: make(chan struct{}), err: err}
	close(j.done)
	return j
}

// Done is closed once the unit has returned.
func (j *Join) Done() <-chan struct{} {
	return j.done
}

// Err returns the unit's outcome. It is only meaningful after Done is closed.
func (j *Join) Err() error {
	select {
	case <-j.done:
		return j.err
	default:
		return nil
	}
}

// Wait blocks until the unit has returned.
func (j *Join) Wait() error {
	<-j.done
	return j.err
}
