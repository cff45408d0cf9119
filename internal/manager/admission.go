package manager

import (
	"context"
	"time"
)

// beginPredict reserves a queue slot and then an in-flight slot of svc.
// Returns a release func to be deferred.
func (m *Manager) beginPredict(ctx context.Context, svc *service) (func(), error) {
	m.mu.RLock()
	draining := svc.state == StateDraining
	m.mu.RUnlock()
	if draining || m.closed.Load() {
		return func() {}, tooBusyError{service: svc.name}
	}
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case svc.queueCh <- struct{}{}:
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{service: svc.name}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-svc.queueCh
		}
	}()
	select {
	case svc.genCh <- struct{}{}:
		acquired = true
		return func() { <-svc.genCh; <-svc.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{service: svc.name}
	}
}
