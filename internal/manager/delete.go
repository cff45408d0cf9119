package manager

import (
	"time"

	"mlserved/internal/mllib"
)

// Clear modes accepted by Delete.
const (
	ClearNone = ""
	ClearMem  = "mem"
	ClearLib  = "lib"
	ClearFull = "full"
)

// Delete drains and removes a service.
//   - Sets the service to draining to reject new predictions and jobs.
//   - Cancels a running training job and waits up to drainTimeout for it and
//     for in-flight predictions.
//   - Applies clear: "" and "mem" only release memory, "lib" also removes
//     backend artifacts, "full" wipes the model repository.
//
// The service is unregistered even when clearing fails; the clearing error
// is returned.
func (m *Manager) Delete(name, clear string) error {
	switch clear {
	case ClearNone, ClearMem, ClearLib, ClearFull:
	default:
		return mllib.ErrBadParam("unknown clear mode " + `"` + clear + `"` + ": expected mem, lib or full")
	}
	m.mu.Lock()
	svc := m.services[name]
	if svc == nil {
		m.mu.Unlock()
		return ErrServiceNotFound(name)
	}
	if svc.state == StateDraining {
		m.mu.Unlock()
		return tooBusyError{service: name}
	}
	svc.state = StateDraining
	job := svc.runningJob()
	m.mu.Unlock()

	deadline := time.Now().Add(m.drainTimeout)
	if job != nil {
		job.cancel()
		select {
		case <-job.done:
		case <-time.After(m.drainTimeout):
			m.publisher.Publish(Event{Name: EventDrainTimeout, Service: name, Fields: map[string]any{"job": job.id}})
		}
	}
	for {
		qlen := len(svc.queueCh)
		inflight := len(svc.genCh)
		if inflight == 0 && qlen == 0 {
			break
		}
		if time.Now().After(deadline) {
			m.publisher.Publish(Event{Name: EventDrainTimeout, Service: name, Fields: map[string]any{"inflight": inflight, "queue": qlen}})
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	m.mu.Lock()
	delete(m.services, name)
	count := len(m.services)
	m.mu.Unlock()
	servicesGauge.Set(float64(count))

	var err error
	switch clear {
	case ClearLib:
		err = svc.lib.Clear(svc.params)
		closeService(svc)
	case ClearFull:
		closeService(svc)
		err = svc.lib.ClearFull()
	default:
		closeService(svc)
	}
	ev := m.log.Info()
	if err != nil {
		ev = m.log.Error().Err(err)
	}
	ev.Str("service", name).Str("clear", clear).Msg("service deleted")
	m.publisher.Publish(Event{Name: EventServiceDelete, Service: name, Fields: map[string]any{"clear": clear}})
	return err
}
