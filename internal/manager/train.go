package manager

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"mlserved/internal/mllib"
	"mlserved/pkg/apidata"
	"mlserved/pkg/types"
)

// Train starts a training job. Async jobs (the default) run detached from
// ctx and are observed through TrainStatus; sync jobs run on ctx and return
// the backend output.
func (m *Manager) Train(ctx context.Context, req types.TrainRequest) (types.TrainResponse, error) {
	svc, err := m.lookup(req.Service)
	if err != nil {
		return types.TrainResponse{}, err
	}
	if !svc.lib.CanTrain() {
		return types.TrainResponse{}, mllib.ErrBadParam("service " + svc.name + " does not support training")
	}
	if m.closed.Load() {
		return types.TrainResponse{}, tooBusyError{service: svc.name}
	}

	async := req.Async == nil || *req.Async
	parent := ctx
	if async {
		parent = m.baseCtx
	}
	var (
		jctx   context.Context
		cancel context.CancelFunc
	)
	if m.trainTimeout > 0 {
		jctx, cancel = context.WithTimeout(parent, m.trainTimeout)
	} else {
		jctx, cancel = context.WithCancel(parent)
	}
	job := newTrainJob(uuid.NewString(), cancel)

	// Delete marks draining and picks the running job under m.mu, so the
	// job is either refused here or visible to it.
	m.mu.Lock()
	if svc.state == StateDraining {
		m.mu.Unlock()
		cancel()
		return types.TrainResponse{}, tooBusyError{service: svc.name}
	}
	if !svc.lib.BeginTraining() {
		m.mu.Unlock()
		cancel()
		return types.TrainResponse{}, trainingBusyError{service: svc.name}
	}
	svc.jobs = append(svc.jobs, job)
	m.pruneJobs(svc)
	m.mu.Unlock()

	trainJobsRunning.Inc()
	m.log.Info().Str("service", svc.name).Str("job", job.id).Bool("async", async).Msg("training started")
	m.publisher.Publish(Event{Name: EventTrainStart, Service: svc.name, Fields: map[string]any{"job": job.id}})

	ad := requestData(req.Parameters, req.Data)
	if async {
		m.jobs.Go(func() { m.runJob(jctx, svc, job, ad) })
		return types.TrainResponse{Service: svc.name, TrainJobInfo: job.info()}, nil
	}
	m.runJob(jctx, svc, job, ad)
	resp := m.trainResponse(svc, job, false)
	job.mu.Lock()
	cause := job.cause
	job.mu.Unlock()
	return resp, cause
}

// runJob runs the backend training and records its outcome. The service's
// training flag is released on every exit path.
func (m *Manager) runJob(ctx context.Context, svc *service, job *trainJob, ad apidata.APIData) {
	out := apidata.New()
	code := 1
	var err error
	defer func() {
		if r := recover(); r != nil {
			code = 1
			err = mllib.ErrInternal(fmt.Sprintf("training panicked: %v", r))
			m.log.Error().Str("service", svc.name).Str("job", job.id).Interface("panic", r).Msg("training panicked")
		}
		svc.lib.EndTraining()
		state := JobFinished
		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			state = JobCanceled
			if err == nil {
				err = context.Canceled
			}
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			state = JobError
			if err == nil {
				err = mllib.ErrInternal("training timed out")
			}
		case err != nil || code != 0:
			state = JobError
			if err == nil {
				msg := out.GetString("error", "")
				if msg == "" {
					msg = "training failed with code " + strconv.Itoa(code)
				}
				err = mllib.ErrInternal(msg)
			}
		}
		job.cancel()
		job.finish(state, code, err, out)

		trainJobsRunning.Dec()
		trainJobsTotal.WithLabelValues(string(state)).Inc()
		ev := m.log.Info()
		if state == JobError {
			ev = m.log.Warn().Err(err)
		}
		ev.Str("service", svc.name).Str("job", job.id).Str("status", string(state)).Int("code", code).Msg("training ended")
		m.publisher.Publish(Event{Name: EventTrainEnd, Service: svc.name, Fields: map[string]any{"job": job.id, "status": string(state), "code": code}})
	}()
	code, err = svc.lib.Train(ctx, ad, out)
}

// pruneJobs drops the oldest finished jobs beyond jobHistory. Callers hold mu.
func (m *Manager) pruneJobs(svc *service) {
	for len(svc.jobs) > m.jobHistory {
		idx := -1
		for i, j := range svc.jobs {
			if j.status() != JobRunning {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		svc.jobs = append(svc.jobs[:idx], svc.jobs[idx+1:]...)
	}
}

// TrainStatus reports a job of the service; an empty job id selects the most
// recent one. The body carries the service's current measures, and their
// per-iteration history when history is set.
func (m *Manager) TrainStatus(name, jobID string, history bool) (types.TrainResponse, error) {
	svc, err := m.lookup(name)
	if err != nil {
		return types.TrainResponse{}, err
	}
	m.mu.RLock()
	job := svc.job(jobID)
	m.mu.RUnlock()
	if job == nil {
		if jobID == "" {
			jobID = "(none)"
		}
		return types.TrainResponse{}, ErrJobNotFound(jobID)
	}
	return m.trainResponse(svc, job, history), nil
}

func (m *Manager) trainResponse(svc *service, job *trainJob, history bool) types.TrainResponse {
	body := apidata.New()
	if job.status() != JobRunning {
		body = job.output()
	}
	svc.lib.CollectMeasures(body)
	if history {
		svc.lib.CollectMeasuresHistory(body)
	}
	return types.TrainResponse{Service: svc.name, TrainJobInfo: job.info(), Body: body}
}

// TrainStop cancels a running job (the current one when jobID is empty) and
// waits for it to end or for ctx.
func (m *Manager) TrainStop(ctx context.Context, name, jobID string) (types.TrainJobInfo, error) {
	svc, err := m.lookup(name)
	if err != nil {
		return types.TrainJobInfo{}, err
	}
	m.mu.RLock()
	var job *trainJob
	if jobID == "" {
		job = svc.runningJob()
	} else {
		job = svc.job(jobID)
	}
	m.mu.RUnlock()
	if job == nil {
		if jobID == "" {
			jobID = "(running)"
		}
		return types.TrainJobInfo{}, ErrJobNotFound(jobID)
	}
	job.cancel()
	select {
	case <-job.done:
	case <-ctx.Done():
		return job.info(), ctx.Err()
	}
	return job.info(), nil
}
