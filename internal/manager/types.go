package manager

import (
	"context"
	"sync"
	"time"

	"mlserved/internal/mllib"
	"mlserved/internal/model"
	"mlserved/pkg/apidata"
	"mlserved/pkg/types"
)

// State represents the lifecycle state of a service.
type State string

const (
	StateReady    State = "ready"
	StateDraining State = "draining"
)

// JobStatus is the state of a training job.
type JobStatus string

const (
	JobRunning  JobStatus = "running"
	JobFinished JobStatus = "finished"
	JobError    JobStatus = "error"
	JobCanceled JobStatus = "canceled"
)

// Factory builds an uninitialized backend for a named service.
type Factory func(name string, mdl model.Model) (mllib.Service, error)

// service is one registered backend instance.
type service struct {
	name        string
	mllib       string
	description string
	params      apidata.APIData
	lib         mllib.Service
	created     time.Time
	state       State
	// Queueing primitives
	genCh   chan struct{} // in-flight predictions (1 for offline backends)
	queueCh chan struct{} // buffered: queue slots
	jobs    []*trainJob   // oldest first; guarded by Manager.mu
}

func (s *service) runningJob() *trainJob {
	for i := len(s.jobs) - 1; i >= 0; i-- {
		if s.jobs[i].status() == JobRunning {
			return s.jobs[i]
		}
	}
	return nil
}

func (s *service) job(id string) *trainJob {
	if id == "" {
		if len(s.jobs) == 0 {
			return nil
		}
		return s.jobs[len(s.jobs)-1]
	}
	for _, j := range s.jobs {
		if j.id == id {
			return j
		}
	}
	return nil
}

// trainJob tracks a single Train call.
type trainJob struct {
	id      string
	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}

	mu    sync.Mutex
	state JobStatus
	code  int
	cause error
	ended time.Time
	out   apidata.APIData
}

func newTrainJob(id string, cancel context.CancelFunc) *trainJob {
	return &trainJob{
		id:      id,
		started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
		state:   JobRunning,
	}
}

func (j *trainJob) status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *trainJob) finish(state JobStatus, code int, cause error, out apidata.APIData) {
	j.mu.Lock()
	j.state = state
	j.code = code
	j.cause = cause
	j.out = out
	j.ended = time.Now()
	j.mu.Unlock()
	close(j.done)
}

func (j *trainJob) info() types.TrainJobInfo {
	j.mu.Lock()
	defer j.mu.Unlock()
	end := j.ended
	if end.IsZero() {
		end = time.Now()
	}
	ji := types.TrainJobInfo{
		Job:         j.id,
		Status:      string(j.state),
		Code:        j.code,
		StartedUnix: j.started.Unix(),
		ElapsedMS:   end.Sub(j.started).Milliseconds(),
	}
	if j.cause != nil {
		ji.Error = j.cause.Error()
	}
	return ji
}

// output returns a copy of the backend output of a finished job.
func (j *trainJob) output() apidata.APIData {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := apidata.New()
	for k, v := range j.out {
		out[k] = v
	}
	return out
}
