package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mlserved/internal/mllib"
	"mlserved/internal/model"
	"mlserved/pkg/apidata"
	"mlserved/pkg/types"
)

type fakeInput struct{}
type fakeOutput struct{}

// fakeBackend trains until released or canceled.
type fakeBackend struct {
	*mllib.Lib[fakeInput, fakeOutput, model.Model]
	release    chan struct{}
	started    chan struct{}
	startOnce  sync.Once
	panicTrain bool
	cleared    atomic.Bool
	closed     atomic.Bool
}

func (f *fakeBackend) Init(ad apidata.APIData) error {
	if ad.GetBool("fail_init", false) {
		return mllib.ErrBadParam("init refused")
	}
	return nil
}

func (f *fakeBackend) Clear(apidata.APIData) error { f.cleared.Store(true); return nil }

func (f *fakeBackend) Train(ctx context.Context, ad apidata.APIData, out apidata.APIData) (int, error) {
	f.startOnce.Do(func() { close(f.started) })
	if f.panicTrain {
		panic("boom")
	}
	f.ClearAllMeasPerIter()
	f.AddMeasPerIter("loss", 1)
	f.AddMeasPerIter("loss", 0.5)
	f.AddMeas("loss", 0.5)
	select {
	case <-f.release:
		out.Add("data_len", len(ad.GetStrings("data")))
		return 0, nil
	case <-ctx.Done():
		out.Add("error", "canceled")
		return 1, nil
	}
}

func (f *fakeBackend) Predict(_ context.Context, ad apidata.APIData, out apidata.APIData) (int, error) {
	out.Add("predictions", ad.GetStrings("data"))
	return 0, nil
}

func (f *fakeBackend) Status() int { return 0 }

func (f *fakeBackend) Close() error { f.closed.Store(true); return nil }

// fakeBackends is a Factory that remembers what it built.
type fakeBackends struct {
	online     bool
	noTrain    bool
	panicTrain bool
	mu         sync.Mutex
	built      map[string]*fakeBackend
}

func (fb *fakeBackends) factory(name string, mdl model.Model) (mllib.Service, error) {
	lib := mllib.New("fake", fakeInput{}, fakeOutput{}, mdl)
	lib.HasTrain = !fb.noTrain
	lib.Online = fb.online
	b := &fakeBackend{
		Lib:        lib,
		release:    make(chan struct{}),
		started:    make(chan struct{}),
		panicTrain: fb.panicTrain,
	}
	fb.mu.Lock()
	if fb.built == nil {
		fb.built = make(map[string]*fakeBackend)
	}
	fb.built[name] = b
	fb.mu.Unlock()
	return b, nil
}

func (fb *fakeBackends) get(name string) *fakeBackend {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.built[name]
}

func newTestManager(t *testing.T, fb *fakeBackends) (*Manager, *MemoryPublisher) {
	t.Helper()
	pub := NewMemoryPublisher()
	m := NewWithConfig(ManagerConfig{
		ReposDir:     t.TempDir(),
		MaxWait:      time.Second,
		DrainTimeout: time.Second,
		Backends:     map[string]Factory{"fake": fb.factory},
		Publisher:    pub,
	})
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m, pub
}

func createFake(t *testing.T, m *Manager, name string) types.ServiceInfo {
	t.Helper()
	info, err := m.Create(testCtx(t), name, types.ServiceCreateRequest{
		MLLib: "fake",
		Model: apidata.APIData{"repository": name, "create_repository": true},
	})
	if err != nil {
		t.Fatalf("Create %s: %v", name, err)
	}
	return info
}

func waitStarted(t *testing.T, b *fakeBackend) {
	t.Helper()
	select {
	case <-b.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("training did not start")
	}
}

// waitJob polls TrainStatus until the job leaves the running state.
func waitJob(t *testing.T, m *Manager, svc, job string) types.TrainResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st, err := m.TrainStatus(svc, job, false)
		if err != nil {
			t.Fatalf("TrainStatus: %v", err)
		}
		if st.Status != string(JobRunning) {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s still running", job)
	return types.TrainResponse{}
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
