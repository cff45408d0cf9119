package manager

import (
	"context"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"mlserved/internal/backend/linreg"
	"mlserved/internal/backend/llama"
)

type backend struct {
	factory   Factory
	available bool
}

type Manager struct {
	mu       sync.RWMutex
	services map[string]*service
	backends map[string]backend
	// serializes Create so that Init runs outside mu
	createMu sync.Mutex

	reposDir       string
	maxQueueDepth  int
	maxWait        time.Duration
	onlineInflight int
	drainTimeout   time.Duration
	trainTimeout   time.Duration
	jobHistory     int
	buildID        string

	publisher EventPublisher
	log       zerolog.Logger

	// background training jobs
	jobs      conc.WaitGroup
	baseCtx   context.Context
	cancelAll context.CancelFunc
	closed    atomic.Bool
	startTime time.Time
}

// New returns a Manager with package defaults and the built-in backends.
func New(reposDir string) *Manager {
	return NewWithConfig(ManagerConfig{ReposDir: reposDir})
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	cfg = cfg.withDefaults()
	m := &Manager{
		services:       make(map[string]*service),
		backends:       make(map[string]backend),
		reposDir:       cfg.ReposDir,
		maxQueueDepth:  cfg.MaxQueueDepth,
		maxWait:        cfg.MaxWait,
		onlineInflight: cfg.OnlineInflight,
		drainTimeout:   cfg.DrainTimeout,
		trainTimeout:   cfg.TrainTimeout,
		jobHistory:     cfg.JobHistory,
		buildID:        cfg.BuildID,
		publisher:      cfg.Publisher,
		startTime:      time.Now(),
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	} else {
		m.log = zerolog.Nop()
	}
	m.baseCtx, m.cancelAll = context.WithCancel(context.Background())

	m.registerBackend("linreg", linreg.Factory, true)
	m.registerBackend("llama", llama.Factory, llama.Built)
	for name, f := range cfg.Backends {
		m.Register(name, f)
	}
	return m
}

// Register adds or replaces a backend library under libName.
func (m *Manager) Register(libName string, f Factory) {
	m.registerBackend(libName, f, true)
}

func (m *Manager) registerBackend(libName string, f Factory, available bool) {
	m.mu.Lock()
	m.backends[libName] = backend{factory: f, available: available}
	m.mu.Unlock()
}

// Ready reports whether the manager accepts requests.
func (m *Manager) Ready() bool { return !m.closed.Load() }

// Close cancels running training jobs, waits for them up to ctx and releases
// backend resources. Services stay registered but reject new work.
func (m *Manager) Close(ctx context.Context) error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	m.cancelAll()
	done := make(chan struct{})
	go func() {
		m.jobs.Wait()
		close(done)
	}()
	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		m.log.Warn().Err(err).Msg("training jobs still running at close")
	}

	m.mu.Lock()
	svcs := make([]*service, 0, len(m.services))
	for _, s := range m.services {
		s.state = StateDraining
		svcs = append(svcs, s)
	}
	m.mu.Unlock()
	for _, s := range svcs {
		closeService(s)
	}
	return err
}

func (m *Manager) lookup(name string) (*service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.services[name]
	if s == nil {
		return nil, ErrServiceNotFound(name)
	}
	return s, nil
}

func (m *Manager) serviceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.services))
	for n := range m.services {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// closeService releases resources held by backends that hold any.
func closeService(s *service) {
	if c, ok := s.lib.(io.Closer); ok {
		_ = c.Close()
	}
}
