package manager

import (
	"context"
	"strings"
	"time"

	"mlserved/internal/mllib"
	"mlserved/internal/model"
	"mlserved/pkg/apidata"
	"mlserved/pkg/types"
)

// Create builds, initializes and registers a service.
func (m *Manager) Create(ctx context.Context, name string, req types.ServiceCreateRequest) (types.ServiceInfo, error) {
	if m.closed.Load() {
		return types.ServiceInfo{}, tooBusyError{service: name}
	}
	n, ok := normalizeName(name)
	if !ok {
		return types.ServiceInfo{}, mllib.ErrBadParam("invalid service name " + `"` + name + `"` + ": use lowercase letters, digits, '-' and '_'")
	}
	libName := strings.ToLower(strings.TrimSpace(req.MLLib))
	m.mu.RLock()
	be, known := m.backends[libName]
	m.mu.RUnlock()
	if !known {
		return types.ServiceInfo{}, mllib.ErrBadParam("unknown mllib " + `"` + req.MLLib + `"`)
	}
	if !be.available {
		return types.ServiceInfo{}, ErrDependencyUnavailable("mllib " + libName + " is not available in this build")
	}

	m.createMu.Lock()
	defer m.createMu.Unlock()
	if _, err := m.lookup(n); err == nil {
		return types.ServiceInfo{}, serviceExistsError{name: n}
	}
	if err := ctx.Err(); err != nil {
		return types.ServiceInfo{}, err
	}

	mdl, err := model.New(req.Model, m.reposDir)
	if err != nil {
		return types.ServiceInfo{}, err
	}
	lib, err := be.factory(n, mdl)
	if err != nil {
		return types.ServiceInfo{}, err
	}
	params := req.Parameters
	if params == nil {
		params = apidata.New()
	}
	if err := lib.Init(params); err != nil {
		m.log.Warn().Str("service", n).Str("mllib", libName).Err(err).Msg("service init failed")
		return types.ServiceInfo{}, err
	}

	inflight := 1
	if lib.IsOnline() {
		inflight = m.onlineInflight
	}
	svc := &service{
		name:        n,
		mllib:       libName,
		description: req.Description,
		params:      params,
		lib:         lib,
		created:     time.Now(),
		state:       StateReady,
		genCh:       make(chan struct{}, inflight),
		queueCh:     make(chan struct{}, m.maxQueueDepth),
	}
	m.mu.Lock()
	m.services[n] = svc
	count := len(m.services)
	m.mu.Unlock()
	servicesGauge.Set(float64(count))

	m.log.Info().Str("service", n).Str("mllib", libName).Str("repository", lib.Repository()).Msg("service created")
	m.publisher.Publish(Event{Name: EventServiceCreate, Service: n, Fields: map[string]any{"mllib": libName}})
	return m.infoOf(svc), nil
}
