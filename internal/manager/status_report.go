package manager

import (
	"sort"
	"time"

	"mlserved/pkg/types"
)

// Info describes a single service.
func (m *Manager) Info(name string) (types.ServiceInfo, error) {
	svc, err := m.lookup(name)
	if err != nil {
		return types.ServiceInfo{}, err
	}
	return m.infoOf(svc), nil
}

// List describes all services, sorted by name.
func (m *Manager) List() []types.ServiceInfo {
	out := make([]types.ServiceInfo, 0)
	for _, n := range m.serviceNames() {
		if svc, err := m.lookup(n); err == nil {
			out = append(out, m.infoOf(svc))
		}
	}
	return out
}

func (m *Manager) infoOf(svc *service) types.ServiceInfo {
	m.mu.RLock()
	state := svc.state
	jobs := make([]*trainJob, len(svc.jobs))
	copy(jobs, svc.jobs)
	m.mu.RUnlock()

	info := types.ServiceInfo{
		Name:        svc.name,
		MLLib:       svc.mllib,
		Description: svc.description,
		Repository:  svc.lib.Repository(),
		HasTrain:    svc.lib.CanTrain(),
		HasPredict:  svc.lib.CanPredict(),
		Online:      svc.lib.IsOnline(),
		Training:    svc.lib.TrainingRunning(),
		Status:      svc.lib.Status(),
		State:       string(state),
		QueueLen:    len(svc.queueCh),
		CreatedUnix: svc.created.Unix(),
	}
	for _, j := range jobs {
		info.Jobs = append(info.Jobs, j.info())
	}
	return info
}

// Backends lists registered backend libraries, sorted by name.
func (m *Manager) Backends() []types.BackendInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.BackendInfo, 0, len(m.backends))
	for name, b := range m.backends {
		out = append(out, types.BackendInfo{Name: name, Available: b.available})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ServerInfo builds the /info response.
func (m *Manager) ServerInfo() types.InfoResponse {
	svcs := m.List()
	training := 0
	for _, s := range svcs {
		if s.Training {
			training++
		}
	}
	now := time.Now()
	return types.InfoResponse{
		BuildID:        m.buildID,
		Backends:       m.Backends(),
		Services:       svcs,
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
		TrainingJobs:   training,
	}
}
