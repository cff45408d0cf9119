package manager

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth  = 32
	defaultMaxWait        = 30 * time.Second
	defaultDrainTimeout   = 5 * time.Second
	defaultOnlineInflight = 4
	defaultJobHistory     = 8
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// ReposDir resolves relative model repositories.
	ReposDir string
	// MaxQueueDepth bounds queued predictions per service.
	MaxQueueDepth int
	// MaxWait bounds the time a prediction waits for a slot.
	MaxWait time.Duration
	// OnlineInflight is the number of concurrent predictions on an online
	// backend. Offline backends run one prediction at a time.
	OnlineInflight int
	// DrainTimeout bounds how long Delete waits for in-flight work.
	DrainTimeout time.Duration
	// TrainTimeout bounds a single training job; zero means unbounded.
	TrainTimeout time.Duration
	// JobHistory is the number of finished jobs kept per service.
	JobHistory int
	// BuildID is reported by ServerInfo.
	BuildID string
	// Backends registered in addition to (or replacing) the built-ins.
	Backends  map[string]Factory
	Publisher EventPublisher
	Logger    *zerolog.Logger
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = defaultMaxQueueDepth
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	if c.OnlineInflight <= 0 {
		c.OnlineInflight = defaultOnlineInflight
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = defaultDrainTimeout
	}
	if c.JobHistory <= 0 {
		c.JobHistory = defaultJobHistory
	}
	if c.TrainTimeout < 0 {
		c.TrainTimeout = 0
	}
	return c
}
