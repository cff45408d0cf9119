package mllib

import (
	"sync"
	"sync/atomic"

	"mlserved/internal/common/fsutil"
)

// InputConnector channels request data into a backend.
type InputConnector interface{}

// OutputConnector shapes backend results for the API.
type OutputConnector interface{}

// Model describes a statistical model bound to a repository directory.
type Model interface {
	Repository() string
}

// Lib is the state shared by every backend: connectors, model descriptor,
// capability flags, training flag and measures. Backends embed *Lib and add
// Init/Clear/Train/Predict/Status.
//
// Lib must not be copied after first use; use Move to transfer it.
type Lib[I InputConnector, O OutputConnector, M Model] struct {
	Input  I
	Output O
	Model  M

	LibName    string
	HasTrain   bool
	HasPredict bool
	// Online backends interleave training and prediction; others must not
	// serve predictions while a training job is running.
	Online bool

	training atomic.Bool

	measMu sync.Mutex
	meas   map[string]float64

	histMu sync.Mutex
	hist   map[string][]float64
}

// New builds a Lib around an already resolved model descriptor.
func New[I InputConnector, O OutputConnector, M Model](libName string, input I, output O, mdl M) *Lib[I, O, M] {
	return &Lib[I, O, M]{
		Input:      input,
		Output:     output,
		Model:      mdl,
		LibName:    libName,
		HasTrain:   false,
		HasPredict: true,
		meas:       make(map[string]float64),
		hist:       make(map[string][]float64),
	}
}

// Move transfers connectors, model, flags and measures to a new Lib. The
// receiver keeps its connectors and model but loses its measures and its
// training flag.
func (l *Lib[I, O, M]) Move() *Lib[I, O, M] {
	n := &Lib[I, O, M]{
		Input:      l.Input,
		Output:     l.Output,
		Model:      l.Model,
		LibName:    l.LibName,
		HasTrain:   l.HasTrain,
		HasPredict: l.HasPredict,
		Online:     l.Online,
	}
	n.training.Store(l.training.Swap(false))

	l.measMu.Lock()
	n.meas = l.meas
	l.meas = make(map[string]float64)
	l.measMu.Unlock()

	l.histMu.Lock()
	n.hist = l.hist
	l.hist = make(map[string][]float64)
	l.histMu.Unlock()
	return n
}

// Name returns the backend library name.
func (l *Lib[I, O, M]) Name() string { return l.LibName }

func (l *Lib[I, O, M]) CanTrain() bool   { return l.HasTrain }
func (l *Lib[I, O, M]) CanPredict() bool { return l.HasPredict }
func (l *Lib[I, O, M]) IsOnline() bool   { return l.Online }

// Repository returns the model repository path.
func (l *Lib[I, O, M]) Repository() string { return l.Model.Repository() }

// TrainingRunning reports whether a training job is in flight.
func (l *Lib[I, O, M]) TrainingRunning() bool { return l.training.Load() }

// SetTrainingRunning stores the training flag unconditionally.
func (l *Lib[I, O, M]) SetTrainingRunning(v bool) { l.training.Store(v) }

// BeginTraining raises the training flag. It returns false, leaving the flag
// untouched, when a job is already running.
func (l *Lib[I, O, M]) BeginTraining() bool { return l.training.CompareAndSwap(false, true) }

// EndTraining lowers the training flag.
func (l *Lib[I, O, M]) EndTraining() { l.training.Store(false) }

// clearDirectory is swapped in tests to force the failure codes.
var clearDirectory = fsutil.ClearDirectory

// ClearFull deletes every file inside the model repository. The repository
// directory itself is kept. There is no rollback: a partial failure is
// reported as an InternalError.
func (l *Lib[I, O, M]) ClearFull() error {
	repo := l.Model.Repository()
	switch code := clearDirectory(repo); {
	case code > 0:
		return ErrBadParam("Failed opening directory " + repo + " for deleting files within")
	case code < 0:
		return ErrInternal("Failed deleting all files in directory " + repo)
	}
	return nil
}
