package mllib

import (
	"context"

	"mlserved/pkg/apidata"
)

// Service is the lifecycle contract of a backend. Concrete backends embed
// *Lib for everything but Init, Clear, Train, Predict and Status.
//
// Train and Predict return 0 on success and a nonzero code otherwise;
// diagnostics go into out. Errors raised by connectors or the model are
// returned as-is.
type Service interface {
	// Init prepares connectors and model; called once before anything else.
	Init(ad apidata.APIData) error
	// Clear removes backend-local artifacts without wiping the repository.
	Clear(ad apidata.APIData) error
	ClearFull() error
	Train(ctx context.Context, ad apidata.APIData, out apidata.APIData) (int, error)
	Predict(ctx context.Context, ad apidata.APIData, out apidata.APIData) (int, error)
	// Status returns a backend-specific code.
	Status() int

	Name() string
	Repository() string
	CanTrain() bool
	CanPredict() bool
	IsOnline() bool

	TrainingRunning() bool
	BeginTraining() bool
	EndTraining()

	AddMeas(name string, v float64)
	GetMeas(name string) float64
	CollectMeasures(ad apidata.APIData)
	AddMeasPerIter(name string, v float64)
	ClearAllMeasPerIter()
	CollectMeasuresHistory(ad apidata.APIData)
}
