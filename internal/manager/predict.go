package manager

import (
	"context"

	"mlserved/internal/mllib"
	"mlserved/pkg/apidata"
	"mlserved/pkg/types"
)

// PredictAllowed reports whether s may serve a prediction now: online
// backends always may, offline ones only while not training.
func PredictAllowed(s mllib.Service) bool {
	return s.IsOnline() || !s.TrainingRunning()
}

// Predict runs a prediction on the named service. Offline services refuse
// with a training-busy error while a job runs; the check is a snapshot of
// the training flag taken before admission.
func (m *Manager) Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error) {
	svc, err := m.lookup(req.Service)
	if err != nil {
		return types.PredictResponse{}, err
	}
	if !svc.lib.CanPredict() {
		return types.PredictResponse{}, mllib.ErrBadParam("service " + svc.name + " does not support prediction")
	}
	if !PredictAllowed(svc.lib) {
		predictRejected.WithLabelValues(svc.name).Inc()
		m.log.Debug().Str("service", svc.name).Msg("prediction refused while training")
		m.publisher.Publish(Event{Name: EventPredictRejected, Service: svc.name, Fields: map[string]any{}})
		return types.PredictResponse{}, trainingBusyError{service: svc.name, predict: true}
	}

	release, err := m.beginPredict(ctx, svc)
	if err != nil {
		predictTotal.WithLabelValues(svc.name, "busy").Inc()
		return types.PredictResponse{}, err
	}
	defer release()

	out := apidata.New()
	code, err := svc.lib.Predict(ctx, requestData(req.Parameters, req.Data), out)
	outcome := "ok"
	switch {
	case mllib.IsBadParam(err):
		outcome = "bad_param"
	case err != nil || code != 0:
		outcome = "error"
	}
	predictTotal.WithLabelValues(svc.name, outcome).Inc()
	return types.PredictResponse{Service: svc.name, Code: code, Body: out}, err
}
