package types

import "mlserved/pkg/apidata"

// ServiceCreateRequest is the body of PUT /services/{name}.
type ServiceCreateRequest struct {
	// Backend library implementing the service.
	// example: linreg
	MLLib string `json:"mllib" example:"linreg"`
	// Free-form description.
	// example: house prices regression
	Description string `json:"description,omitempty" example:"house prices regression"`
	// Model descriptor: repository (required), create_repository, weights.
	Model apidata.APIData `json:"model" swaggertype:"object"`
	// Backend parameters grouped as input, mllib and output objects.
	Parameters apidata.APIData `json:"parameters,omitempty" swaggertype:"object"`
}

// ServiceInfo describes a created service.
type ServiceInfo struct {
	// example: prices
	Name string `json:"name" example:"prices"`
	// example: linreg
	MLLib       string `json:"mllib" example:"linreg"`
	Description string `json:"description,omitempty"`
	// Absolute model repository path.
	// example: /var/lib/mlserved/prices
	Repository string `json:"repository" example:"/var/lib/mlserved/prices"`
	HasTrain   bool   `json:"has_train"`
	HasPredict bool   `json:"has_predict"`
	// Online backends serve predictions while training.
	Online bool `json:"online"`
	// True while a training job is in flight.
	Training bool `json:"training"`
	// Backend-specific status code.
	// example: 0
	Status int `json:"status" example:"0"`
	// Lifecycle state of the service (ready, draining).
	// example: ready
	State string `json:"state" example:"ready"`
	// Predictions queued or running.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// example: 1700000000
	CreatedUnix int64          `json:"created_unix" example:"1700000000"`
	Jobs        []TrainJobInfo `json:"jobs,omitempty"`
}

// TrainRequest is the body of POST /train.
type TrainRequest struct {
	// example: prices
	Service string `json:"service" example:"prices"`
	// Run in the background (default true).
	Async *bool `json:"async,omitempty"`
	// Per-request overrides, e.g. {"mllib":{"iterations":500}}.
	Parameters apidata.APIData `json:"parameters,omitempty" swaggertype:"object"`
	// Data entries: file paths or inline payloads.
	Data []string `json:"data"`
}

// TrainJobInfo summarizes a training job.
type TrainJobInfo struct {
	// example: 3f1c1f5e-0d7e-4d3c-9a55-8c9b7a0a2f10
	Job string `json:"job"`
	// running, finished, error or canceled.
	// example: running
	Status string `json:"status" example:"running"`
	// Backend return code once finished (0 = success).
	Code int `json:"code"`
	// example: 1700000000
	StartedUnix int64  `json:"started_unix" example:"1700000000"`
	ElapsedMS   int64  `json:"elapsed_ms"`
	Error       string `json:"error,omitempty"`
}

// TrainResponse is returned by POST /train and GET /train.
type TrainResponse struct {
	Service string `json:"service"`
	TrainJobInfo
	// Current measures, history when requested, and backend output.
	Body apidata.APIData `json:"body,omitempty" swaggertype:"object"`
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	// example: prices
	Service    string          `json:"service" example:"prices"`
	Parameters apidata.APIData `json:"parameters,omitempty" swaggertype:"object"`
	Data       []string        `json:"data"`
}

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	Service string `json:"service"`
	// Backend return code (0 = success).
	Code int `json:"code"`
	// predictions and optional measure.
	Body apidata.APIData `json:"body" swaggertype:"object"`
}

// BackendInfo lists a registered backend library.
type BackendInfo struct {
	// example: linreg
	Name string `json:"name" example:"linreg"`
	// False when the backend needs a runtime this binary was built without.
	Available bool `json:"available"`
}

// InfoResponse is returned by GET /info.
type InfoResponse struct {
	// Build identifier (commit) of the server binary.
	// example: 3f1c1f5
	BuildID  string        `json:"build_id" example:"3f1c1f5"`
	Backends []BackendInfo `json:"backends"`
	Services []ServiceInfo `json:"services"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Training jobs currently running across services.
	TrainingJobs int `json:"training_jobs"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: service not found: prices
	Error string `json:"error" example:"service not found: prices"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
