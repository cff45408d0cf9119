package cliapi

import (
	"context"
	"fmt"
	"net/http"

	"mlserved/internal/httpapi"
	"mlserved/internal/mllib"
	"mlserved/pkg/apidata"
	"mlserved/pkg/types"
)

// Command names.
const (
	CmdServiceCreate = "service_create"
	CmdServiceInfo   = "service_info"
	CmdServiceList   = "service_list"
	CmdServiceDelete = "service_delete"
	CmdTrain         = "train"
	CmdTrainStatus   = "train_status"
	CmdTrainStop     = "train_stop"
	CmdPredict       = "predict"
)

// Service is the subset of the manager the batch front-ends drive.
type Service interface {
	List() []types.ServiceInfo
	Info(name string) (types.ServiceInfo, error)
	Create(ctx context.Context, name string, req types.ServiceCreateRequest) (types.ServiceInfo, error)
	Delete(name, clear string) error
	Train(ctx context.Context, req types.TrainRequest) (types.TrainResponse, error)
	TrainStatus(name, job string, history bool) (types.TrainResponse, error)
	TrainStop(ctx context.Context, name, job string) (types.TrainJobInfo, error)
	Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error)
}

// Command is one scripted call.
type Command struct {
	Cmd         string          `json:"cmd"`
	Service     string          `json:"service,omitempty"`
	MLLib       string          `json:"mllib,omitempty"`
	Description string          `json:"description,omitempty"`
	Model       apidata.APIData `json:"model,omitempty"`
	Parameters  apidata.APIData `json:"parameters,omitempty"`
	Data        []string        `json:"data,omitempty"`
	// Async defaults to false: a script runs its training inline.
	Async   *bool  `json:"async,omitempty"`
	Job     string `json:"job,omitempty"`
	History bool   `json:"history,omitempty"`
	Clear   string `json:"clear,omitempty"`
}

// Result is the outcome of a Command. Code uses HTTP status codes.
type Result struct {
	Cmd   string `json:"cmd"`
	Code  int    `json:"code"`
	Error string `json:"error,omitempty"`
	Body  any    `json:"body,omitempty"`
}

// OK reports whether the command succeeded.
func (r Result) OK() bool { return r.Code < 300 }

// Executor runs commands against a Service.
type Executor struct {
	Service Service
}

// Exec runs c and never returns an error: failures are reported in Result.
func (e Executor) Exec(ctx context.Context, c Command) Result {
	body, status, err := e.exec(ctx, c)
	if err != nil {
		return Result{Cmd: c.Cmd, Code: httpapi.StatusFor(err), Error: err.Error()}
	}
	return Result{Cmd: c.Cmd, Code: status, Body: body}
}

func (e Executor) exec(ctx context.Context, c Command) (any, int, error) {
	if c.Cmd != CmdServiceList && c.Service == "" {
		return nil, 0, mllib.ErrBadParam("command " + c.Cmd + " requires a service")
	}
	switch c.Cmd {
	case CmdServiceCreate:
		info, err := e.Service.Create(ctx, c.Service, types.ServiceCreateRequest{
			MLLib:       c.MLLib,
			Description: c.Description,
			Model:       c.Model,
			Parameters:  c.Parameters,
		})
		return info, http.StatusCreated, err
	case CmdServiceInfo:
		info, err := e.Service.Info(c.Service)
		return info, http.StatusOK, err
	case CmdServiceList:
		return e.Service.List(), http.StatusOK, nil
	case CmdServiceDelete:
		err := e.Service.Delete(c.Service, c.Clear)
		return map[string]any{"service": c.Service, "deleted": err == nil}, http.StatusOK, err
	case CmdTrain:
		async := false
		if c.Async != nil {
			async = *c.Async
		}
		resp, err := e.Service.Train(ctx, types.TrainRequest{
			Service:    c.Service,
			Async:      &async,
			Parameters: c.Parameters,
			Data:       c.Data,
		})
		if async {
			return resp, http.StatusAccepted, err
		}
		return resp, http.StatusOK, err
	case CmdTrainStatus:
		resp, err := e.Service.TrainStatus(c.Service, c.Job, c.History)
		return resp, http.StatusOK, err
	case CmdTrainStop:
		info, err := e.Service.TrainStop(ctx, c.Service, c.Job)
		return info, http.StatusOK, err
	case CmdPredict:
		resp, err := e.Service.Predict(ctx, types.PredictRequest{
			Service:    c.Service,
			Parameters: c.Parameters,
			Data:       c.Data,
		})
		return resp, http.StatusOK, err
	}
	return nil, 0, mllib.ErrBadParam(fmt.Sprintf("unknown command %q", c.Cmd))
}
