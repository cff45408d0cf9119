package cliapi

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"mlserved/internal/mllib"
	"mlserved/pkg/apidata"
)

// Options describe a one-shot run from the command line.
type Options struct {
	Service          string
	MLLib            string
	Repository       string
	CreateRepository bool
	// Parameters is a JSON object of backend parameters.
	Parameters string
	Data       []string
	Train      bool
	Predict    bool
	// PredictData replaces Data for the prediction step when set.
	PredictData []string
	// Clear is applied when the service is deleted at the end of the run.
	Clear string
}

// Commands translates the options into a script: create, then train and/or
// predict (or describe the service when neither is requested), then delete.
func (o Options) Commands() ([]Command, error) {
	if strings.TrimSpace(o.Service) == "" {
		return nil, mllib.ErrBadParam("service name is required")
	}
	if o.MLLib == "" {
		return nil, mllib.ErrBadParam("mllib is required")
	}
	if o.Repository == "" {
		return nil, mllib.ErrBadParam("repository is required")
	}
	params, err := apidata.Parse([]byte(o.Parameters))
	if err != nil {
		return nil, mllib.ErrBadParam("parameters: " + err.Error())
	}
	if (o.Train || o.Predict) && len(o.Data) == 0 && len(o.PredictData) == 0 {
		return nil, mllib.ErrBadParam("data is required to train or predict")
	}

	cmds := []Command{{
		Cmd:        CmdServiceCreate,
		Service:    o.Service,
		MLLib:      o.MLLib,
		Model:      apidata.APIData{"repository": o.Repository, "create_repository": o.CreateRepository},
		Parameters: params,
	}}
	if o.Train {
		cmds = append(cmds, Command{Cmd: CmdTrain, Service: o.Service, Parameters: params, Data: o.Data})
	}
	if o.Predict {
		data := o.Data
		if len(o.PredictData) > 0 {
			data = o.PredictData
		}
		cmds = append(cmds, Command{Cmd: CmdPredict, Service: o.Service, Parameters: params, Data: data})
	}
	if !o.Train && !o.Predict {
		cmds = append(cmds, Command{Cmd: CmdServiceInfo, Service: o.Service})
	}
	cmds = append(cmds, Command{Cmd: CmdServiceDelete, Service: o.Service, Clear: o.Clear})
	return cmds, nil
}

// CommandLineAPI runs Options through the JSON command executor. Training
// runs synchronously.
type CommandLineAPI struct {
	Options Options
	Service Service
	Out     io.Writer
	Close   func(ctx context.Context) error
	Logger  *zerolog.Logger
}

// Boot executes the run and stops at the first failed step.
func (c *CommandLineAPI) Boot(ctx context.Context) error {
	cmds, err := c.Options.Commands()
	if err != nil {
		return err
	}
	log := zerolog.Nop()
	if c.Logger != nil {
		log = *c.Logger
	}
	err = runCommands(ctx, Executor{Service: c.Service}, cmds, c.Out, false, log)
	if err != nil {
		// release the service even when a step failed
		_ = c.Service.Delete(c.Options.Service, "")
	}
	if c.Close != nil {
		err = errors.Join(err, c.Close(ctx))
	}
	return err
}
