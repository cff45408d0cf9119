package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mlserved/internal/cliapi"
	"mlserved/internal/driver"
	"mlserved/internal/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr        string
		corsEnabled bool
		corsOrigins string
		maxBody     int64
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API",
		Example: "  mlserved serve --addr :8080 --repos-dir ~/mlserved",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("cors-enabled") {
				cfg.CORSEnabled = corsEnabled
			}
			if cmd.Flags().Changed("cors-origins") {
				cfg.CORSOrigins = splitCSV(corsOrigins)
			}
			if cmd.Flags().Changed("max-body-bytes") {
				cfg.MaxBodyBytes = maxBody
			}
			configureHTTP(cfg, a.log)

			mgr := a.newManager()
			srv := &httpapi.Server{
				Addr:            cfg.Addr,
				Handler:         httpapi.NewMux(mgr),
				ShutdownTimeout: cfg.DrainTimeout.Std(),
				OnShutdown:      mgr.Close,
			}
			a.log.Info().Str("addr", cfg.Addr).Str("repos_dir", cfg.ReposDir).Msg("starting server")
			d := driver.New(driver.Config{BuildID: a.buildID, Out: cmd.OutOrStdout(), Logger: &a.log}, srv)
			return d.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8080")
	cmd.Flags().BoolVar(&corsEnabled, "cors-enabled", false, "Enable CORS")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma separated allowed origins")
	cmd.Flags().Int64Var(&maxBody, "max-body-bytes", 0, "Maximum JSON request body size")
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	var continueOnError bool
	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Execute JSON commands from a file or stdin",
		Long: "Reads a JSON array or newline separated JSON objects of commands\n" +
			"(service_create, service_info, service_list, service_delete, train,\n" +
			"train_status, train_stop, predict) and prints one JSON result per line.",
		Example: "  mlserved batch script.json\n  cat script.ndjson | mlserved batch",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			mgr := a.newManager()
			api := &cliapi.JSONAPI{
				In:              in,
				Out:             cmd.OutOrStdout(),
				Service:         mgr,
				ContinueOnError: continueOnError,
				Close:           mgr.Close,
				Logger:          &a.log,
			}
			// results go to stdout; keep the banner off it
			return driver.New(driver.Config{BuildID: a.buildID, Out: cmd.ErrOrStderr(), Logger: &a.log}, api).Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep executing after a failed command")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var opts cliapi.Options
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Create a service, train and/or predict, then release it",
		Example: "  mlserved run --service prices --mllib linreg --repository ./prices --create-repository \\\n    --parameters '{\"input\":{\"label\":\"price\"}}' --data train.csv --train --predict --predict-data test.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := a.newManager()
			api := &cliapi.CommandLineAPI{
				Options: opts,
				Service: mgr,
				Out:     cmd.OutOrStdout(),
				Close:   mgr.Close,
				Logger:  &a.log,
			}
			return driver.New(driver.Config{BuildID: a.buildID, Out: cmd.ErrOrStderr(), Logger: &a.log}, api).Run(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Service, "service", "", "Service name")
	f.StringVar(&opts.MLLib, "mllib", "linreg", "Backend library (linreg, llama)")
	f.StringVar(&opts.Repository, "repository", "", "Model repository")
	f.BoolVar(&opts.CreateRepository, "create-repository", false, "Create the repository if missing")
	f.StringVar(&opts.Parameters, "parameters", "", "Backend parameters as a JSON object")
	f.StringArrayVar(&opts.Data, "data", nil, "Data files or inline payloads")
	f.StringArrayVar(&opts.PredictData, "predict-data", nil, "Data for the prediction step (defaults to --data)")
	f.BoolVar(&opts.Train, "train", false, "Train the service")
	f.BoolVar(&opts.Predict, "predict", false, "Predict with the service")
	f.StringVar(&opts.Clear, "clear", "", "Clear mode when releasing the service: mem, lib or full")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build identifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), driver.Banner(a.buildID))
			return err
		},
	}
}
