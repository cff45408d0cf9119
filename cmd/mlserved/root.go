package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mlserved/internal/config"
	"mlserved/internal/httpapi"
	"mlserved/internal/manager"
)

// app is the state shared by subcommands once flags are parsed.
type app struct {
	buildID string
	cfgPath string
	cfg     config.Config
	log     zerolog.Logger
}

func buildRootCmd(buildID string) *cobra.Command {
	a := &app{buildID: buildID}
	root := &cobra.Command{
		Use:           "mlserved",
		Short:         "Serve, train and query machine learning services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags override config file and environment
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "Config file (.yaml, .yml, .json, .toml)")
	pf.String("log-level", "", "Log level: debug|info|warn|error")
	pf.String("log-format", "", "Log format: json|console")
	pf.String("repos-dir", "", "Root for relative model repositories")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve(a.cfgPath)
		if err != nil {
			return err
		}
		overrideString(cmd, "log-level", &cfg.LogLevel)
		overrideString(cmd, "log-format", &cfg.LogFormat)
		overrideString(cmd, "repos-dir", &cfg.ReposDir)
		if err := cfg.Validate(); err != nil {
			return err
		}
		a.cfg = cfg
		a.log = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
		return nil
	}

	root.AddCommand(
		newServeCmd(a),
		newBatchCmd(a),
		newRunCmd(a),
		newVersionCmd(a),
	)
	return root
}

// overrideString copies a flag into dst when it was set explicitly.
func overrideString(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}

func newLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// newManager builds the manager from the resolved configuration.
func (a *app) newManager() *manager.Manager {
	return manager.NewWithConfig(manager.ManagerConfig{
		ReposDir:       a.cfg.ReposDir,
		MaxQueueDepth:  a.cfg.MaxQueueDepth,
		MaxWait:        a.cfg.MaxWait.Std(),
		OnlineInflight: a.cfg.OnlineInflight,
		DrainTimeout:   a.cfg.DrainTimeout.Std(),
		TrainTimeout:   a.cfg.TrainTimeout.Std(),
		BuildID:        a.buildID,
		Logger:         &a.log,
	})
}

// splitCSV splits a comma separated flag value, dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func configureHTTP(cfg config.Config, log zerolog.Logger) {
	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
}
