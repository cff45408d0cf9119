// Package driver boots a front-end (HTTP server, JSON batch, one-shot CLI)
// after announcing the build it runs.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// APIStrategy is a front-end the driver can run.
type APIStrategy interface {
	Boot(ctx context.Context) error
}

// Config carries what the driver announces and where.
type Config struct {
	// BuildID is the commit the binary was built from, set through ldflags.
	BuildID string
	// Out receives the banner; defaults to stdout.
	Out    io.Writer
	Logger *zerolog.Logger
}

// Driver owns one front-end strategy.
type Driver[T APIStrategy] struct {
	api     T
	buildID string
	log     zerolog.Logger
}

// New prints the banner and returns a driver for api.
func New[T APIStrategy](cfg Config, api T) *Driver[T] {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	buildID := cfg.BuildID
	if buildID == "" {
		buildID = "unknown"
	}
	d := &Driver[T]{api: api, buildID: buildID, log: zerolog.Nop()}
	if cfg.Logger != nil {
		d.log = *cfg.Logger
	}
	fmt.Fprintln(out, Banner(buildID))
	d.log.Info().Str("build_id", buildID).Msg("driver initialized")
	return d
}

// Banner is the startup line for a build.
func Banner(buildID string) string {
	return "mlserved [ commit " + buildID + " ]"
}

// API returns the wrapped strategy.
func (d *Driver[T]) API() T { return d.api }

// BuildID returns the announced build identifier.
func (d *Driver[T]) BuildID() string { return d.buildID }

// Run boots the strategy and blocks until it returns.
func (d *Driver[T]) Run(ctx context.Context) error {
	d.log.Debug().Str("strategy", fmt.Sprintf("%T", d.api)).Msg("booting front-end")
	if err := d.api.Boot(ctx); err != nil {
		d.log.Error().Err(err).Msg("front-end stopped with error")
		return err
	}
	return nil
}
