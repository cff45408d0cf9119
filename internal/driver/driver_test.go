package driver

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAPI struct {
	booted int
	err    error
}

func (r *recordingAPI) Boot(context.Context) error {
	r.booted++
	return r.err
}

func TestBannerPrintedOnNew(t *testing.T) {
	var out bytes.Buffer
	d := New(Config{BuildID: "3f1c1f5", Out: &out}, &recordingAPI{})
	assert.Equal(t, "mlserved [ commit 3f1c1f5 ]\n", out.String())
	assert.Equal(t, "3f1c1f5", d.BuildID())
}

func TestBannerDefaultsUnknownBuild(t *testing.T) {
	var out bytes.Buffer
	New(Config{Out: &out}, &recordingAPI{})
	assert.Contains(t, out.String(), "[ commit unknown ]")
}

func TestRunBootsStrategy(t *testing.T) {
	var out, logs bytes.Buffer
	lg := zerolog.New(&logs)
	api := &recordingAPI{}
	d := New(Config{BuildID: "x", Out: &out, Logger: &lg}, api)
	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, 1, api.booted)
	assert.Same(t, api, d.API())
	assert.Contains(t, logs.String(), `"build_id":"x"`)
}

func TestRunPropagatesBootError(t *testing.T) {
	var out bytes.Buffer
	boom := errors.New("boom")
	d := New(Config{Out: &out}, &recordingAPI{err: boom})
	assert.ErrorIs(t, d.Run(context.Background()), boom)
}
