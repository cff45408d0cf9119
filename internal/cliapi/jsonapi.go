package cliapi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// JSONAPI executes a JSON array, or a stream of JSON objects (NDJSON), of
// commands read from In and writes one Result line per command to Out.
type JSONAPI struct {
	In      io.Reader
	Out     io.Writer
	Service Service
	// ContinueOnError keeps executing after a failed command.
	ContinueOnError bool
	// Close runs after the script, typically stopping the manager.
	Close  func(ctx context.Context) error
	Logger *zerolog.Logger
}

// Boot runs the script. It returns an error for unreadable input, for the
// first failed command (unless ContinueOnError) and for a failing Close.
func (j *JSONAPI) Boot(ctx context.Context) error {
	cmds, err := ReadCommands(j.In)
	if err != nil {
		return err
	}
	err = runCommands(ctx, Executor{Service: j.Service}, cmds, j.Out, j.ContinueOnError, j.logger())
	if j.Close != nil {
		err = errors.Join(err, j.Close(ctx))
	}
	return err
}

func (j *JSONAPI) logger() zerolog.Logger {
	if j.Logger == nil {
		return zerolog.Nop()
	}
	return *j.Logger
}

// ReadCommands decodes either a JSON array of commands or a sequence of
// JSON objects.
func ReadCommands(r io.Reader) ([]Command, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(br)
	if first == '[' {
		var cmds []Command
		if err := dec.Decode(&cmds); err != nil {
			return nil, fmt.Errorf("decode commands: %w", err)
		}
		return cmds, nil
	}
	var cmds []Command
	for n := 1; ; n++ {
		var c Command
		err := dec.Decode(&c)
		if err == io.EOF {
			return cmds, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode command %d: %w", n, err)
		}
		cmds = append(cmds, c)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		r, _, err := br.ReadRune()
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(r) {
			if err := br.UnreadRune(); err != nil {
				return 0, err
			}
			return byte(r), nil
		}
	}
}

func runCommands(ctx context.Context, ex Executor, cmds []Command, out io.Writer, continueOnError bool, log zerolog.Logger) error {
	enc := json.NewEncoder(out)
	var failed error
	for i, c := range cmds {
		if err := ctx.Err(); err != nil {
			return errors.Join(failed, err)
		}
		res := ex.Exec(ctx, c)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		ev := log.Debug()
		if !res.OK() {
			ev = log.Warn().Str("error", res.Error)
		}
		ev.Int("index", i).Str("cmd", c.Cmd).Str("service", c.Service).Int("code", res.Code).Msg("command done")
		if res.OK() {
			continue
		}
		err := fmt.Errorf("command %d (%s) failed with code %d: %s", i, c.Cmd, res.Code, res.Error)
		if !continueOnError {
			return err
		}
		if failed == nil {
			failed = err
		}
	}
	return failed
}
