//go:build llama

package llama

import (
	"context"

	gollama "github.com/go-skynet/go-llama.cpp"

	"mlserved/internal/mllib"
)

// Built reports whether this binary links the llama.cpp runtime.
const Built = true

type llamaRuntime struct {
	model *gollama.LLama
}

func loadRuntime(weights string, contextSize int) (generator, error) {
	m, err := gollama.New(weights, gollama.SetContext(contextSize))
	if err != nil {
		return nil, mllib.ErrInternal("failed loading " + weights + ": " + err.Error())
	}
	return &llamaRuntime{model: m}, nil
}

func (r *llamaRuntime) Generate(ctx context.Context, prompt string, p GenParams, threads int) (string, error) {
	r.model.SetTokenCallback(func(string) bool {
		return ctx.Err() == nil
	})
	text, err := r.model.Predict(prompt, predictOptions(p, threads)...)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", mllib.ErrInternal("generation failed: " + err.Error())
	}
	return text, nil
}

func (r *llamaRuntime) Close() error {
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
	return nil
}

func predictOptions(p GenParams, threads int) []gollama.PredictOption {
	po := []gollama.PredictOption{
		gollama.SetTokens(max(1, p.MaxTokens)),
		gollama.SetThreads(max(1, threads)),
		gollama.SetTopP(orDefault(p.TopP, gollama.DefaultOptions.TopP)),
		gollama.SetTopK(orDefault(p.TopK, gollama.DefaultOptions.TopK)),
		gollama.SetTemperature(orDefault(p.Temperature, gollama.DefaultOptions.Temperature)),
	}
	if p.Seed != 0 {
		po = append(po, gollama.SetSeed(p.Seed))
	}
	if len(p.Stop) > 0 {
		po = append(po, gollama.SetStopWords(p.Stop...))
	}
	return po
}

func orDefault[T int | float32](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}
