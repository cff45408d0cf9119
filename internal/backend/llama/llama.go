// Package llama serves text generation from a GGUF model found in the
// service repository. It cannot train and is not online: predictions are
// refused while a training job holds the service.
//
// The runtime is go-llama.cpp, compiled in with -tags=llama. Default builds
// carry a stub whose Init fails, keeping CI CGO-free.
package llama

import (
	"context"
	"sync"

	"mlserved/internal/connector"
	"mlserved/internal/mllib"
	"mlserved/internal/model"
	"mlserved/pkg/apidata"
)

// LibName identifies this backend in service creation requests.
const LibName = "llama"

const (
	defaultContext   = 2048
	defaultThreads   = 4
	defaultMaxTokens = 128
)

// GenParams are the per-request generation settings.
type GenParams struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
	TopK        int
	Seed        int
	Stop        []string
}

// Llama is the backend.
type Llama struct {
	*mllib.Lib[connector.TextInput, connector.TextOutput, model.Model]

	contextSize int
	threads     int
	defaults    GenParams

	// one generation at a time per loaded model
	mu      sync.Mutex
	runtime generator
}

// generator is the loaded model; implemented in runtime_llama.go or the stub.
type generator interface {
	Generate(ctx context.Context, prompt string, p GenParams, threads int) (string, error)
	Close() error
}

// New builds an uninitialized backend bound to mdl.
func New(mdl model.Model) *Llama {
	lib := mllib.New(LibName, connector.TextInput{}, connector.TextOutput{}, mdl)
	lib.HasTrain = false
	lib.HasPredict = true
	lib.Online = false
	return &Llama{Lib: lib, contextSize: defaultContext, threads: defaultThreads}
}

// Factory adapts New to the manager's backend factory signature.
func Factory(_ string, mdl model.Model) (mllib.Service, error) { return New(mdl), nil }

func readGenParams(ml apidata.APIData, def GenParams) GenParams {
	p := def
	p.MaxTokens = ml.GetInt("max_tokens", def.MaxTokens)
	p.Temperature = float32(ml.GetFloat("temperature", float64(def.Temperature)))
	p.TopP = float32(ml.GetFloat("top_p", float64(def.TopP)))
	p.TopK = ml.GetInt("top_k", def.TopK)
	p.Seed = ml.GetInt("seed", def.Seed)
	if stop := ml.GetStrings("stop"); len(stop) > 0 {
		p.Stop = stop
	}
	return p
}

// Init loads the first .gguf file of the repository.
func (l *Llama) Init(ad apidata.APIData) error {
	ml := ad.GetData("mllib")
	l.contextSize = ml.GetInt("context", defaultContext)
	l.threads = ml.GetInt("threads", defaultThreads)
	l.defaults = readGenParams(ml, GenParams{MaxTokens: defaultMaxTokens})
	weights, err := l.Model.Lookup(".gguf")
	if err != nil {
		return err
	}
	rt, err := loadRuntime(weights, l.contextSize)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.runtime = rt
	l.mu.Unlock()
	return nil
}

// Clear releases the loaded model; repository files are kept.
func (l *Llama) Clear(apidata.APIData) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.runtime == nil {
		return nil
	}
	err := l.runtime.Close()
	l.runtime = nil
	if err != nil {
		return mllib.ErrInternal("failed releasing model: " + err.Error())
	}
	return nil
}

// Train is not supported.
func (l *Llama) Train(context.Context, apidata.APIData, apidata.APIData) (int, error) {
	return 1, mllib.ErrBadParam("llama backend does not support training")
}

// Predict generates one completion per entry of ad["data"].
func (l *Llama) Predict(ctx context.Context, ad apidata.APIData, out apidata.APIData) (int, error) {
	ids, prompts, err := l.Input.Transform(ad)
	if err != nil {
		return 1, err
	}
	p := readGenParams(ad.GetData("parameters").GetData("mllib"), l.defaults)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.runtime == nil {
		return 1, mllib.ErrBadParam("model is not loaded")
	}
	texts := make([]string, len(prompts))
	for i, prompt := range prompts {
		txt, err := l.runtime.Generate(ctx, prompt, p, l.threads)
		if err != nil {
			return 1, err
		}
		texts[i] = txt
	}
	l.Output.Finalize(ids, texts, out)
	return 0, nil
}

// Status is 0 when a model is loaded, 1 otherwise.
func (l *Llama) Status() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.runtime == nil {
		return 1
	}
	return 0
}

// Close releases the loaded model.
func (l *Llama) Close() error { return l.Clear(nil) }
