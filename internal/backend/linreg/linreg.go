// Package linreg is an online linear regression backend trained by
// full-batch gradient descent. Predictions may be served while training
// runs; they see the weights of the last completed iteration.
package linreg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"

	"mlserved/internal/connector"
	"mlserved/internal/mllib"
	"mlserved/internal/model"
	"mlserved/pkg/apidata"
)

// LibName identifies this backend in service creation requests.
const LibName = "linreg"

const (
	modelFile           = "model.json"
	defaultLearningRate = 0.01
	defaultIterations   = 100
	lossMeasure         = "train_loss"
	iterationMeasure    = "iteration"
)

// LinReg is the backend. The embedded Lib provides measures, flags and
// ClearFull.
type LinReg struct {
	*mllib.Lib[*connector.CSVInput, *connector.SupervisedOutput, model.Model]

	learningRate float64
	iterations   int

	mu      sync.RWMutex
	weights []float64
	bias    float64
}

type persisted struct {
	Columns []string  `json:"columns"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// New builds an uninitialized backend bound to mdl.
func New(mdl model.Model) *LinReg {
	lib := mllib.New(LibName, connector.NewCSVInput(), connector.NewSupervisedOutput(), mdl)
	lib.HasTrain = true
	lib.HasPredict = true
	lib.Online = true
	return &LinReg{Lib: lib, learningRate: defaultLearningRate, iterations: defaultIterations}
}

// Factory adapts New to the manager's backend factory signature.
func Factory(_ string, mdl model.Model) (mllib.Service, error) { return New(mdl), nil }

// Init configures connectors and hyper-parameters and loads a previously
// trained model from the repository, if any.
func (l *LinReg) Init(ad apidata.APIData) error {
	if err := l.Input.Init(ad); err != nil {
		return err
	}
	if err := l.Output.Init(ad); err != nil {
		return err
	}
	ml := ad.GetData("mllib")
	l.learningRate = ml.GetFloat("learning_rate", defaultLearningRate)
	l.iterations = ml.GetInt("iterations", defaultIterations)
	if err := checkHyperParams(l.learningRate, l.iterations); err != nil {
		return err
	}
	return l.load()
}

func checkHyperParams(lr float64, iters int) error {
	// !(lr > 0) also catches NaN
	if !(lr > 0) || math.IsInf(lr, 0) || iters <= 0 {
		return mllib.ErrBadParam(fmt.Sprintf("learning_rate must be finite and positive and iterations positive, got %v and %d", lr, iters))
	}
	return nil
}

func (l *LinReg) load() error {
	b, err := os.ReadFile(l.Model.Path(modelFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return mllib.ErrInternal("failed reading " + modelFile + ": " + err.Error())
	}
	var p persisted
	if err := json.Unmarshal(b, &p); err != nil {
		return mllib.ErrInternal("corrupt " + modelFile + ": " + err.Error())
	}
	if len(p.Columns) != len(p.Weights) {
		return mllib.ErrInternal("corrupt " + modelFile + ": columns and weights differ in length")
	}
	l.Input.SetColumns(p.Columns)
	l.mu.Lock()
	l.weights, l.bias = p.Weights, p.Bias
	l.mu.Unlock()
	return nil
}

func (l *LinReg) save() error {
	l.mu.RLock()
	p := persisted{Columns: l.Input.Columns(), Weights: l.weights, Bias: l.bias}
	b, err := json.MarshalIndent(p, "", "  ")
	l.mu.RUnlock()
	if err != nil {
		return mllib.ErrInternal(err.Error())
	}
	if err := os.WriteFile(l.Model.Path(modelFile), b, 0o644); err != nil {
		return mllib.ErrInternal("failed writing " + modelFile + ": " + err.Error())
	}
	return nil
}

// Clear drops the trained weights, in memory and on disk.
func (l *LinReg) Clear(apidata.APIData) error {
	l.mu.Lock()
	l.weights, l.bias = nil, 0
	l.mu.Unlock()
	l.Input.SetColumns(nil)
	if err := os.Remove(l.Model.Path(modelFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return mllib.ErrInternal("failed removing " + modelFile + ": " + err.Error())
	}
	return nil
}

// Train fits the model on ad["data"]. Per-request "parameters.mllib" values
// override the service defaults.
func (l *LinReg) Train(ctx context.Context, ad apidata.APIData, out apidata.APIData) (int, error) {
	params := ad.GetData("parameters")
	ml := params.GetData("mllib")
	lr := ml.GetFloat("learning_rate", l.learningRate)
	iters := ml.GetInt("iterations", l.iterations)
	if err := checkHyperParams(lr, iters); err != nil {
		return 1, err
	}

	ds, err := l.Input.Transform(ad, true)
	if err != nil {
		return 1, err
	}
	if ds.Len() == 0 {
		out.Add("error", "training data is empty")
		return 1, nil
	}

	// Weights and columns move together: a run that does not complete puts
	// back the model it started from.
	prevW, prevB := l.Coefficients()
	prevCols := l.Input.Columns()
	done := false
	defer func() {
		if done {
			return
		}
		l.mu.Lock()
		l.weights, l.bias = prevW, prevB
		l.mu.Unlock()
		l.Input.SetColumns(prevCols)
	}()
	l.Input.SetColumns(ds.Columns)

	l.ClearAllMeasPerIter()
	n := float64(ds.Len())
	w := make([]float64, len(ds.Columns))
	var b float64
	grad := make([]float64, len(w))
	preds := make([]float64, ds.Len())

	for it := 1; it <= iters; it++ {
		select {
		case <-ctx.Done():
			out.Add("error", "training canceled: "+ctx.Err().Error())
			return 1, nil
		default:
		}
		for j := range grad {
			grad[j] = 0
		}
		var gb, sse float64
		for i, x := range ds.Features {
			e := floats.Dot(w, x) + b - ds.Labels[i]
			sse += e * e
			floats.AddScaled(grad, e, x)
			gb += e
		}
		floats.AddScaled(w, -2*lr/n, grad)
		b -= 2 * lr * gb / n

		loss := sse / n
		l.AddMeas(lossMeasure, loss)
		l.AddMeasPerIter(lossMeasure, loss)
		l.AddMeas(iterationMeasure, float64(it))

		l.mu.Lock()
		l.weights = append(l.weights[:0:0], w...)
		l.bias = b
		l.mu.Unlock()
	}

	for i, x := range ds.Features {
		preds[i] = floats.Dot(w, x) + b
	}
	for name, v := range l.Output.Evaluate(preds, ds.Labels) {
		l.AddMeas(name, v)
	}
	if err := l.save(); err != nil {
		return 1, err
	}
	done = true
	l.CollectMeasures(out)
	l.CollectMeasuresHistory(out)
	out.Add("iterations", iters)
	return 0, nil
}

// Predict scores ad["data"] with the current weights. When the data carries
// the label column, evaluation measures are reported as well.
func (l *LinReg) Predict(ctx context.Context, ad apidata.APIData, out apidata.APIData) (int, error) {
	l.mu.RLock()
	w := append([]float64(nil), l.weights...)
	b := l.bias
	l.mu.RUnlock()
	if len(w) == 0 {
		return 1, mllib.ErrBadParam("model is not trained")
	}
	ds, err := l.Input.Transform(ad, false)
	if err != nil {
		return 1, err
	}
	if len(ds.Columns) != len(w) {
		return 1, mllib.ErrInternal(fmt.Sprintf("model has %d weights but input has %d features", len(w), len(ds.Columns)))
	}
	preds := make([]float64, ds.Len())
	for i, x := range ds.Features {
		if i%1024 == 0 && ctx.Err() != nil {
			return 1, ctx.Err()
		}
		preds[i] = floats.Dot(w, x) + b
	}
	l.Output.Finalize(ds.IDs, preds, out)
	if m := l.Output.Evaluate(preds, ds.Labels); m != nil {
		meas := apidata.New()
		for k, v := range m {
			meas.Add(k, v)
		}
		out.Add(mllib.MeasureField, meas)
	}
	return 0, nil
}

// Status is 0 once the model holds trained weights, 1 otherwise.
func (l *LinReg) Status() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.weights) == 0 {
		return 1
	}
	return 0
}

// Coefficients returns a copy of the weights and the bias.
func (l *LinReg) Coefficients() ([]float64, float64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]float64(nil), l.weights...), l.bias
}
