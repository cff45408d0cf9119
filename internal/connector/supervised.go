package connector

import (
	"math"

	"mlserved/internal/mllib"
	"mlserved/pkg/apidata"
)

// SupervisedOutput formats regression predictions and computes the
// evaluation measures requested in "output.measure".
type SupervisedOutput struct {
	Measures []string
}

// NewSupervisedOutput returns a connector reporting rmse by default.
func NewSupervisedOutput() *SupervisedOutput {
	return &SupervisedOutput{Measures: []string{"rmse"}}
}

// Init reads the "output" object of ad.
func (o *SupervisedOutput) Init(ad apidata.APIData) error {
	out := ad.GetData("output")
	if ms := out.GetStrings("measure"); len(ms) > 0 {
		for _, m := range ms {
			if m != "rmse" && m != "mae" && m != "mse" {
				return mllib.ErrBadParam("unknown measure " + m)
			}
		}
		o.Measures = ms
	}
	return nil
}

// Evaluate computes the configured measures. It returns nil when labels are
// missing or mismatched.
func (o *SupervisedOutput) Evaluate(preds, labels []float64) map[string]float64 {
	if len(labels) == 0 || len(labels) != len(preds) {
		return nil
	}
	var se, ae float64
	for i := range preds {
		d := preds[i] - labels[i]
		se += d * d
		ae += math.Abs(d)
	}
	n := float64(len(preds))
	res := make(map[string]float64, len(o.Measures))
	for _, m := range o.Measures {
		switch m {
		case "mse":
			res[m] = se / n
		case "rmse":
			res[m] = math.Sqrt(se / n)
		case "mae":
			res[m] = ae / n
		}
	}
	return res
}

// Finalize writes one {uri, value} entry per prediction into out.
func (o *SupervisedOutput) Finalize(ids []string, values []float64, out apidata.APIData) {
	preds := make([]apidata.APIData, len(values))
	for i, v := range values {
		preds[i] = apidata.APIData{"uri": ids[i], "value": v}
	}
	out.Add("predictions", preds)
}
