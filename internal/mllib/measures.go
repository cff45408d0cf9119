package mllib

import (
	"math"

	"mlserved/pkg/apidata"
)

const (
	// MeasureField holds current measures in collected output.
	MeasureField = "measure"
	// MeasureHistField holds per-iteration histories in collected output.
	MeasureHistField = "measure_hist"
	histSuffix       = "_hist"
)

// AddMeas sets the current value of a measure.
func (l *Lib[I, O, M]) AddMeas(name string, v float64) {
	l.measMu.Lock()
	l.meas[name] = v
	l.measMu.Unlock()
}

// GetMeas returns the current value of a measure, or NaN if it was never set.
func (l *Lib[I, O, M]) GetMeas(name string) float64 {
	l.measMu.Lock()
	defer l.measMu.Unlock()
	if v, ok := l.meas[name]; ok {
		return v
	}
	return math.NaN()
}

// CollectMeasures snapshots current measures into ad under "measure".
func (l *Lib[I, O, M]) CollectMeasures(ad apidata.APIData) {
	meas := apidata.New()
	l.measMu.Lock()
	for k, v := range l.meas {
		meas.Add(k, v)
	}
	l.measMu.Unlock()
	ad.Add(MeasureField, meas)
}

// AddMeasPerIter appends v to the history of a measure.
func (l *Lib[I, O, M]) AddMeasPerIter(name string, v float64) {
	l.histMu.Lock()
	l.hist[name] = append(l.hist[name], v)
	l.histMu.Unlock()
}

// ClearAllMeasPerIter drops every measure history, typically at the start
// of a training run.
func (l *Lib[I, O, M]) ClearAllMeasPerIter() {
	l.histMu.Lock()
	clear(l.hist)
	l.histMu.Unlock()
}

// CollectMeasuresHistory snapshots histories into ad under "measure_hist",
// one "<name>_hist" sequence per measure.
func (l *Lib[I, O, M]) CollectMeasuresHistory(ad apidata.APIData) {
	hist := apidata.New()
	l.histMu.Lock()
	for k, v := range l.hist {
		hist.Add(k+histSuffix, append([]float64(nil), v...))
	}
	l.histMu.Unlock()
	ad.Add(MeasureHistField, hist)
}
