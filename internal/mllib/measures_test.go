package mllib

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlserved/pkg/apidata"
)

type stubBackend struct {
	*Lib[*testInput, *testOutput, testModel]
}

func (s *stubBackend) Init(apidata.APIData) error  { return nil }
func (s *stubBackend) Clear(apidata.APIData) error { return nil }
func (s *stubBackend) Train(context.Context, apidata.APIData, apidata.APIData) (int, error) {
	return 0, nil
}
func (s *stubBackend) Predict(context.Context, apidata.APIData, apidata.APIData) (int, error) {
	return 0, nil
}
func (s *stubBackend) Status() int { return 0 }

func TestGetMeasUnsetIsNaN(t *testing.T) {
	l := newTestLib(t.TempDir())
	assert.True(t, math.IsNaN(l.GetMeas("never")))
}

func TestAddMeasLastWriterWins(t *testing.T) {
	l := newTestLib(t.TempDir())
	for _, v := range []float64{0.1, 0.5, 0.25} {
		l.AddMeas("acc", v)
	}
	assert.Equal(t, 0.25, l.GetMeas("acc"))
}

func TestConcurrentAddMeasNoTornValues(t *testing.T) {
	l := newTestLib(t.TempDir())
	const writers = 16
	written := make(map[float64]bool, writers)
	for w := 0; w < writers; w++ {
		written[float64(w)+0.5] = true
	}
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				l.AddMeas("loss", v)
				_ = l.GetMeas("loss")
			}
		}(float64(w) + 0.5)
	}
	wg.Wait()
	assert.True(t, written[l.GetMeas("loss")])
}

func TestCollectMeasuresDistinctNames(t *testing.T) {
	l := newTestLib(t.TempDir())
	const n = 25
	for i := 0; i < n; i++ {
		l.AddMeas(fmt.Sprintf("m%d", i), float64(i))
		l.AddMeas(fmt.Sprintf("m%d", i), float64(i)*2)
	}
	out := apidata.New()
	l.CollectMeasures(out)
	meas := out.GetData(MeasureField)
	require.Len(t, meas, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, float64(i)*2, meas.GetFloat(fmt.Sprintf("m%d", i), -1))
	}
}

func TestCollectMeasuresIsSnapshot(t *testing.T) {
	l := newTestLib(t.TempDir())
	l.AddMeas("loss", 1)
	out := apidata.New()
	l.CollectMeasures(out)
	l.AddMeas("loss", 2)
	assert.Equal(t, 1.0, out.GetData(MeasureField).GetFloat("loss", 0))
}

func TestHistoryPreservesPerGoroutineOrder(t *testing.T) {
	l := newTestLib(t.TempDir())
	const goroutines, perG = 8, 500
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				// encode writer and sequence number in the value
				l.AddMeasPerIter("loss", float64(g*perG+i))
			}
		}(g)
	}
	wg.Wait()

	out := apidata.New()
	l.CollectMeasuresHistory(out)
	seq := out.GetData(MeasureHistField).GetFloats("loss_hist")
	require.Len(t, seq, goroutines*perG)

	last := make([]int, goroutines)
	for i := range last {
		last[i] = -1
	}
	seen := make(map[float64]bool, len(seq))
	for _, v := range seq {
		require.False(t, seen[v], "duplicate value %v", v)
		seen[v] = true
		g, i := int(v)/perG, int(v)%perG
		require.Greater(t, i, last[g], "writer %d reordered", g)
		last[g] = i
	}
}

func TestClearAllMeasPerIter(t *testing.T) {
	l := newTestLib(t.TempDir())
	l.AddMeasPerIter("loss", 1)
	l.AddMeasPerIter("acc", 0.5)
	l.ClearAllMeasPerIter()

	out := apidata.New()
	l.CollectMeasuresHistory(out)
	assert.Empty(t, out.GetData(MeasureHistField))

	l.AddMeasPerIter("loss", 0.42)
	out = apidata.New()
	l.CollectMeasuresHistory(out)
	hist := out.GetData(MeasureHistField)
	require.Len(t, hist, 1)
	assert.Equal(t, []float64{0.42}, hist.GetFloats("loss_hist"))
}

func TestClearHistoryLeavesCurrentMeasures(t *testing.T) {
	l := newTestLib(t.TempDir())
	l.AddMeas("loss", 0.7)
	l.AddMeasPerIter("loss", 0.7)
	l.ClearAllMeasPerIter()
	assert.Equal(t, 0.7, l.GetMeas("loss"))
}

func TestCollectHistoryIsCopy(t *testing.T) {
	l := newTestLib(t.TempDir())
	l.AddMeasPerIter("loss", 1)
	out := apidata.New()
	l.CollectMeasuresHistory(out)
	seq := out.GetData(MeasureHistField)["loss_hist"].([]float64)
	seq[0] = 99
	again := apidata.New()
	l.CollectMeasuresHistory(again)
	assert.Equal(t, []float64{1}, again.GetData(MeasureHistField).GetFloats("loss_hist"))
}

func TestSeparateLocksDoNotBlockEachOther(t *testing.T) {
	l := newTestLib(t.TempDir())
	l.histMu.Lock()
	done := make(chan struct{})
	go func() {
		l.AddMeas("loss", 1)
		_ = l.GetMeas("loss")
		close(done)
	}()
	<-done // would deadlock if current measures shared the history lock
	l.histMu.Unlock()
}
