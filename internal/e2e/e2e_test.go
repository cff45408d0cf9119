package e2e

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mlserved/internal/manager"
	"mlserved/internal/mllib"
	"mlserved/internal/model"
	"mlserved/pkg/apidata"
	"mlserved/pkg/types"
)

const trainCSV = "x,y\n1,3\n2,5\n3,7\n4,9\n"

func linregCreate() types.ServiceCreateRequest {
	return types.ServiceCreateRequest{
		MLLib:       "linreg",
		Description: "e2e",
		Model:       apidata.APIData{"repository": "prices", "create_repository": true},
		Parameters: apidata.APIData{
			"input":  apidata.APIData{"label": "y"},
			"mllib":  apidata.APIData{"learning_rate": 0.05, "iterations": 300},
			"output": apidata.APIData{"measure": []string{"rmse"}},
		},
	}
}

// waitJobDone polls GET /train until the latest job leaves the running state.
func waitJobDone(t *testing.T, base, service string) types.TrainResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, body := httpGet(t, base+"/train?service="+service+"&history=true")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET /train status=%d body=%s", resp.StatusCode, string(body))
		}
		var tr types.TrainResponse
		decode(t, body, &tr)
		if tr.Status != string(manager.JobRunning) {
			return tr
		}
		if time.Now().After(deadline) {
			t.Fatalf("training did not finish in time")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestE2E_ServiceLifecycle(t *testing.T) {
	srv, _ := newServer(t, manager.ManagerConfig{BuildID: "e2e"})

	// 1) server info lists the built-in backends and no services
	resp, body := httpGet(t, srv.URL+"/info")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/info status=%d body=%s", resp.StatusCode, string(body))
	}
	var info types.InfoResponse
	decode(t, body, &info)
	if info.BuildID != "e2e" || len(info.Services) != 0 || len(info.Backends) == 0 {
		t.Fatalf("unexpected info: %+v", info)
	}

	// 2) create the service
	resp, body = httpDo(t, http.MethodPut, srv.URL+"/services/prices", linregCreate())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", resp.StatusCode, string(body))
	}
	var si types.ServiceInfo
	decode(t, body, &si)
	if !si.HasTrain || !si.Online || si.Training {
		t.Fatalf("unexpected service info: %+v", si)
	}

	// 3) predicting before training is a bad parameter
	resp, _ = httpPostJSON(t, srv.URL+"/predict", types.PredictRequest{Service: "prices", Data: []string{"x\n5\n"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("untrained predict status=%d", resp.StatusCode)
	}

	// 4) async training returns a job id and finishes in the background
	resp, body = httpPostJSON(t, srv.URL+"/train", types.TrainRequest{Service: "prices", Data: []string{trainCSV}})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("train status=%d body=%s", resp.StatusCode, string(body))
	}
	var started types.TrainResponse
	decode(t, body, &started)
	if started.Job == "" {
		t.Fatalf("missing job id: %s", string(body))
	}
	done := waitJobDone(t, srv.URL, "prices")
	if done.Status != string(manager.JobFinished) || done.Job != started.Job {
		t.Fatalf("unexpected job: %+v", done.TrainJobInfo)
	}
	hist := done.Body.GetData(mllib.MeasureHistField)
	if n := len(hist.GetFloats("train_loss_hist")); n != 300 {
		t.Fatalf("train_loss_hist has %d entries, want 300", n)
	}

	// 5) predictions use the trained weights
	resp, body = httpPostJSON(t, srv.URL+"/predict", types.PredictRequest{Service: "prices", Data: []string{"x\n5\n"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("predict status=%d body=%s", resp.StatusCode, string(body))
	}
	var pr types.PredictResponse
	decode(t, body, &pr)
	if pr.Code != 0 || len(pr.Body.GetDataSlice("predictions")) != 1 {
		t.Fatalf("unexpected predict response: %s", string(body))
	}

	// 6) full clear removes the repository contents and the service
	weights := filepath.Join(si.Repository, "model.json")
	if _, err := os.Stat(weights); err != nil {
		t.Fatalf("weights not persisted: %v", err)
	}
	resp, body = httpDo(t, http.MethodDelete, srv.URL+"/services/prices?clear=full", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status=%d body=%s", resp.StatusCode, string(body))
	}
	if _, err := os.Stat(weights); !os.IsNotExist(err) {
		t.Fatalf("weights survived full clear: %v", err)
	}
	resp, _ = httpGet(t, srv.URL+"/services/prices")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted service status=%d", resp.StatusCode)
	}
}

func TestE2E_ReloadFromRepository(t *testing.T) {
	srv, _ := newServer(t, manager.ManagerConfig{})

	if resp, body := httpDo(t, http.MethodPut, srv.URL+"/services/prices", linregCreate()); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", resp.StatusCode, string(body))
	}
	async := false
	resp, body := httpPostJSON(t, srv.URL+"/train", types.TrainRequest{Service: "prices", Async: &async, Data: []string{trainCSV}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sync train status=%d body=%s", resp.StatusCode, string(body))
	}

	// deleting without clearing keeps the weights on disk
	if resp, body := httpDo(t, http.MethodDelete, srv.URL+"/services/prices", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status=%d body=%s", resp.StatusCode, string(body))
	}
	if resp, body := httpDo(t, http.MethodPut, srv.URL+"/services/prices", linregCreate()); resp.StatusCode != http.StatusCreated {
		t.Fatalf("recreate status=%d body=%s", resp.StatusCode, string(body))
	}
	resp, body = httpGet(t, srv.URL+"/services/prices")
	var si types.ServiceInfo
	decode(t, body, &si)
	if si.Status != 0 {
		t.Fatalf("reloaded service not trained: %+v", si)
	}
	if resp, body := httpPostJSON(t, srv.URL+"/predict", types.PredictRequest{Service: "prices", Data: []string{"x\n5\n"}}); resp.StatusCode != http.StatusOK {
		t.Fatalf("predict after reload status=%d body=%s", resp.StatusCode, string(body))
	}
}

// slowBackend is an offline backend whose predictions block until released.
type slowBackend struct {
	*mllib.Lib[struct{}, struct{}, model.Model]
	started chan struct{}
	release chan struct{}
}

func (b *slowBackend) Init(apidata.APIData) error  { return nil }
func (b *slowBackend) Clear(apidata.APIData) error { return nil }
func (b *slowBackend) Status() int                 { return 0 }

func (b *slowBackend) Train(context.Context, apidata.APIData, apidata.APIData) (int, error) {
	return 0, nil
}

func (b *slowBackend) Predict(ctx context.Context, _ apidata.APIData, out apidata.APIData) (int, error) {
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return 1, ctx.Err()
	}
	out.Add("predictions", []string{"ok"})
	return 0, nil
}

// TestE2E_Backpressure429 verifies a prediction waiting longer than MaxWait
// for the single in-flight slot of an offline service gets 429.
func TestE2E_Backpressure429(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	srv, _ := newServer(t, manager.ManagerConfig{
		MaxQueueDepth: 2,
		MaxWait:       20 * time.Millisecond,
		Backends: map[string]manager.Factory{
			"slow": func(_ string, mdl model.Model) (mllib.Service, error) {
				return &slowBackend{Lib: mllib.New("slow", struct{}{}, struct{}{}, mdl), started: started, release: release}, nil
			},
		},
	})
	create := types.ServiceCreateRequest{MLLib: "slow", Model: apidata.APIData{"repository": "slow", "create_repository": true}}
	if resp, body := httpDo(t, http.MethodPut, srv.URL+"/services/slow", create); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", resp.StatusCode, string(body))
	}

	first := make(chan int, 1)
	go func() {
		resp, _ := httpPostJSON(t, srv.URL+"/predict", types.PredictRequest{Service: "slow", Data: []string{"a"}})
		first <- resp.StatusCode
	}()
	<-started

	resp, body := httpPostJSON(t, srv.URL+"/predict", types.PredictRequest{Service: "slow", Data: []string{"b"}})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d body=%s", resp.StatusCode, string(body))
	}
	close(release)
	if code := <-first; code != http.StatusOK {
		t.Fatalf("first predict status=%d", code)
	}
}
