package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	"mlserved/pkg/apidata"
	"mlserved/pkg/types"
)

// An offline service refuses predictions while a job runs and serves them
// again once the job has ended.
func TestOfflinePredictRejectedWhileTraining(t *testing.T) {
	fb := &fakeBackends{online: false}
	m, pub := newTestManager(t, fb)
	createFake(t, m, "s")
	b := fb.get("s")
	if !PredictAllowed(b) {
		t.Fatalf("idle offline service must accept predictions")
	}

	resp, err := m.Train(testCtx(t), types.TrainRequest{Service: "s"})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	waitStarted(t, b)
	if PredictAllowed(b) {
		t.Fatalf("offline service accepted prediction while training")
	}
	_, err = m.Predict(testCtx(t), types.PredictRequest{Service: "s", Data: []string{"x"}})
	if !IsTrainingBusy(err) {
		t.Fatalf("expected training busy, got %v", err)
	}
	if got := len(pub.Named(EventPredictRejected)); got != 1 {
		t.Fatalf("predict_rejected events = %d", got)
	}

	close(b.release)
	waitJob(t, m, "s", resp.Job)
	out, err := m.Predict(testCtx(t), types.PredictRequest{Service: "s", Data: []string{"x"}})
	if err != nil {
		t.Fatalf("Predict after training: %v", err)
	}
	if got := out.Body.GetStrings("predictions"); len(got) != 1 || got[0] != "x" {
		t.Fatalf("predictions = %v", got)
	}
}

func TestOnlinePredictDuringTraining(t *testing.T) {
	fb := &fakeBackends{online: true}
	m, _ := newTestManager(t, fb)
	createFake(t, m, "s")
	b := fb.get("s")
	if _, err := m.Train(testCtx(t), types.TrainRequest{Service: "s"}); err != nil {
		t.Fatalf("Train: %v", err)
	}
	waitStarted(t, b)
	if !PredictAllowed(b) {
		t.Fatalf("online service must accept predictions while training")
	}
	out, err := m.Predict(testCtx(t), types.PredictRequest{Service: "s", Data: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if out.Code != 0 || len(out.Body.GetStrings("predictions")) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	close(b.release)
}

func TestPredictUnknownService(t *testing.T) {
	m, _ := newTestManager(t, &fakeBackends{})
	if _, err := m.Predict(testCtx(t), types.PredictRequest{Service: "nope"}); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdmissionTooBusy(t *testing.T) {
	m, _ := newTestManager(t, &fakeBackends{})
	m.maxWait = 20 * time.Millisecond
	createFake(t, m, "s")
	svc, err := m.lookup("s")
	if err != nil {
		t.Fatal(err)
	}
	release, err := m.beginPredict(testCtx(t), svc)
	if err != nil {
		t.Fatalf("first admission: %v", err)
	}
	// offline services run one prediction at a time
	if _, err := m.beginPredict(testCtx(t), svc); !IsTooBusy(err) {
		t.Fatalf("expected too busy, got %v", err)
	}
	if len(svc.queueCh) != 1 {
		t.Fatalf("queue slot leaked: %d", len(svc.queueCh))
	}
	release()
	if len(svc.genCh) != 0 || len(svc.queueCh) != 0 {
		t.Fatalf("slots not released")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.beginPredict(ctx, svc); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestLinRegServiceEndToEnd(t *testing.T) {
	m, _ := newTestManager(t, &fakeBackends{})
	info, err := m.Create(testCtx(t), "lr", types.ServiceCreateRequest{
		MLLib: "linreg",
		Model: apidata.APIData{"repository": "lr", "create_repository": true},
		Parameters: apidata.APIData{
			"input":  apidata.APIData{"label": "y"},
			"mllib":  apidata.APIData{"learning_rate": 0.05, "iterations": 200},
			"output": apidata.APIData{"measure": []string{"rmse"}},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !info.HasTrain || !info.Online {
		t.Fatalf("unexpected capabilities: %+v", info)
	}
	csv := "x,y\n1,3\n2,5\n3,7\n4,9\n"
	resp, err := m.Train(testCtx(t), types.TrainRequest{Service: "lr", Async: boolPtr(false), Data: []string{csv}})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if resp.Code != 0 || resp.Status != string(JobFinished) {
		t.Fatalf("unexpected train response: %+v", resp.TrainJobInfo)
	}
	out, err := m.Predict(testCtx(t), types.PredictRequest{Service: "lr", Data: []string{"x\n5\n"}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if preds := out.Body.GetDataSlice("predictions"); len(preds) != 1 {
		t.Fatalf("predictions = %v", out.Body["predictions"])
	}
}
