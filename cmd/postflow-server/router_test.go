package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/holdem-tree/postflop-solver/cmd/postflow-server/jobstore"
)

// TestJobLifecycle exercises the full HTTP surface against the in-memory
// store: create a job, poll until it finishes, then fetch its strategy -
// the same notation -> solverapi -> solver -> codec pipeline
// cmd/postflow-solver drives from its own main(), here driven from the
// server's background goroutine instead.
func TestJobLifecycle(t *testing.T) {
	store := jobstore.NewMemory()
	srv := httptest.NewServer(Router(store))
	defer srv.Close()

	body := strings.NewReader(`{"position":"OOP:AA:S50/IP:KK:S50|P5|2c7d9h","iterations":20}`)
	resp, err := http.Post(srv.URL+"/jobs", "application/json", body)
	if err != nil {
		t.Fatalf("POST /jobs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("POST /jobs status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}
	var created createJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a non-empty job id")
	}

	deadline := time.Now().Add(10 * time.Second)
	var job jobstore.Job
	for time.Now().Before(deadline) {
		job, err = store.Get(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if job.Status == jobstore.Done || job.Status == jobstore.Failed {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if job.Status != jobstore.Done {
		t.Fatalf("job status = %q, want %q (error: %q)", job.Status, jobstore.Done, job.Error)
	}

	statusResp, err := http.Get(srv.URL + "/jobs/" + created.ID)
	if err != nil {
		t.Fatalf("GET /jobs/{id}: %v", err)
	}
	defer statusResp.Body.Close()
	if statusResp.StatusCode != http.StatusOK {
		t.Fatalf("GET /jobs/{id} status = %d", statusResp.StatusCode)
	}

	stratResp, err := http.Get(srv.URL + "/jobs/" + created.ID + "/strategy")
	if err != nil {
		t.Fatalf("GET /jobs/{id}/strategy: %v", err)
	}
	defer stratResp.Body.Close()
	if stratResp.StatusCode != http.StatusOK {
		t.Fatalf("GET .../strategy status = %d", stratResp.StatusCode)
	}
	var payload struct {
		NumActions int `json:"num_actions"`
		Hands      []struct {
			Hand  string    `json:"hand"`
			Probs []float32 `json:"probs"`
		} `json:"hands"`
	}
	if err := json.NewDecoder(stratResp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode strategy response: %v", err)
	}
	if len(payload.Hands) == 0 {
		t.Error("expected at least one hand row in the strategy response")
	}
	for _, h := range payload.Hands {
		if len(h.Probs) != payload.NumActions {
			t.Errorf("hand %s has %d probs, want %d", h.Hand, len(h.Probs), payload.NumActions)
		}
	}
}

func TestCreateJobRejectsMissingPosition(t *testing.T) {
	store := jobstore.NewMemory()
	srv := httptest.NewServer(Router(store))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/jobs", "application/json", strings.NewReader(`{"iterations":10}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestGetUnknownJobReturnsNotFound(t *testing.T) {
	store := jobstore.NewMemory()
	srv := httptest.NewServer(Router(store))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/jobs/does-not-exist")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestHealthEndpoint(t *testing.T) {
	store := jobstore.NewMemory()
	srv := httptest.NewServer(Router(store))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}
