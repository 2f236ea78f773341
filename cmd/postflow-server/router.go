package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/holdem-tree/postflop-solver/cmd/postflow-server/jobstore"
	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/codec"
	"github.com/holdem-tree/postflop-solver/pkg/notation"
	"github.com/holdem-tree/postflop-solver/pkg/solver"
	"github.com/holdem-tree/postflop-solver/pkg/solverapi"
)

// Router wires the job endpoints onto a stdlib ServeMux, the shape
// jackkayser2005-pokerBench/server/router.go actually uses (plain
// http.NewServeMux + mux.HandleFunc) despite that repo's go.mod also listing
// go-chi/chi/v5 - chi is never imported from any source file in the pack, so
// postflow-server follows the code that exists rather than the dependency
// that doesn't get used.
func Router(store jobstore.Store) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})

	mux.HandleFunc("POST /jobs", func(w http.ResponseWriter, r *http.Request) {
		handleCreateJob(w, r, store)
	})

	mux.HandleFunc("GET /jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetJob(w, r, store)
	})

	mux.HandleFunc("GET /jobs/{id}/strategy", func(w http.ResponseWriter, r *http.Request) {
		handleJobStrategy(w, r, store)
	})

	return mux
}

type createJobRequest struct {
	Position             string  `json:"position"`
	Iterations           int     `json:"iterations"`
	TargetExploitability float64 `json:"target_exploitability"`
	Compressed           bool    `json:"compressed"`
	BetSizes             string  `json:"bet_sizes"`
	RaiseSizes           string  `json:"raise_sizes"`
	DonkSizes            string  `json:"donk_sizes"`
	RakeRate             float64 `json:"rake_rate"`
	RakeCap              float64 `json:"rake_cap"`
}

type createJobResponse struct {
	ID string `json:"id"`
}

func handleCreateJob(w http.ResponseWriter, r *http.Request, store jobstore.Store) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Position == "" {
		http.Error(w, "position is required", http.StatusBadRequest)
		return
	}
	if req.Iterations <= 0 {
		req.Iterations = 1000
	}

	spec, err := notation.ParsePosition(req.Position)
	if err != nil {
		http.Error(w, "invalid position: "+err.Error(), http.StatusBadRequest)
		return
	}

	id := newJobID()
	job := jobstore.Job{
		ID:         id,
		Position:   req.Position,
		Iterations: req.Iterations,
		Status:     jobstore.Pending,
		CreatedAt:  time.Now(),
	}
	if err := store.Create(r.Context(), job); err != nil {
		http.Error(w, "failed to create job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	opts := solverapi.DefaultOptions()
	opts.Compressed = req.Compressed
	if req.BetSizes != "" {
		opts.BetSizes = req.BetSizes
	}
	if req.RaiseSizes != "" {
		opts.RaiseSizes = req.RaiseSizes
	}
	opts.DonkSizes = req.DonkSizes
	opts.RakeRate = req.RakeRate
	opts.RakeCap = req.RakeCap

	go runJob(store, id, spec, req.Iterations, req.TargetExploitability, opts)

	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, createJobResponse{ID: id})
}

// runJob solves in the background and writes the result back to store; the
// handler has already returned the job id to the client, matching
// jackkayser2005-pokerBench's pattern of kicking off long work (duel
// matches) from a goroutine rather than blocking the request.
func runJob(store jobstore.Store, id string, spec *notation.PositionSpec, iterations int, targetExploitability float64, opts solverapi.Options) {
	ctx := context.Background()
	if err := store.UpdateStatus(ctx, id, jobstore.Running, ""); err != nil {
		slog.Error("jobstore: update to running failed", "job", id, "error", err)
	}

	g, err := solverapi.NewGame(spec, opts)
	if err != nil {
		failJob(store, id, err)
		return
	}
	sv, err := solver.New(g)
	if err != nil {
		failJob(store, id, err)
		return
	}
	if _, err := sv.Solve(ctx, iterations, targetExploitability); err != nil {
		failJob(store, id, err)
		return
	}

	var buf bytes.Buffer
	if err := codec.Save(g, cards.River, &buf); err != nil {
		failJob(store, id, err)
		return
	}
	if err := store.SaveResult(ctx, id, buf.Bytes()); err != nil {
		slog.Error("jobstore: save result failed", "job", id, "error", err)
	}
}

func failJob(store jobstore.Store, id string, err error) {
	slog.Error("job failed", "job", id, "error", err)
	if uerr := store.UpdateStatus(context.Background(), id, jobstore.Failed, err.Error()); uerr != nil {
		slog.Error("jobstore: update to failed failed", "job", id, "error", uerr)
	}
}

func handleGetJob(w http.ResponseWriter, r *http.Request, store jobstore.Store) {
	id := r.PathValue("id")
	job, err := store.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"id":         job.ID,
		"position":   job.Position,
		"iterations": job.Iterations,
		"status":     job.Status,
		"error":      job.Error,
		"created_at": job.CreatedAt,
	})
}

func handleJobStrategy(w http.ResponseWriter, r *http.Request, store jobstore.Store) {
	id := r.PathValue("id")
	job, err := store.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if job.Status != jobstore.Done {
		http.Error(w, "job not finished: "+job.Status, http.StatusConflict)
		return
	}

	g, err := codec.Load(bytes.NewReader(job.Result))
	if err != nil {
		http.Error(w, "failed to decode saved result: "+err.Error(), http.StatusInternalServerError)
		return
	}

	root := g.Node(g.Root())
	hands := root.Hands(root.ToAct)
	sum := g.StrategyAt(g.Root())
	avg := solver.AverageStrategy(sum, int(root.NumActions), len(hands))

	type row struct {
		Hand  string    `json:"hand"`
		Probs []float32 `json:"probs"`
	}
	rows := make([]row, len(hands))
	for i, combo := range hands {
		probs := make([]float32, root.NumActions)
		for a := 0; a < int(root.NumActions); a++ {
			probs[a] = avg[a*len(hands)+i]
		}
		rows[i] = row{Hand: combo.String(), Probs: probs}
	}
	writeJSON(w, map[string]any{"num_actions": root.NumActions, "hands": rows})
}

func newJobID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
