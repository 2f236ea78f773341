// Command postflow-server exposes the solver over HTTP: POST /jobs
// starts a solve, GET /jobs/{id} polls status, and
// GET /jobs/{id}/strategy returns the root strategy once a job is done.
// main's env/flag wiring and the optional Postgres-backed job store follow
// jackkayser2005-pokerBench/server/main.go: godotenv for local overrides, a
// DATABASE_URL that falls back to an in-memory store when unset, and a plain
// http.Server with fixed read/write timeouts.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"

	"github.com/holdem-tree/postflop-solver/cmd/postflow-server/jobstore"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))
	slog.SetDefault(logger)

	port := flag.String("port", getenv("PORT", "8080"), "port to listen on")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN; empty uses an in-memory job store")
	migrate := flag.Bool("migrate", asBool(os.Getenv("AUTO_MIGRATE")), "run schema migration against --dsn on startup")
	flag.Parse()

	ctx := context.Background()

	var store jobstore.Store
	if *dsn != "" {
		pg, err := jobstore.OpenPostgres(ctx, *dsn)
		if err != nil {
			slog.Error("failed to open postgres job store", "error", err)
			os.Exit(1)
		}
		if *migrate {
			if err := pg.Migrate(ctx); err != nil {
				slog.Error("migration failed", "error", err)
				os.Exit(1)
			}
			slog.Info("migrated job store schema")
		}
		store = pg
		slog.Info("using postgres job store")
	} else {
		store = jobstore.NewMemory()
		slog.Info("using in-memory job store (set --dsn for a durable one)")
	}
	defer store.Close(ctx)

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      Router(store),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	pterm.Info.Printfln("listening on http://localhost:%s", *port)
	slog.Error("server stopped", "error", srv.ListenAndServe())
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func asBool(s string) bool {
	switch s {
	case "1", "true", "TRUE", "True", "yes":
		return true
	default:
		return false
	}
}
