package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drawboard/internal/commit"
	"drawboard/internal/config"
	"drawboard/internal/domain"
	"drawboard/internal/service"
)

// ── Collaboration hub ──────────────────────────────────────
// Serves element-set commits to WebSocket clients. With Redis configured
// it relays every commit published by any drawboard process; without it
// only commits made in this process reach the clients.

// ServeHub runs the collaboration hub on cfg.HubAddr until interrupted.
func ServeHub(cfg config.Config, opts ...Option) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var a *App
	hub := commit.NewHub(func(ctx context.Context, setID string) (domain.ElementSetUpdate, error) {
		return a.latest(ctx, setID)
	})
	defer hub.Close()

	a, err := New(cfg, append(opts, WithSinks(hub))...)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	if err := a.Startup(ctx); err != nil {
		return err
	}
	if a.redis != nil {
		sub, err := a.redis.Subscribe(ctx)
		if err != nil {
			return err
		}
		defer sub.Close()
		actor := a.diagrams.Actor()
		go sub.Run(ctx, func(msg domain.ElementSetUpdate) {
			// Own commits already reached the hub as a sink.
			if msg.ActorID == actor.ID {
				return
			}
			if err := hub.Deliver(ctx, msg); err != nil {
				log.Printf("[hub] relay %s: %v", msg.TargetElementSetID, err)
			}
		})
	}

	server := &http.Server{
		Addr:              cfg.HubAddr,
		Handler:           a.HubHandler(hub),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[hub] listening on %s", cfg.HubAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[hub] shutdown error: %v", err)
	}
	return nil
}

// HubHandler routes WebSocket clients to hub and exposes read-only diagram
// endpoints for clients that need the full list.
func (a *App) HubHandler(hub *commit.Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/diagrams", func(w http.ResponseWriter, r *http.Request) {
		diagrams, err := a.diagrams.ListDiagrams()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if diagrams == nil {
			diagrams = []domain.Diagram{}
		}
		writeJSON(w, http.StatusOK, diagrams)
	})
	mux.HandleFunc("GET /api/diagrams/{id}", func(w http.ResponseWriter, r *http.Request) {
		d, err := a.diagrams.GetDiagram(r.PathValue("id"))
		if service.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, d)
	})
	return mux
}

// latest primes a new hub client: the last broadcast when Redis has one,
// otherwise the persisted element set.
func (a *App) latest(ctx context.Context, setID string) (domain.ElementSetUpdate, error) {
	if a.redis != nil {
		if msg, err := a.redis.Latest(ctx, setID); err == nil {
			return msg, nil
		}
	}
	d, err := a.diagramStore.GetByElementSet(setID)
	if err != nil {
		return domain.ElementSetUpdate{}, err
	}
	return domain.NewElementSetUpdate(setID, a.diagrams.Actor(), d.Elements), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
