// Package app wires storage, services and collaboration sinks into a
// running drawboard process.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"drawboard/internal/commit"
	"drawboard/internal/config"
	"drawboard/internal/domain"
	"drawboard/internal/secret"
	"drawboard/internal/service"
	"drawboard/internal/storage"
)

// App holds everything one drawboard process shares between its commands.
type App struct {
	cfg config.Config

	db           *storage.DB
	diagramStore *storage.DiagramStore
	sourceStore  *storage.SchemaSourceStore
	approvals    *storage.ApprovalStore

	secrets secret.SecretStore
	emitter service.EventEmitter
	redis   *commit.RedisSink
	sub     *commit.Subscription
	sinks   []commit.Sink

	diagrams *service.DiagramService
	schemas  *service.SchemaService

	mu      sync.Mutex
	watcher *diagramWatcher
	started bool
}

type Option func(*App)

// WithSecretStore overrides the platform secret store.
func WithSecretStore(s secret.SecretStore) Option {
	return func(a *App) { a.secrets = s }
}

// WithEmitter routes service events to e instead of the log.
func WithEmitter(e service.EventEmitter) Option {
	return func(a *App) { a.emitter = e }
}

// WithRedisSink uses an already connected sink instead of cfg.RedisURL.
func WithRedisSink(r *commit.RedisSink) Option {
	return func(a *App) { a.redis = r }
}

// WithSinks hands every commit to sinks after it is persisted.
func WithSinks(sinks ...commit.Sink) Option {
	return func(a *App) { a.sinks = append(a.sinks, sinks...) }
}

// New opens the database and builds the services. Collaboration is
// enabled when a Redis sink is given or cfg.RedisURL is reachable.
func New(cfg config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}

	db, err := storage.New(cfg.DBPath, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.diagramStore = storage.NewDiagramStore(db)
	a.sourceStore = storage.NewSchemaSourceStore(db)
	a.approvals = storage.NewApprovalStore(db)

	if a.secrets == nil {
		a.secrets = secret.Default(cfg.DataDir)
	}
	if a.emitter == nil {
		a.emitter = logEmitter{}
	}
	if a.redis == nil && cfg.RedisURL != "" {
		r, err := commit.NewRedisSink(cfg.RedisURL)
		if err != nil {
			log.Printf("[app] collaboration disabled: %v", err)
		} else {
			a.redis = r
		}
	}

	sinks := append([]commit.Sink(nil), a.sinks...)
	if a.redis != nil {
		sinks = append(sinks, a.redis)
	}
	actor := domain.Actor{ID: cfg.ActorID, Name: cfg.ActorName}
	a.diagrams = service.NewDiagramService(a.diagramStore, a.emitter, actor, sinks...)
	a.schemas = service.NewSchemaService(a.sourceStore, a.secrets, a.emitter)
	a.diagrams.SetValidator(a.schemas)
	return a, nil
}

func (a *App) Config() config.Config               { return a.cfg }
func (a *App) DB() *storage.DB                     { return a.db }
func (a *App) DiagramStore() *storage.DiagramStore { return a.diagramStore }
func (a *App) Approvals() *storage.ApprovalStore   { return a.approvals }
func (a *App) Diagrams() *service.DiagramService   { return a.diagrams }
func (a *App) Schemas() *service.SchemaService     { return a.schemas }
func (a *App) Emitter() service.EventEmitter       { return a.emitter }
func (a *App) Redis() *commit.RedisSink            { return a.redis }

// Startup starts the background work a long-running process needs: the
// schema refresh schedule, the diagram watcher and, with collaboration on,
// the subscription that applies other actors' commits.
func (a *App) Startup(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return nil
	}

	if err := a.schemas.Start(ctx, a.cfg.SchemaRefresh); err != nil {
		return err
	}

	a.watcher = newDiagramWatcher(ctx, a.diagrams, a.diagramStore, a.approvals, a.emitter, a.cfg.WatchInterval)
	a.watcher.Start()

	if a.redis != nil {
		sub, err := a.redis.Subscribe(ctx)
		if err != nil {
			log.Printf("[app] collaboration subscribe failed: %v", err)
		} else {
			a.sub = sub
			go sub.Run(ctx, func(msg domain.ElementSetUpdate) {
				a.diagrams.ApplyRemote(ctx, msg)
			})
		}
	}
	a.started = true
	return nil
}

// Shutdown stops background work, drains queued commits and closes the
// database.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	w, sub := a.watcher, a.sub
	a.watcher, a.sub = nil, nil
	a.started = false
	a.mu.Unlock()

	if w != nil {
		w.Stop()
	}
	if sub != nil {
		sub.Close()
	}
	a.schemas.Stop(ctx)
	if err := a.diagrams.Close(ctx); err != nil {
		log.Printf("[app] drain commits: %v", err)
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// logEmitter reports service events on the log when no UI is attached.
type logEmitter struct{}

func (logEmitter) Emit(_ context.Context, event string, data any) {
	if event == commit.EventElementSetUpdate {
		return
	}
	log.Printf("[event] %s %v", event, data)
}
