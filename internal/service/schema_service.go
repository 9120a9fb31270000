package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"drawboard/internal/dbclient"
	"drawboard/internal/domain"
	"drawboard/internal/schema"
	"drawboard/internal/secret"
	"drawboard/internal/storage"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ─────────────────────────────────────────────────────────────
// Schema Service — related-tables catalog sources
// ─────────────────────────────────────────────────────────────

var ErrRefreshRunning = errors.New("schema refresh already running")

// CreateSourceInput is the service-layer DTO for creating/updating sources.
type CreateSourceInput struct {
	Name     string `json:"name"`
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

// SchemaService manages schema sources and keeps the catalog of their
// entity names fresh: on a cron schedule, and on every save of a watched
// ER project file.
type SchemaService struct {
	store   *storage.SchemaSourceStore
	secrets secret.SecretStore
	emitter EventEmitter
	catalog *schema.Catalog
	guard   refreshGuard

	mu        sync.Mutex
	cronSched *cron.Cron
	watcher   *schema.FileWatcher
}

func NewSchemaService(store *storage.SchemaSourceStore, secrets secret.SecretStore, emitter EventEmitter) *SchemaService {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	s := &SchemaService{
		store:   store,
		secrets: secrets,
		emitter: emitter,
	}
	s.catalog = schema.NewCatalog(s.load)
	return s
}

func secretKey(id string) string { return "schema:" + id }

func (s *SchemaService) load(ctx context.Context, id string) (*dbclient.SchemaInfo, error) {
	src, err := s.store.GetSource(id)
	if err != nil {
		return nil, err
	}
	return schema.Load(ctx, src, s.password(id))
}

func (s *SchemaService) password(id string) string {
	if s.secrets == nil {
		return ""
	}
	pw, err := s.secrets.Get(secretKey(id))
	if err != nil {
		log.Printf("[schema] read secret for %s: %v", id, err)
		return ""
	}
	return string(pw)
}

// ── Source CRUD ────────────────────────────────────────────

func (s *SchemaService) ListSources() ([]domain.SchemaSource, error) {
	return s.store.ListSources()
}

func (s *SchemaService) GetSource(id string) (*domain.SchemaSource, error) {
	return s.store.GetSource(id)
}

func (s *SchemaService) CreateSource(input CreateSourceInput) (*domain.SchemaSource, error) {
	src := &domain.SchemaSource{ID: uuid.New().String()}
	if err := applyInput(src, input); err != nil {
		return nil, err
	}
	if err := s.store.CreateSource(src); err != nil {
		return nil, err
	}
	if input.Password != "" && s.secrets != nil {
		if err := s.secrets.Set(secretKey(src.ID), []byte(input.Password)); err != nil {
			log.Printf("[schema] store secret for %s: %v", src.ID, err)
		}
	}
	s.watch(src)
	return src, nil
}

func (s *SchemaService) UpdateSource(id string, input CreateSourceInput) error {
	src, err := s.store.GetSource(id)
	if err != nil {
		return err
	}
	if err := applyInput(src, input); err != nil {
		return err
	}
	if err := s.store.UpdateSource(src); err != nil {
		return err
	}
	if input.Password != "" && s.secrets != nil {
		_ = s.secrets.Set(secretKey(id), []byte(input.Password))
	}
	s.catalog.Invalidate(id)
	s.unwatch(id)
	s.watch(src)
	return nil
}

func (s *SchemaService) DeleteSource(id string) error {
	s.catalog.Invalidate(id)
	s.unwatch(id)
	if s.secrets != nil {
		_ = s.secrets.Delete(secretKey(id))
	}
	return s.store.DeleteSource(id)
}

func applyInput(src *domain.SchemaSource, input CreateSourceInput) error {
	driver := domain.SchemaDriver(input.Driver)
	switch driver {
	case domain.SchemaDriverMySQL, domain.SchemaDriverPostgres, domain.SchemaDriverMongoDB,
		domain.SchemaDriverSQLite, domain.SchemaDriverERFile:
	default:
		return fmt.Errorf("unsupported schema driver %q", input.Driver)
	}
	if input.Name == "" {
		return errors.New("schema source name is required")
	}
	src.Name = input.Name
	src.Driver = driver
	src.Host = input.Host
	src.Port = input.Port
	src.Database = input.Database
	src.Username = input.Username
	src.SSLMode = input.SSLMode
	if src.SSLMode == "" {
		src.SSLMode = "disable"
	}
	return nil
}

// ── Catalog ────────────────────────────────────────────────

// TestConnection checks that a source can be reached.
func (s *SchemaService) TestConnection(ctx context.Context, id string) error {
	src, err := s.store.GetSource(id)
	if err != nil {
		return err
	}
	if src.Driver == domain.SchemaDriverERFile {
		_, err := schema.ReadERFile(src.Host)
		return err
	}
	conn, err := dbclient.NewConnector(src, s.password(id))
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.TestConnection(ctx)
}

// Tables returns the cached entity names of a source.
func (s *SchemaService) Tables(ctx context.Context, id string) ([]string, error) {
	return s.catalog.Entities(ctx, id)
}

// Describe loads the full schema of a source, columns included, bypassing
// the cache.
func (s *SchemaService) Describe(ctx context.Context, id string) (*dbclient.SchemaInfo, error) {
	return s.load(ctx, id)
}

// Validate implements TableValidator.
func (s *SchemaService) Validate(ctx context.Context, id string, names []string) error {
	return s.catalog.Validate(ctx, id, names)
}

// Refresh reloads one source. A refresh of the same source already in
// flight makes it return ErrRefreshRunning.
func (s *SchemaService) Refresh(ctx context.Context, id string) error {
	if !s.guard.Begin(id) {
		return ErrRefreshRunning
	}
	defer s.guard.End(id)

	if err := s.catalog.Refresh(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventSchemaRefreshed, map[string]string{"sourceId": id})
	return nil
}

// RefreshAll reloads every source currently cached.
func (s *SchemaService) RefreshAll(ctx context.Context) {
	for _, id := range s.catalog.Cached() {
		if err := s.Refresh(ctx, id); err != nil && !errors.Is(err, ErrRefreshRunning) {
			log.Printf("[schema] refresh %s: %v", id, err)
		}
	}
}

// ── Scheduler / watcher lifecycle ──────────────────────────

// Start schedules RefreshAll with the cron spec (empty disables it) and
// watches every ER file source.
func (s *SchemaService) Start(ctx context.Context, refreshSpec string) error {
	if refreshSpec != "" {
		c := cron.New()
		if _, err := c.AddFunc(refreshSpec, func() { s.RefreshAll(ctx) }); err != nil {
			return fmt.Errorf("schema refresh schedule %q: %w", refreshSpec, err)
		}
		c.Start()
		s.mu.Lock()
		s.cronSched = c
		s.mu.Unlock()
		log.Printf("[schema] refresh scheduled: %s", refreshSpec)
	}

	w, err := schema.NewFileWatcher(func(id string) {
		s.catalog.Invalidate(id)
		if err := s.Refresh(ctx, id); err != nil && !errors.Is(err, ErrRefreshRunning) {
			log.Printf("[schema] reload %s: %v", id, err)
		}
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	sources, err := s.store.ListSources()
	if err != nil {
		return err
	}
	for i := range sources {
		s.watch(&sources[i])
	}
	return nil
}

// Stop halts the scheduler and watcher and waits for running refreshes.
func (s *SchemaService) Stop(ctx context.Context) {
	s.mu.Lock()
	c, w := s.cronSched, s.watcher
	s.cronSched, s.watcher = nil, nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	if w != nil {
		_ = w.Close()
	}
	s.guard.Wait(ctx)
}

func (s *SchemaService) watch(src *domain.SchemaSource) {
	if src.Driver != domain.SchemaDriverERFile {
		return
	}
	s.mu.Lock()
	w := s.watcher
	s.mu.Unlock()
	if w == nil {
		return
	}
	if err := w.Watch(src.ID, src.Host); err != nil {
		log.Printf("[schema] watch %s: %v", src.Host, err)
	}
}

func (s *SchemaService) unwatch(id string) {
	s.mu.Lock()
	w := s.watcher
	s.mu.Unlock()
	if w != nil {
		w.Unwatch(id)
	}
}
