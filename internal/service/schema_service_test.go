package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"drawboard/internal/schema"
	"drawboard/internal/secret"
	"drawboard/internal/service"
	"drawboard/internal/storage"
)

func newSchemaService(t *testing.T) (*service.SchemaService, *service.MockEmitter) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), filepath.Join(dir, "data"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	emitter := &service.MockEmitter{}
	return service.NewSchemaService(storage.NewSchemaSourceStore(db), secret.NewMemoryStore(), emitter), emitter
}

func writeERFile(t *testing.T, path string, names ...string) {
	t.Helper()
	body := `{"name":"shop","entities":[`
	for i, n := range names {
		if i > 0 {
			body += ","
		}
		body += `{"name":"` + n + `"}`
	}
	body += "]}"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestSchemaService_ERFileCatalog(t *testing.T) {
	svc, emitter := newSchemaService(t)
	path := filepath.Join(t.TempDir(), "shop.json")
	writeERFile(t, path, "users", "orders")

	src, err := svc.CreateSource(service.CreateSourceInput{Name: "shop", Driver: "erfile", Host: path})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := svc.TestConnection(ctx, src.ID); err != nil {
		t.Fatal(err)
	}
	tables, err := svc.Tables(ctx, src.ID)
	if err != nil || !slices.Equal(tables, []string{"orders", "users"}) {
		t.Fatalf("tables = %v, %v", tables, err)
	}
	if err := svc.Validate(ctx, src.ID, []string{"invoices"}); !errors.Is(err, schema.ErrUnknownEntity) {
		t.Errorf("validate: %v", err)
	}

	writeERFile(t, path, "invoices")
	if err := svc.Refresh(ctx, src.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Validate(ctx, src.ID, []string{"invoices"}); err != nil {
		t.Errorf("after refresh: %v", err)
	}
	if len(emitter.Named(service.EventSchemaRefreshed)) != 1 {
		t.Error("expected schema:refreshed")
	}
}

func TestSchemaService_RejectsUnknownDriver(t *testing.T) {
	svc, _ := newSchemaService(t)
	if _, err := svc.CreateSource(service.CreateSourceInput{Name: "x", Driver: "oracle"}); err == nil {
		t.Error("expected error")
	}
}

func TestSchemaService_WatchReloadsERFile(t *testing.T) {
	svc, _ := newSchemaService(t)
	path := filepath.Join(t.TempDir(), "shop.json")
	writeERFile(t, path, "users")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx, ""); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop(context.Background())

	src, err := svc.CreateSource(service.CreateSourceInput{Name: "shop", Driver: "erfile", Host: path})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Tables(ctx, src.ID); err != nil {
		t.Fatal(err)
	}

	writeERFile(t, path, "users", "payments")
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if svc.Validate(ctx, src.ID, []string{"payments"}) == nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("catalog never picked up the edited file")
}

func TestSchemaService_BadSchedule(t *testing.T) {
	svc, _ := newSchemaService(t)
	if err := svc.Start(context.Background(), "not a cron spec"); err == nil {
		t.Error("expected schedule error")
	}
}
