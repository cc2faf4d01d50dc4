package sdk_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/celerix-attach/internal/api"
	"github.com/celerix-dev/celerix-attach/internal/attach"
	"github.com/celerix-dev/celerix-attach/internal/server"
	"github.com/celerix-dev/celerix-attach/internal/store"
	"github.com/celerix-dev/celerix-attach/internal/tasks"
	"github.com/celerix-dev/celerix-attach/pkg/schema"
	"github.com/celerix-dev/celerix-attach/pkg/sdk"
)

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pdfBytes = []byte("%PDF-1.4\n%test\n")
)

type testDaemon struct {
	client *sdk.Client
	runner *tasks.Runner
	dir    string
}

func startDaemon(t *testing.T) *testDaemon {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	s, err := store.Open(filepath.Join(dir, "sdk.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	h := &api.Handler{
		Store: s,
		Attach: attach.New(attach.Options{
			Root:         filepath.Join(dir, "static"),
			MaxSize:      1 << 10,
			PhotoFormats: []string{"image/png", "image/jpeg"},
			FileFormats:  []string{"application/pdf"},
		}),
	}
	runner := tasks.NewRunner()
	ts := httptest.NewServer(server.NewRouter(h, runner, 1<<10))
	t.Cleanup(ts.Close)

	client, err := sdk.Connect(ts.URL)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return &testDaemon{client: client, runner: runner, dir: dir}
}

func (d *testDaemon) writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(d.dir, name)
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestClient_ItemLifecycle(t *testing.T) {
	d := startDaemon(t)
	ctx := context.Background()

	it, err := d.client.CreateItem(ctx, "Lamp", d.writeFile(t, "lamp.png", pngBytes), d.writeFile(t, "manual.pdf", pdfBytes))
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if filepath.Ext(it.Photo) != ".png" || filepath.Ext(it.File) != ".pdf" {
		t.Errorf("Unexpected attachment paths: %+v", it)
	}

	got, err := d.client.GetItem(ctx, it.ID)
	if err != nil || got.Photo != it.Photo {
		t.Fatalf("GetItem mismatch: %+v, %v", got, err)
	}

	updated, err := d.client.ReplacePhoto(ctx, it.ID, d.writeFile(t, "other.png", pngBytes))
	if err != nil {
		t.Fatalf("ReplacePhoto failed: %v", err)
	}
	d.runner.Wait()
	if updated.Photo == it.Photo {
		t.Error("Photo path should change")
	}
	if _, err := os.Stat(it.Photo); !os.IsNotExist(err) {
		t.Error("Old photo should be deleted")
	}

	deleted, err := d.client.ClearAttachment(ctx, it.ID, schema.FieldFile)
	if err != nil || !deleted {
		t.Fatalf("ClearAttachment: %v, %v", deleted, err)
	}

	list, err := d.client.ListItems(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListItems: %v, %v", list, err)
	}

	if err := d.client.DeleteItem(ctx, it.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if _, err := d.client.GetItem(ctx, it.ID); !sdk.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestClient_UnsupportedType(t *testing.T) {
	d := startDaemon(t)
	ctx := context.Background()

	it, err := d.client.CreateItem(ctx, "Lamp", "", "")
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	_, err = d.client.ReplacePhoto(ctx, it.ID, d.writeFile(t, "notes.txt", []byte("just text")))
	var ae *sdk.APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusUnsupportedMediaType {
		t.Fatalf("Expected 415, got %v", err)
	}
	if !strings.Contains(ae.Message, "text/plain") {
		t.Errorf("Message should name the content type: %q", ae.Message)
	}
}

func TestClient_TooLarge(t *testing.T) {
	d := startDaemon(t)
	ctx := context.Background()

	big := append(append([]byte{}, pdfBytes...), make([]byte, 2<<10)...)
	_, err := d.client.CreateItem(ctx, "Manual", "", d.writeFile(t, "big.pdf", big))
	var ae *sdk.APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected 413, got %v", err)
	}
}

func TestClient_ClearUnknownField(t *testing.T) {
	c := sdk.NewClient("http://127.0.0.1:1")
	if _, err := c.ClearAttachment(context.Background(), "id", "name"); err == nil {
		t.Fatal("Expected error for unknown field")
	}
}

func TestNewClientScheme(t *testing.T) {
	t.Setenv("CELERIX_DISABLE_TLS", "true")
	if got := sdk.NewClient("localhost:7002").BaseURL(); got != "http://localhost:7002" {
		t.Errorf("Expected http scheme, got %s", got)
	}

	t.Setenv("CELERIX_DISABLE_TLS", "")
	if got := sdk.NewClient("localhost:7002").BaseURL(); got != "https://localhost:7002" {
		t.Errorf("Expected https scheme, got %s", got)
	}

	if got := sdk.NewClient("http://example.com/").BaseURL(); got != "http://example.com" {
		t.Errorf("Explicit URL should be kept, got %s", got)
	}
}

func TestAddr(t *testing.T) {
	t.Setenv("CELERIX_ATTACH_ADDR", "")
	if sdk.Addr("") != sdk.DefaultAddr {
		t.Errorf("Expected default address")
	}
	t.Setenv("CELERIX_ATTACH_ADDR", "example:1")
	if sdk.Addr("") != "example:1" {
		t.Errorf("Expected env address")
	}
	if sdk.Addr("flag:2") != "flag:2" {
		t.Errorf("Explicit address should win")
	}
}
