package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"realmatlas/storage"
)

// The storage package resolves its data directory once per process, so the
// whole package shares one scratch dir.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "realmatlas-api-test")
	if err != nil {
		os.Exit(1)
	}
	os.Setenv("REALMATLAS_DATA_DIR", dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestExportPostsToEndpoint(t *testing.T) {
	var mu sync.Mutex
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		mu.Lock()
		got = body
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewExportClient(srv.URL, time.Second)
	dest, err := c.Export("patrol_points", []byte(`{"points":[]}`), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if dest != srv.URL {
		t.Errorf("dest = %q, want endpoint", dest)
	}
	mu.Lock()
	defer mu.Unlock()
	if string(got) != `{"points":[]}` {
		t.Errorf("endpoint received %q", got)
	}
}

func TestExportFallsBackOnTransportFailure(t *testing.T) {
	// Endpoint that refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewExportClient(srv.URL, time.Second)
	dest, err := c.Export("patrol_points", []byte(`{"count":0}`), time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(dest, "patrol_points_20260830_120000.json") {
		t.Errorf("fallback dest = %q", dest)
	}
	data, err := os.ReadFile(filepath.Join(storage.DataDir(), "exports", "patrol_points_20260830_120000.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"count":0}` {
		t.Errorf("fallback file = %q", data)
	}
}

func TestExportFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewExportClient(srv.URL, time.Second)
	dest, err := c.Export("beacons", []byte(`{}`), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dest, "beacons_") {
		t.Errorf("dest = %q, want local fallback file", dest)
	}
}

func TestExportWithoutEndpointWritesLocally(t *testing.T) {
	c := NewExportClient("", time.Second)
	dest, err := c.Export("patrol_points", []byte(`{}`), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("fallback file missing: %v", err)
	}
}
