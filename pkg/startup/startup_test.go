package startup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMarker(t *testing.T) *Marker {
	return NewMarker(filepath.Join(t.TempDir(), "secrets", ".provisioned"))
}

func recordSleeps(d *Detector) *[]time.Duration {
	var sleeps []time.Duration
	d.Sleep = func(ctx context.Context, delay time.Duration) error {
		sleeps = append(sleeps, delay)
		return nil
	}
	return &sleeps
}

func TestMarkerLifecycle(t *testing.T) {
	m := newTestMarker(t)
	assert.False(t, m.Exists())

	require.NoError(t, m.Mark())
	assert.True(t, m.Exists())

	info, err := os.Stat(m.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.Zero(t, info.Size())

	require.NoError(t, m.Clear())
	assert.False(t, m.Exists())
	require.NoError(t, m.Clear())
}

func TestIsProvisionedWithoutMarkerSkipsNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	resolved := false
	d := NewDetector(newTestMarker(t), func() string { resolved = true; return srv.URL })
	sleeps := recordSleeps(d)

	assert.False(t, d.IsProvisioned(context.Background(), 10, time.Second))
	assert.Zero(t, atomic.LoadInt32(&hits))
	assert.False(t, resolved)
	assert.Empty(t, *sleeps)
}

func TestIsProvisionedHealthyFirstAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := newTestMarker(t)
	require.NoError(t, m.Mark())
	d := NewDetector(m, func() string { return srv.URL + "/" })
	sleeps := recordSleeps(d)

	assert.True(t, d.IsProvisioned(context.Background(), 10, 3*time.Second))
	assert.Empty(t, *sleeps)
}

func TestIsProvisionedRetriesUntilHealthy(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := newTestMarker(t)
	require.NoError(t, m.Mark())
	d := NewDetector(m, func() string { return srv.URL })
	sleeps := recordSleeps(d)

	assert.True(t, d.IsProvisioned(context.Background(), 5, 3*time.Second))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, *sleeps)
}

func TestIsProvisionedUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := newTestMarker(t)
	require.NoError(t, m.Mark())
	d := NewDetector(m, func() string { return srv.URL })
	sleeps := recordSleeps(d)

	assert.False(t, d.IsProvisioned(context.Background(), 4, time.Second))
	assert.Len(t, *sleeps, 3)
}

func TestIsProvisionedWithoutURL(t *testing.T) {
	m := newTestMarker(t)
	require.NoError(t, m.Mark())
	d := NewDetector(m, func() string { return "  " })

	assert.False(t, d.IsProvisioned(context.Background(), 3, time.Second))
}

func TestIsProvisionedStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := newTestMarker(t)
	require.NoError(t, m.Mark())
	d := NewDetector(m, func() string { return srv.URL })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.False(t, d.IsProvisioned(ctx, 10, time.Hour))
	assert.Less(t, time.Since(start), time.Minute)
}
