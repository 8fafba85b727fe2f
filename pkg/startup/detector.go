package startup

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	healthPath    = "/api/v0/health"
	healthTimeout = 5 * time.Second

	DefaultMaxRetries = 10
	DefaultRetryDelay = 3 * time.Second
)

// URLResolver returns the command-center URL, or "" when none is configured.
type URLResolver func() string

// Detector checks whether this node is provisioned and can reach its
// command center.
type Detector struct {
	marker     *Marker
	resolveURL URLResolver
	httpClient *http.Client

	// Sleep waits between health probes. Replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewDetector returns a detector using marker and resolveURL.
func NewDetector(marker *Marker, resolveURL URLResolver) *Detector {
	return &Detector{
		marker:     marker,
		resolveURL: resolveURL,
		httpClient: &http.Client{Timeout: healthTimeout},
		Sleep:      sleepContext,
	}
}

// IsProvisioned reports whether the marker exists and the command center
// answers its health check within maxRetries attempts spaced retryDelay
// apart. Without a marker it returns false without touching the network.
func (d *Detector) IsProvisioned(ctx context.Context, maxRetries int, retryDelay time.Duration) bool {
	if !d.marker.Exists() {
		log.Info().Str("marker", d.marker.Path()).Msg("No provisioned marker, provisioning required")
		return false
	}

	url := ""
	if d.resolveURL != nil {
		url = strings.TrimSpace(d.resolveURL())
	}
	if url == "" {
		log.Warn().Msg("Provisioned marker present but no command center URL configured")
		return false
	}

	if maxRetries < 1 {
		maxRetries = 1
	}
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if d.checkHealth(ctx, url) {
			log.Info().Str("command_center", url).Int("attempt", attempt).Msg("Command center reachable")
			return true
		}
		if attempt == maxRetries {
			break
		}
		log.Info().Int("attempt", attempt).Int("max_retries", maxRetries).Msg("Waiting for network...")
		if err := d.Sleep(ctx, retryDelay); err != nil {
			return false
		}
	}

	log.Warn().Str("command_center", url).Int("attempts", maxRetries).Msg("Command center unreachable, provisioning required")
	return false
}

func (d *Detector) checkHealth(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+healthPath, nil)
	if err != nil {
		return false
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("Health check failed")
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
