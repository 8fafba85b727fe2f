package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/jarvis-node/pkg/api/schema"
	"github.com/urmzd/jarvis-node/pkg/api/types"
	"github.com/urmzd/jarvis-node/pkg/db"
	"github.com/urmzd/jarvis-node/pkg/nodeconfig"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
	"github.com/urmzd/jarvis-node/pkg/registration"
	"github.com/urmzd/jarvis-node/pkg/secrets"
	"github.com/urmzd/jarvis-node/pkg/startup"
	"github.com/urmzd/jarvis-node/pkg/wifi"
)

const testNodeID = "jarvis-eb123456"

// gatedWiFi holds Connect until released.
type gatedWiFi struct {
	*wifi.SimulatedManager
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedWiFi) Connect(ctx context.Context, ssid, password string) bool {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.SimulatedManager.Connect(ctx, ssid, password)
}

type testEnv struct {
	router *Router
	svc    *provisioning.Service
	ccURL  string
	config *nodeconfig.Store
	marker *startup.Marker
}

func newTestEnv(t *testing.T, mgr provisioning.WiFiManager) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/nodes/register" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"node_id": body["node_id"], "node_key": "nk-1"})
	}))
	t.Cleanup(cc.Close)

	dir := t.TempDir()
	database, err := db.OpenAndPrepare(context.Background(), filepath.Join(dir, "provisioning.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	paths := secrets.ResolvePaths(filepath.Join(dir, "secrets"), "")
	keys := secrets.NewKeyStore(paths.KeyFile)

	env := &testEnv{
		ccURL:  cc.URL,
		config: nodeconfig.NewStore(filepath.Join(dir, "config.yaml")),
		marker: startup.NewMarker(paths.Marker()),
	}
	env.svc = provisioning.NewService(provisioning.Options{
		Info: provisioning.NodeInfo{
			NodeID:          testNodeID,
			FirmwareVersion: "1.0.0",
			HardwareClass:   "raspberry-pi",
			MACAddress:      "b8:27:eb:12:34:56",
			Capabilities:    []string{"voice", "speaker"},
		},
		WiFi:        mgr,
		Credentials: secrets.NewVault(paths.Credentials(), keys),
		K2:          secrets.NewK2Store(paths, keys),
		Registrar:   registration.NewClient(cc.Client()),
		Config:      env.config,
		Marker:      env.marker,
		Journal:     database.Attempts(),
	})
	env.router = NewRouter(env.svc, schema.NewValidator(), "simulated")
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.Handler().ServeHTTP(w, req)
	return w
}

func (e *testEnv) provisionBody(ssid string) map[string]string {
	return map[string]string{
		"wifi_ssid":          ssid,
		"wifi_password":      "pw",
		"room":               "kitchen",
		"command_center_url": e.ccURL,
		"household_id":       "house-1",
		"node_id":            testNodeID,
		"provisioning_token": "tok",
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, wifi.NewSimulatedManager())

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := env.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)

		resp := decode[types.HealthResponse](t, w)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, provisioning.StateAPMode, resp.State)
		assert.Equal(t, "simulated", resp.WiFiBackend)
		assert.False(t, resp.Timestamp.IsZero())
	}
}

func TestInfo(t *testing.T) {
	env := newTestEnv(t, wifi.NewSimulatedManager())

	w := env.do(t, http.MethodGet, "/api/v1/info", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, testNodeID, raw["node_id"])
	assert.Equal(t, "raspberry-pi", raw["hardware"])
	assert.Equal(t, "b8:27:eb:12:34:56", raw["mac_address"])
	assert.Equal(t, "AP_MODE", raw["state"])
	assert.Equal(t, []any{"voice", "speaker"}, raw["capabilities"])
}

func TestScanNetworks(t *testing.T) {
	env := newTestEnv(t, wifi.NewSimulatedManager())

	w := env.do(t, http.MethodGet, "/api/v1/scan-networks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[types.ScanResponse](t, w)
	require.Len(t, resp.Networks, 4)
	assert.Equal(t, "HomeNetwork", resp.Networks[0].SSID)
	assert.Equal(t, -45, resp.Networks[0].SignalStrength)
}

func TestProvisionCompletes(t *testing.T) {
	env := newTestEnv(t, wifi.NewSimulatedManager())

	w := env.do(t, http.MethodPost, "/api/v1/provision", env.provisionBody("HomeNetwork"))
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[provisioning.ProvisionResult](t, w)
	assert.True(t, res.Success)

	env.svc.Wait()

	w = env.do(t, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[provisioning.Status](t, w)
	assert.Equal(t, provisioning.StateProvisioned, status.State)
	assert.Equal(t, 100, status.ProgressPercent)
	assert.Nil(t, status.Error)
	assert.True(t, env.marker.Exists())

	doc, err := env.config.Load()
	require.NoError(t, err)
	assert.Equal(t, "kitchen", doc.String(nodeconfig.KeyRoom))
	assert.Equal(t, "nk-1", doc.String(nodeconfig.KeyNodeKey))

	w = env.do(t, http.MethodGet, "/api/v1/attempts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	attempts := decode[types.AttemptsResponse](t, w)
	require.Equal(t, 1, attempts.Count)
	assert.Equal(t, "HomeNetwork", attempts.Attempts[0].SSID)
	assert.Equal(t, provisioning.StateProvisioned, attempts.Attempts[0].State)
	assert.True(t, attempts.Attempts[0].Registered)
}

func TestProvisionRejectedAfterProvisioned(t *testing.T) {
	env := newTestEnv(t, wifi.NewSimulatedManager())

	w := env.do(t, http.MethodPost, "/api/v1/provision", env.provisionBody("HomeNetwork"))
	require.Equal(t, http.StatusOK, w.Code)
	env.svc.Wait()

	w = env.do(t, http.MethodPost, "/api/v1/provision", env.provisionBody("NotThere"))
	assert.Equal(t, http.StatusConflict, w.Code)
	res := decode[provisioning.ProvisionResult](t, w)
	assert.False(t, res.Success)
	assert.Equal(t, "Node already provisioned", res.Message)
	env.svc.Wait()

	status := decode[provisioning.Status](t, env.do(t, http.MethodGet, "/api/v1/status", nil))
	assert.Equal(t, provisioning.StateProvisioned, status.State)
	assert.Equal(t, 100, status.ProgressPercent)
	assert.Nil(t, status.Error)
	assert.True(t, env.marker.Exists())
}

func TestProvisionUnknownNetworkFails(t *testing.T) {
	env := newTestEnv(t, wifi.NewSimulatedManager())

	w := env.do(t, http.MethodPost, "/api/v1/provision", env.provisionBody("NoSuchNetwork"))
	require.Equal(t, http.StatusOK, w.Code)

	env.svc.Wait()

	status := decode[provisioning.Status](t, env.do(t, http.MethodGet, "/api/v1/status", nil))
	assert.Equal(t, provisioning.StateError, status.State)
	assert.Equal(t, "Provisioning failed", status.Message)
	require.NotNil(t, status.Error)
	assert.Contains(t, *status.Error, "NoSuchNetwork")
	assert.False(t, env.marker.Exists())
}

func TestProvisionValidation(t *testing.T) {
	env := newTestEnv(t, wifi.NewSimulatedManager())

	body := env.provisionBody("HomeNetwork")
	delete(body, "provisioning_token")
	w := env.do(t, http.MethodPost, "/api/v1/provision", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, types.ErrCodeValidation, decode[types.ErrorResponse](t, w).Error)

	w = env.do(t, http.MethodPost, "/api/v1/provision", `{"wifi_ssid":`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body = env.provisionBody("HomeNetwork")
	body["room"] = "   "
	w = env.do(t, http.MethodPost, "/api/v1/provision", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	status := decode[provisioning.Status](t, env.do(t, http.MethodGet, "/api/v1/status", nil))
	assert.Equal(t, provisioning.StateAPMode, status.State)
}

func TestProvisionRejectsConcurrentRequest(t *testing.T) {
	gated := &gatedWiFi{
		SimulatedManager: wifi.NewSimulatedManager(),
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	env := newTestEnv(t, gated)

	w := env.do(t, http.MethodPost, "/api/v1/provision", env.provisionBody("HomeNetwork"))
	require.Equal(t, http.StatusOK, w.Code)
	<-gated.entered

	before := decode[provisioning.Status](t, env.do(t, http.MethodGet, "/api/v1/status", nil))

	w = env.do(t, http.MethodPost, "/api/v1/provision", env.provisionBody("IoT_Network"))
	assert.Equal(t, http.StatusConflict, w.Code)
	res := decode[provisioning.ProvisionResult](t, w)
	assert.False(t, res.Success)
	assert.Equal(t, "Provisioning already in progress", res.Message)

	after := decode[provisioning.Status](t, env.do(t, http.MethodGet, "/api/v1/status", nil))
	assert.Equal(t, before, after)

	close(gated.release)
	env.svc.Wait()
	status := decode[provisioning.Status](t, env.do(t, http.MethodGet, "/api/v1/status", nil))
	assert.Equal(t, provisioning.StateProvisioned, status.State)
}

func TestProvisionK2(t *testing.T) {
	env := newTestEnv(t, wifi.NewSimulatedManager())
	k2 := base64.RawURLEncoding.EncodeToString(bytes.Repeat([]byte{7}, secrets.K2Size))

	w := env.do(t, http.MethodPost, "/api/v1/provision/k2", map[string]string{
		"node_id":    testNodeID,
		"kid":        "k-1",
		"k2":         k2,
		"created_at": "2026-10-16T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[provisioning.K2Result](t, w)
	assert.True(t, res.Success)
	assert.Equal(t, "k-1", res.KID)

	w = env.do(t, http.MethodPost, "/api/v1/provision/k2", map[string]string{
		"node_id":    "jarvis-other",
		"kid":        "k-2",
		"k2":         k2,
		"created_at": "2026-10-16T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[provisioning.K2Result](t, w)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "node_id mismatch")

	w = env.do(t, http.MethodPost, "/api/v1/provision/k2", map[string]string{"node_id": testNodeID})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAttemptsLimit(t *testing.T) {
	env := newTestEnv(t, wifi.NewSimulatedManager())

	w := env.do(t, http.MethodGet, "/api/v1/attempts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"attempts":[]`))

	w = env.do(t, http.MethodGet, "/api/v1/attempts?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodGet, "/api/v1/attempts?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocsRedirect(t *testing.T) {
	env := newTestEnv(t, wifi.NewSimulatedManager())

	w := env.do(t, http.MethodGet, "/docs", nil)
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/swagger/index.html", w.Header().Get("Location"))
}
