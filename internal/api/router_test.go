package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spellchain/internal/data"
	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/game/arena"
	"github.com/udisondev/spellchain/internal/model"
	"github.com/udisondev/spellchain/internal/telemetry"
)

func newTestServer(t *testing.T, cfg RouterConfig) (*httptest.Server, *arena.Arena) {
	t.Helper()
	a := arena.New(arena.DefaultConfig(), data.DefaultCatalog(), nil)
	_, err := a.Spawn(arena.ActorSpec{
		ActorConfig: model.ActorConfig{ID: "mage", Layer: data.MaskPlayer, MaxHP: 100, MaxMana: 50},
		Caster:      true,
	})
	require.NoError(t, err)
	_, err = a.Spawn(arena.ActorSpec{
		ActorConfig: model.ActorConfig{ID: "golem", Layer: data.MaskEnemy, Position: model.NewVec3(2, 0, 0), MaxHP: 500},
	})
	require.NoError(t, err)

	cfg.Arena = a
	cfg.DisableLogging = true
	ts := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(ts.Close)
	return ts, a
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postCommand(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/api/commands", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_Health(t *testing.T) {
	ts, a := newTestServer(t, RouterConfig{})
	a.Step(0.1)

	var body map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 1.0, body["steps"])
}

func TestRouter_Actors(t *testing.T) {
	ts, _ := newTestServer(t, RouterConfig{})

	var actors []model.ActorSnapshot
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/actors", &actors))
	require.Len(t, actors, 2)
	assert.Equal(t, "golem", actors[0].ID)
	assert.Equal(t, "mage", actors[1].ID)
	assert.Equal(t, "None", actors[1].Chain)

	var golem model.ActorSnapshot
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/actors/golem", &golem))
	assert.Equal(t, 500.0, golem.HP)
	assert.Empty(t, golem.Chain)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/actors/nobody", nil))
}

func TestRouter_CommandQueued(t *testing.T) {
	ts, a := newTestServer(t, RouterConfig{})
	mage, _ := a.World().Actor("mage")

	resp := postCommand(t, ts.URL, `{"actor":"mage","action":"parry","element":"R"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, 1, a.Pending())

	results := a.Step(0.1)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, element.SlotState{A: element.R}, mage.Slots().State())
}

func TestRouter_CommandApplyStatus(t *testing.T) {
	ts, a := newTestServer(t, RouterConfig{})
	golem, _ := a.World().Actor("golem")

	resp := postCommand(t, ts.URL, `{"actor":"golem","action":"apply_status","status":{"kind":"damage","damage":40}}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	a.Step(0.1)
	assert.Equal(t, 460.0, golem.Health().Current())
}

func TestRouter_CommandRejected(t *testing.T) {
	ts, a := newTestServer(t, RouterConfig{})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `{"actor":`, http.StatusBadRequest},
		{"unknown field", `{"actor":"mage","action":"parry","power":9000}`, http.StatusBadRequest},
		{"unknown action", `{"actor":"mage","action":"dance"}`, http.StatusBadRequest},
		{"missing actor", `{"action":"parry"}`, http.StatusBadRequest},
		{"missing action", `{"actor":"mage"}`, http.StatusBadRequest},
		{"status without body", `{"actor":"mage","action":"apply_status"}`, http.StatusBadRequest},
		{"unknown actor", `{"actor":"ghost","action":"parry","element":"R"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postCommand(t, ts.URL, tt.body)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
	assert.Zero(t, a.Pending())
}

func TestRouter_CommandRateLimit(t *testing.T) {
	ts, a := newTestServer(t, RouterConfig{CommandRate: 1})

	first := postCommand(t, ts.URL, `{"actor":"mage","action":"toggle_arm"}`)
	second := postCommand(t, ts.URL, `{"actor":"mage","action":"toggle_arm"}`)

	assert.Equal(t, http.StatusAccepted, first.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, "1", second.Header.Get("Retry-After"))
	assert.Equal(t, 1, a.Pending())
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)
	m.ObserveStep(2)

	ts, _ := newTestServer(t, RouterConfig{Gatherer: reg})
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "spellchain_arena_steps_total 1")
}

func TestRouter_MetricsDisabled(t *testing.T) {
	ts, _ := newTestServer(t, RouterConfig{})
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/metrics", nil))
}
