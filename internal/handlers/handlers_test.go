package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JustinWhittecar/bvcore/internal/bvcalc"
	"github.com/JustinWhittecar/bvcore/internal/catalog"
	"github.com/JustinWhittecar/bvcore/internal/equipment"
	"github.com/JustinWhittecar/bvcore/internal/formulas"
)

type testServer struct {
	mux  *http.ServeMux
	calc *bvcalc.Calculator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tables, err := equipment.DefaultAliasTables()
	require.NoError(t, err)
	cache := catalog.NewCache(catalog.EmbeddedSource())
	require.NoError(t, cache.Load(context.Background()))
	resolver := equipment.NewResolver(cache, tables)
	calc := bvcalc.NewCalculator(resolver)

	mux := http.NewServeMux()
	Register(mux,
		&EquipmentHandler{Resolver: resolver, Catalog: cache},
		&BVHandler{Calc: calc, Logger: zap.NewNop()})
	return &testServer{mux: mux, calc: calc}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestEquipmentNames(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/equipment?q=Medium+Laser", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var names []EquipmentName
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	require.NotEmpty(t, names)
	ids := make([]string, 0, len(names))
	for _, n := range names {
		assert.Contains(t, strings.ToLower(n.Name), "medium laser")
		ids = append(ids, n.ID)
	}
	assert.Contains(t, ids, "medium-laser")
	assert.Contains(t, ids, "clan-er-medium-laser")
}

func TestEquipmentNamesUnfiltered(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/equipment", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var names []EquipmentName
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Greater(t, len(names), maxNameResults)
}

func TestEquipmentResolve(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/equipment/resolve?id=ISMediumLaser&id=WarpDrive", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []equipment.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "medium-laser", got[0].ID)
	assert.True(t, got[0].Resolved)
	assert.Equal(t, 46, got[0].Entry.BattleValue)
	assert.False(t, got[1].Resolved)
}

func TestEquipmentResolveRequiresID(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/equipment/resolve", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBreakdownJSON(t *testing.T) {
	s := newTestServer(t)
	in := bvcalc.Input{
		Name:            "Test TST-1",
		Tonnage:         50,
		Armor:           map[bvcalc.Location]int{bvcalc.CenterTorso: 20, bvcalc.LeftArm: 10},
		WalkMP:          5,
		HeatDissipation: 10,
		Weapons: []bvcalc.WeaponEntry{
			{ID: "ISMediumLaser"},
			{ID: "Large Laser"},
			{ID: "Phaser"},
		},
	}
	body, err := json.Marshal(in)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/bv", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got BVResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	want := s.calc.GetBVBreakdown(in)
	assert.Equal(t, want.TotalBV, got.TotalBV)
	assert.Equal(t, []string{"Phaser"}, got.Unresolved)
	assert.Empty(t, got.Warnings)
}

func TestBreakdownMTF(t *testing.T) {
	s := newTestServer(t)
	data, err := os.ReadFile("../ingestion/testdata/Hunchback HBK-4G.mtf")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/bv", bytes.NewReader(data))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	rec := s.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got BVResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1041, got.TotalBV)
}

func TestBreakdownBadBody(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodPost, "/api/bv", strings.NewReader("{nope")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/bv", strings.NewReader("model:X\n"))
	req.Header.Set("Content-Type", "text/plain")
	rec = s.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFormula(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/formulas/masc?tonnage=85", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got formulas.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, formulas.Result{ID: "masc", Weight: 4, CriticalSlots: 4, Cost: 85000}, got)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/formulas/targeting-computer?direct_fire_tonnage=20&tech=Clan", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 4.0, got.Weight)
}

func TestFormulaErrors(t *testing.T) {
	s := newTestServer(t)
	tests := map[string]int{
		"/api/formulas/warp-core?tonnage=50": http.StatusNotFound,
		"/api/formulas/masc?tonnage=heavy":   http.StatusBadRequest,
		"/api/formulas/masc?tech=Periphery":  http.StatusBadRequest,
	}
	for url, want := range tests {
		rec := s.do(t, httptest.NewRequest(http.MethodGet, url, nil))
		assert.Equal(t, want, rec.Code, url)
	}
}

func TestFormulaIDs(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/formulas", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var ids []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ids))
	assert.Equal(t, formulas.IDs(), ids)
}

func TestRequestIDAndAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var seen string
	h := RequestID(AccessLog(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, seen, fields["request_id"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
}

func TestCORS(t *testing.T) {
	h := CORS("http://localhost:5173")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/bv", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
