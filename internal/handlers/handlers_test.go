package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeradar/radar-service/internal/catalog"
	"github.com/storeradar/radar-service/internal/engine"
	"github.com/storeradar/radar-service/internal/export"
	"github.com/storeradar/radar-service/internal/markers"
	"github.com/storeradar/radar-service/internal/middleware"
	"github.com/storeradar/radar-service/internal/preference"
	"github.com/storeradar/radar-service/internal/recommend"
	"github.com/storeradar/radar-service/internal/session"
)

const (
	testSecret  = "handlers-secret"
	kmPerDegree = 6371.0 * 3.141592653589793 / 180
	homeLat     = 37.5665
	homeLng     = 126.9780
)

func ptr[T any](v T) *T { return &v }

func storeAt(id string, distKm float64) recommend.Store {
	return recommend.Store{
		StoreID:  id,
		Name:     "Store " + id,
		X:        ptr(homeLat + distKm/kmPerDegree),
		Y:        ptr(homeLng),
		AreaCode: "11000",
	}
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	src := catalog.NewStatic(catalog.Dataset{
		Stores: []recommend.Store{storeAt("near", 0.5), storeAt("mid", 2), storeAt("far", 6)},
		Prices: map[string][]recommend.PricePoint{
			"milk": {
				{StoreID: "near", Price: 3000},
				{StoreID: "mid", Price: 2500},
				{StoreID: "far", Price: 1000},
			},
		},
		Regions: []recommend.Region{{Code: "11000", Name: "서울특별시", Level: 1}},
	})

	rec := preference.NewRecorder(preference.NewMemoryStore(), preference.FixedThreshold(0.1), preference.DefaultConfig())
	manager := session.NewManager(session.DefaultConfig(), src, rec, engine.DefaultConfig())
	t.Cleanup(manager.Stop)
	Init(manager, rec, src)

	router := gin.New()
	router.Use(middleware.Identity(middleware.AuthConfig{JWTSecret: testSecret}))
	RegisterRoutes(router)
	return router
}

func bearer(t *testing.T, user string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(t *testing.T, router http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(header) > 0 {
		req.Header.Set("Authorization", header[0])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router http.Handler, header ...string) string {
	t.Helper()
	body := CreateSessionRequest{Position: &PositionRequest{Lat: ptr(homeLat), Lng: ptr(homeLng), Accuracy: 10}}
	w := do(t, router, http.MethodPost, "/v1/sessions", body, header...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)

	// Wait for the startup cycle so later synchronous recomputes are not superseded.
	s, ok := sessions.Get(resp.ID)
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return s.Engine.Result() != nil
	}, 2*time.Second, 10*time.Millisecond)
	return resp.ID
}

func recompute(t *testing.T, router http.Handler, id string) RecomputeResponse {
	t.Helper()
	w := do(t, router, http.MethodPost, "/v1/sessions/"+id+"/recompute", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RecomputeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	return resp
}

func TestSessionLifecycle(t *testing.T) {
	router := setupRouter(t)
	id := createSession(t, router)

	resp := recompute(t, router, id)
	assert.Equal(t, markers.ModePlain, resp.Result.Mode)
	assert.Len(t, resp.Result.Stores, 3)

	w := do(t, router, http.MethodPost, "/v1/sessions/"+id+"/events", EventRequest{Type: "product", Product: "milk"})
	assert.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		w := do(t, router, http.MethodGet, "/v1/sessions/"+id+"/markers", nil)
		var m MarkersResponse
		return json.Unmarshal(w.Body.Bytes(), &m) == nil && m.Mode == markers.ModeRanked
	}, 2*time.Second, 10*time.Millisecond)

	w = do(t, router, http.MethodGet, "/v1/sessions/"+id+"/markers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var m MarkersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Len(t, m.Surface.Markers, 3)
	require.NotNil(t, m.Surface.UserLocation)
	require.NotNil(t, m.Result)
	require.Len(t, m.Result.Ranked, 3)

	w = do(t, router, http.MethodPost, "/v1/sessions/"+id+"/events", EventRequest{Type: "product", Product: ""})
	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Eventually(t, func() bool {
		w := do(t, router, http.MethodGet, "/v1/sessions/"+id+"/markers", nil)
		var m MarkersResponse
		return json.Unmarshal(w.Body.Bytes(), &m) == nil && m.Mode == markers.ModePlain
	}, 2*time.Second, 10*time.Millisecond, "clearing the product returns to plain markers")

	w = do(t, router, http.MethodDelete, "/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodGet, "/v1/sessions/"+id+"/markers", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, router, http.MethodDelete, "/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostEvent_Validation(t *testing.T) {
	router := setupRouter(t)
	id := createSession(t, router)

	tests := []struct {
		name string
		body EventRequest
		want int
	}{
		{"unknown type", EventRequest{Type: "zoom"}, http.StatusBadRequest},
		{"distance without km", EventRequest{Type: "distance"}, http.StatusBadRequest},
		{"negative distance", EventRequest{Type: "distance", DistanceKm: ptr(-1.0)}, http.StatusBadRequest},
		{"product cleared", EventRequest{Type: "product"}, http.StatusAccepted},
		{"history without store", EventRequest{Type: "history"}, http.StatusBadRequest},
		{"region", EventRequest{Type: "region", RegionCode: "11000"}, http.StatusAccepted},
		{"distance", EventRequest{Type: "distance", DistanceKm: ptr(3.0)}, http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/v1/sessions/"+id+"/events", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w := do(t, router, http.MethodPost, "/v1/sessions/missing/events", EventRequest{Type: "region"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDistanceFilterOverlay(t *testing.T) {
	router := setupRouter(t)
	id := createSession(t, router)

	s, ok := sessions.Get(id)
	require.True(t, ok)
	s.Engine.State().Apply(engine.DistanceChanged{DistanceKm: 3})

	resp := recompute(t, router, id)
	require.NotNil(t, resp.Result.Overlay)
	assert.Equal(t, 3.0, resp.Result.Overlay.RadiusKm)
	assert.Len(t, resp.Result.Stores, 2)
}

func TestUpdatePosition(t *testing.T) {
	router := setupRouter(t)
	id := createSession(t, router)

	w := do(t, router, http.MethodPut, "/v1/sessions/"+id+"/position", PositionRequest{Lat: ptr(35.1796), Lng: ptr(129.0756)})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	s, _ := sessions.Get(id)
	snap := s.Surface.Snapshot()
	require.NotNil(t, snap.UserLocation)
	assert.InDelta(t, 35.1796, snap.UserLocation.Position.Lat, 1e-9)

	w = do(t, router, http.MethodPut, "/v1/sessions/"+id+"/position", PositionRequest{Lat: ptr(95.0), Lng: ptr(0.0)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, router, http.MethodPut, "/v1/sessions/"+id+"/position", map[string]float64{"accuracy": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoreDetailAndSelection(t *testing.T) {
	router := setupRouter(t)
	auth := bearer(t, "user-1")
	id := createSession(t, router, auth)

	s, _ := sessions.Get(id)
	s.Engine.State().Apply(engine.ProductSelected{Product: "milk"})
	resp := recompute(t, router, id)
	require.Equal(t, markers.ModeRanked, resp.Result.Mode)
	assert.Equal(t, "near", resp.Result.Ranked[0].StoreID)

	w := do(t, router, http.MethodGet, "/v1/sessions/"+id+"/stores/near", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail markers.StoreDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.NotNil(t, detail.Scored)
	assert.Equal(t, "near", detail.Store.StoreID)
	assert.Len(t, detail.Candidates, 3)

	w = do(t, router, http.MethodGet, "/v1/sessions/"+id+"/stores/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPost, "/v1/sessions/"+id+"/selections", SelectionRequest{StoreID: "far"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodPost, "/v1/sessions/"+id+"/selections", SelectionRequest{StoreID: "far"}, auth)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out preference.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, preference.TypePrice, out.Type)
	assert.Equal(t, 1, out.Count)
	assert.False(t, out.Updated)

	w = do(t, router, http.MethodPost, "/v1/sessions/"+id+"/selections", SelectionRequest{StoreID: "nowhere"}, auth)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/v1/selections", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	var hist SelectionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.Equal(t, 1, hist.Total)
	assert.Equal(t, "far", hist.Selections[0].StoreID)
	assert.Equal(t, "milk", hist.Selections[0].Product)

	w = do(t, router, http.MethodGet, "/v1/selections", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/v1/preferences", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	var pref recommend.Preference
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pref))
	assert.Equal(t, recommend.DefaultPreference(), pref)
}

func TestRecordSelection_OtherUsersSession(t *testing.T) {
	router := setupRouter(t)
	owner := bearer(t, "user-1")
	other := bearer(t, "user-2")

	id := createSession(t, router, owner)
	s, _ := sessions.Get(id)
	s.Engine.State().Apply(engine.ProductSelected{Product: "milk"})
	recompute(t, router, id)

	w := do(t, router, http.MethodPost, "/v1/sessions/"+id+"/selections", SelectionRequest{StoreID: "near"}, other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	anon := createSession(t, router)
	w = do(t, router, http.MethodPost, "/v1/sessions/"+anon+"/selections", SelectionRequest{StoreID: "near"}, owner)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodGet, "/v1/selections", nil, other)
	require.Equal(t, http.StatusOK, w.Code)
	var hist SelectionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	assert.Zero(t, hist.Total)
}

func TestRecordSelection_NoProduct(t *testing.T) {
	router := setupRouter(t)
	auth := bearer(t, "user-1")
	id := createSession(t, router, auth)
	recompute(t, router, id)

	w := do(t, router, http.MethodPost, "/v1/sessions/"+id+"/selections", SelectionRequest{StoreID: "near"}, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportRanking(t *testing.T) {
	router := setupRouter(t)
	id := createSession(t, router)

	w := do(t, router, http.MethodGet, "/v1/sessions/"+id+"/ranking.xlsx", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	s, _ := sessions.Get(id)
	s.Engine.State().Apply(engine.ProductSelected{Product: "milk"})
	resp := recompute(t, router, id)

	w = do(t, router, http.MethodGet, "/v1/sessions/"+id+"/ranking.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	ids, err := export.ReadRanking(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	want := make([]string, len(resp.Result.Ranked))
	for i, r := range resp.Result.Ranked {
		want[i] = r.StoreID
	}
	assert.Equal(t, want, ids)
}

func TestListRegionsAndHealth(t *testing.T) {
	router := setupRouter(t)

	w := do(t, router, http.MethodGet, "/v1/regions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var regions RegionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &regions))
	assert.Equal(t, recommend.AllRegions, regions.All)
	require.Len(t, regions.Regions, 1)
	assert.Equal(t, "서울특별시", regions.Regions[0].Name)

	createSession(t, router)
	w = do(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "not configured", health.Database)
	assert.Equal(t, 1, health.Sessions)
}

func TestEventRequest_ToEvent(t *testing.T) {
	ev, err := EventRequest{Type: "history", StoreID: "s1"}.ToEvent()
	require.NoError(t, err)
	assert.Equal(t, engine.HistoryHighlightRequested{StoreID: "s1"}, ev)

	ev, err = EventRequest{Type: "product"}.ToEvent()
	require.NoError(t, err)
	assert.Equal(t, engine.ProductSelected{Product: ""}, ev)

	_, err = EventRequest{Type: "distance", DistanceKm: ptr(0.0)}.ToEvent()
	var invalid ErrInvalidRequest
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "distance_km", invalid.Field)
}
