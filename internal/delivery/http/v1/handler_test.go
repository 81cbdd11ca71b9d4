package v1_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"geozone-backend/config"
	"geozone-backend/internal/delivery/http/v1"
	"geozone-backend/internal/domain"
	infraCache "geozone-backend/internal/infrastructure/cache"
	"geozone-backend/internal/repository/memory"
	"geozone-backend/internal/usecase"

	"github.com/goccy/go-json"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type zoneBody struct {
	ID            int64  `json:"id"`
	ZoneName      string `json:"zoneName"`
	City          string `json:"city"`
	IsDeliverable bool   `json:"isDeliverable"`
	IsDeleted     bool   `json:"isDeleted"`
	IsUpdated     bool   `json:"isUpdated"`
	Polygon       []struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"polygon"`
}

const squarePolygon = `[{"lat":0,"lng":0},{"lat":0,"lng":5},{"lat":0,"lng":10},{"lat":10,"lng":10},{"lat":10,"lng":0}]`

func newTestServer(t *testing.T, variants ...domain.ProductVariant) http.Handler {
	t.Helper()

	cfg := &config.Config{
		ZoneOverlapMode:        config.OverlapModeVertex,
		CacheZoneTTL:           time.Minute,
		VariantDefaultPageSize: 10,
		VariantMaxPageSize:     100,
		ZoneDefaultPageSize:    10,
		ZoneMaxPageSize:        100,
		ZoneMapObjectKey:       "zones/map.geojson",
	}
	zoneRepo := memory.NewZoneRepository()
	cache := infraCache.NewMemoryCache(time.Minute, time.Minute)

	version := usecase.NewZoneVersion()
	resolver := usecase.NewSpatialResolver(zoneRepo, cache, nil, version, cfg)
	zoneUC := usecase.NewZoneUsecase(zoneRepo, memory.NewTransactionManager(), cache, nil, nil, nil, version, cfg)
	variantUC := usecase.NewVariantUsecase(resolver, memory.NewVariantRepository(variants...), cfg)

	admin := v1.NewAdminZoneHandler(zoneUC, resolver)
	public := v1.NewZoneHandler(resolver, zoneUC)
	variant := v1.NewVariantHandler(variantUC)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/admin/zones", admin.CreateZone)
	mux.HandleFunc("GET /api/v1/admin/zones", admin.ListZones)
	mux.HandleFunc("GET /api/v1/admin/zones/lookup", admin.LookupZones)
	mux.HandleFunc("GET /api/v1/admin/zones/polygons", admin.ListZonePolygons)
	mux.HandleFunc("POST /api/v1/admin/zones/map/publish", admin.PublishZoneMap)
	mux.HandleFunc("GET /api/v1/admin/zones/{id}", admin.GetZone)
	mux.HandleFunc("PATCH /api/v1/admin/zones/{id}", admin.UpdateZone)
	mux.HandleFunc("DELETE /api/v1/admin/zones/{id}", admin.DeleteZone)
	mux.HandleFunc("GET /api/v1/zones/resolve", public.Resolve)
	mux.HandleFunc("GET /api/v1/zones/map.geojson", public.ZoneMap)
	mux.HandleFunc("GET /api/v1/variants", variant.ListVariants)
	return mux
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: undecodable body %q: %v", method, target, rec.Body.String(), err)
		}
	}
	return rec, env
}

func createZone(t *testing.T, h http.Handler, name, polygon string, deliverable bool) zoneBody {
	t.Helper()
	body := `{"zoneName":"` + name + `","city":"Dhaka","state":"Dhaka","polygon":` + polygon +
		`,"isDeliverable":` + map[bool]string{true: "true", false: "false"}[deliverable] + `}`
	rec, env := do(t, h, http.MethodPost, "/api/v1/admin/zones", "application/json", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %s: status %d body %s", name, rec.Code, rec.Body.String())
	}
	var z zoneBody
	if err := json.Unmarshal(env.Data, &z); err != nil {
		t.Fatal(err)
	}
	return z
}

func TestAdminZoneHandler_CreateAndGet(t *testing.T) {
	h := newTestServer(t)
	z := createZone(t, h, "Gulshan", squarePolygon, true)
	if z.ID == 0 || z.ZoneName != "Gulshan" || len(z.Polygon) != 5 {
		t.Fatalf("unexpected zone %+v", z)
	}

	rec, env := do(t, h, http.MethodGet, "/api/v1/admin/zones/1", "", "")
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("get: status %d", rec.Code)
	}
}

func TestAdminZoneHandler_CreateFromForm(t *testing.T) {
	h := newTestServer(t)
	form := url.Values{
		"zone_name":      {"Banani"},
		"city":           {"Dhaka"},
		"state":          {"Dhaka"},
		"polygon":        {squarePolygon},
		"is_deliverable": {"false"},
	}
	rec, env := do(t, h, http.MethodPost, "/api/v1/admin/zones", "application/x-www-form-urlencoded", form.Encode())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var z zoneBody
	if err := json.Unmarshal(env.Data, &z); err != nil {
		t.Fatal(err)
	}
	if z.IsDeliverable {
		t.Error("is_deliverable=false was ignored")
	}
}

func TestAdminZoneHandler_CreateRejections(t *testing.T) {
	h := newTestServer(t)
	createZone(t, h, "Gulshan", squarePolygon, true)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "overlap",
			body:     `{"zoneName":"Inner","city":"Dhaka","state":"Dhaka","polygon":[{"lat":5,"lng":5},{"lat":5,"lng":20},{"lat":20,"lng":20},{"lat":20,"lng":12},{"lat":20,"lng":5}]}`,
			wantCode: http.StatusConflict,
			wantErr:  "zone_overlap",
		},
		{
			name:     "too few vertices",
			body:     `{"zoneName":"Tiny","city":"Dhaka","state":"Dhaka","polygon":[{"lat":50,"lng":50},{"lat":50,"lng":60},{"lat":60,"lng":60}]}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_polygon",
		},
		{
			name:     "missing lng",
			body:     `{"zoneName":"Broken","city":"Dhaka","state":"Dhaka","polygon":[{"lat":50}]}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_polygon",
		},
		{
			name:     "blank name",
			body:     `{"zoneName":"  ","city":"Dhaka","state":"Dhaka","polygon":` + strings.ReplaceAll(squarePolygon, "10", "90") + `}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_zone",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, http.MethodPost, "/api/v1/admin/zones", "application/json", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if env.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", env.Code, tt.wantErr)
			}
		})
	}

	rec, _ := do(t, h, http.MethodPost, "/api/v1/admin/zones", "application/json", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status %d", rec.Code)
	}
}

func TestAdminZoneHandler_GetErrors(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/admin/zones/99", "", "")
	if rec.Code != http.StatusNotFound || env.Error != "Zone not found" {
		t.Fatalf("missing zone: status %d error %q", rec.Code, env.Error)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/admin/zones/abc", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status %d", rec.Code)
	}
}

func TestAdminZoneHandler_UpdateAndDelete(t *testing.T) {
	h := newTestServer(t)
	z := createZone(t, h, "Gulshan", squarePolygon, true)
	target := "/api/v1/admin/zones/1"

	rec, env := do(t, h, http.MethodPatch, target, "application/json", `{"zoneName":"Gulshan 2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}
	var updated zoneBody
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatal(err)
	}
	if updated.ZoneName != "Gulshan 2" || !updated.IsUpdated || len(updated.Polygon) != len(z.Polygon) {
		t.Fatalf("unexpected update result %+v", updated)
	}

	rec, _ = do(t, h, http.MethodDelete, target, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}

	rec, env = do(t, h, http.MethodGet, target, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get deleted: status %d", rec.Code)
	}
	var deleted zoneBody
	if err := json.Unmarshal(env.Data, &deleted); err != nil {
		t.Fatal(err)
	}
	if !deleted.IsDeleted {
		t.Error("soft-deleted zone should report isDeleted")
	}

	rec, _ = do(t, h, http.MethodDelete, target, "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d, want 404", rec.Code)
	}
	rec, _ = do(t, h, http.MethodPatch, target, "application/json", `{"city":"Chattogram"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update deleted: status %d, want 404", rec.Code)
	}
}

func TestAdminZoneHandler_ListPaginates(t *testing.T) {
	h := newTestServer(t)
	for i, name := range []string{"A", "B", "C"} {
		lat := float64(i * 20)
		poly := `[{"lat":` + jsonNum(lat) + `,"lng":0},{"lat":` + jsonNum(lat) + `,"lng":5},{"lat":` + jsonNum(lat) + `,"lng":10},{"lat":` + jsonNum(lat+10) + `,"lng":10},{"lat":` + jsonNum(lat+10) + `,"lng":0}]`
		createZone(t, h, name, poly, true)
	}

	rec, env := do(t, h, http.MethodGet, "/api/v1/admin/zones?page=1&limit=2", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var zones []zoneBody
	if err := json.Unmarshal(env.Data, &zones); err != nil {
		t.Fatal(err)
	}
	var meta domain.Pagination
	if err := json.Unmarshal(env.Meta, &meta); err != nil {
		t.Fatal(err)
	}
	if len(zones) != 2 || meta.TotalItems != 3 || meta.TotalPages != 2 {
		t.Fatalf("got %d zones, meta %+v", len(zones), meta)
	}
}

func TestZoneHandler_Resolve(t *testing.T) {
	h := newTestServer(t)
	createZone(t, h, "Gulshan", squarePolygon, true)

	tests := []struct {
		query  string
		status string
	}{
		{"lat=5&lng=5", domain.ResolutionDeliverable},
		{"lat=50&lng=50", domain.ResolutionOutsideServiceArea},
	}
	for _, tt := range tests {
		rec, env := do(t, h, http.MethodGet, "/api/v1/zones/resolve?"+tt.query, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tt.query, rec.Code)
		}
		var match domain.ZoneMatchResult
		if err := json.Unmarshal(env.Data, &match); err != nil {
			t.Fatal(err)
		}
		if match.Status != tt.status {
			t.Errorf("%s: status %q, want %q", tt.query, match.Status, tt.status)
		}
	}

	for _, q := range []string{"", "lat=5", "lat=abc&lng=1", "lat=NaN&lng=1"} {
		rec, _ := do(t, h, http.MethodGet, "/api/v1/zones/resolve?"+q, "", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: status %d, want 400", q, rec.Code)
		}
	}
}

func TestAdminZoneHandler_LookupIncludesUndeliverable(t *testing.T) {
	h := newTestServer(t)
	createZone(t, h, "Closed", squarePolygon, false)

	rec, env := do(t, h, http.MethodGet, "/api/v1/admin/zones/lookup?lat=5&lng=5", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var zones []zoneBody
	if err := json.Unmarshal(env.Data, &zones); err != nil {
		t.Fatal(err)
	}
	if len(zones) != 1 || zones[0].ZoneName != "Closed" {
		t.Fatalf("unexpected lookup %+v", zones)
	}

	_, env = do(t, h, http.MethodGet, "/api/v1/zones/resolve?lat=5&lng=5", "", "")
	var match domain.ZoneMatchResult
	if err := json.Unmarshal(env.Data, &match); err != nil {
		t.Fatal(err)
	}
	if match.Status != domain.ResolutionNotDeliverable {
		t.Errorf("status %q, want not_deliverable", match.Status)
	}
}

func TestZoneHandler_ZoneMap(t *testing.T) {
	h := newTestServer(t)
	createZone(t, h, "Gulshan", squarePolygon, true)

	rec, _ := do(t, h, http.MethodGet, "/api/v1/zones/map.geojson", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"FeatureCollection"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestAdminZoneHandler_PublishWithoutStorage(t *testing.T) {
	h := newTestServer(t)
	rec, _ := do(t, h, http.MethodPost, "/api/v1/admin/zones/map/publish", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
}

func TestVariantHandler_ListVariants(t *testing.T) {
	now := time.Now()
	variants := []domain.ProductVariant{
		{ID: 1, ZoneID: 1, ProductName: "Rice", IsActive: true, CreatedAt: now.Add(-time.Hour)},
		{ID: 2, ZoneID: 1, ProductName: "Lentils", IsActive: true, CreatedAt: now},
		{ID: 3, ZoneID: 2, ProductName: "Elsewhere", IsActive: true, CreatedAt: now},
	}
	h := newTestServer(t, variants...)
	createZone(t, h, "Gulshan", squarePolygon, true)

	rec, env := do(t, h, http.MethodGet, "/api/v1/variants?lat=5&lng=5", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var items []domain.ProductVariant
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != 2 {
		t.Fatalf("unexpected variants %+v", items)
	}
	var meta struct {
		TotalItems int64   `json:"totalItems"`
		ZoneIDs    []int64 `json:"zoneIds"`
	}
	if err := json.Unmarshal(env.Meta, &meta); err != nil {
		t.Fatal(err)
	}
	if meta.TotalItems != 2 || len(meta.ZoneIDs) != 1 || meta.ZoneIDs[0] != 1 {
		t.Errorf("unexpected meta %+v", meta)
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/variants?lat=50&lng=50", "", "")
	if rec.Code != http.StatusUnprocessableEntity || env.Code != domain.ResolutionOutsideServiceArea {
		t.Fatalf("outside: status %d code %q", rec.Code, env.Code)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/variants?lat=5&lng=5&category_id=x", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad category: status %d", rec.Code)
	}
}

func jsonNum(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

func TestAdminZoneHandler_UpdateAcceptsSnakeCaseKeys(t *testing.T) {
	h := newTestServer(t)
	createZone(t, h, "Gulshan", squarePolygon, false)

	rec, env := do(t, h, http.MethodPatch, "/api/v1/admin/zones/1", "application/json",
		`{"zone_name":"Renamed","is_deliverable":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var z zoneBody
	if err := json.Unmarshal(env.Data, &z); err != nil {
		t.Fatal(err)
	}
	if z.ZoneName != "Renamed" || !z.IsDeliverable {
		t.Fatalf("snake_case fields not applied: %+v", z)
	}
}

func TestAdminZoneHandler_UpdateRejectsUnusableBodies(t *testing.T) {
	h := newTestServer(t)
	createZone(t, h, "Gulshan", squarePolygon, true)

	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"null polygon only", `{"polygon":null}`},
		{"unknown key", `{"zoneTitle":"Renamed"}`},
		{"both spellings", `{"zoneName":"A","zone_name":"B"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := do(t, h, http.MethodPatch, "/api/v1/admin/zones/1", "application/json", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
		})
	}

	rec, env := do(t, h, http.MethodGet, "/api/v1/admin/zones/1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	var z zoneBody
	if err := json.Unmarshal(env.Data, &z); err != nil {
		t.Fatal(err)
	}
	if z.IsUpdated || z.ZoneName != "Gulshan" {
		t.Errorf("rejected updates must not touch the zone: %+v", z)
	}
}

func TestAdminZoneHandler_FormCheckboxValues(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"on", true},
		{"yes", true},
		{"off", false},
		{"no", false},
		{"true", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			h := newTestServer(t)
			form := url.Values{
				"zone_name":      {"Banani"},
				"city":           {"Dhaka"},
				"state":          {"Dhaka"},
				"polygon":        {squarePolygon},
				"is_deliverable": {tt.value},
			}
			rec, env := do(t, h, http.MethodPost, "/api/v1/admin/zones", "application/x-www-form-urlencoded", form.Encode())
			if rec.Code != http.StatusCreated {
				t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
			}
			var z zoneBody
			if err := json.Unmarshal(env.Data, &z); err != nil {
				t.Fatal(err)
			}
			if z.IsDeliverable != tt.want {
				t.Errorf("is_deliverable=%s gave %v", tt.value, z.IsDeliverable)
			}
		})
	}

	h := newTestServer(t)
	form := url.Values{"zone_name": {"X"}, "city": {"D"}, "state": {"D"}, "polygon": {squarePolygon}, "is_deliverable": {"maybe"}}
	rec, _ := do(t, h, http.MethodPost, "/api/v1/admin/zones", "application/x-www-form-urlencoded", form.Encode())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("is_deliverable=maybe: status %d, want 400", rec.Code)
	}
}
