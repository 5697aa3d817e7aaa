package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/aimguide/internal/admin"
	"github.com/playmatatu/aimguide/internal/config"
	"github.com/playmatatu/aimguide/internal/models"
	"github.com/playmatatu/aimguide/internal/overlay"
	"github.com/playmatatu/aimguide/internal/profiles"
	"github.com/playmatatu/aimguide/internal/ws"
	"github.com/redis/go-redis/v9"
)

const testSecret = "test-secret"

func testRouter(t *testing.T) (*gin.Engine, *profiles.MemoryStore) {
	t.Helper()
	return newTestRouter(t, nil)
}

func newTestRouter(t *testing.T, rdb *redis.Client) (*gin.Engine, *profiles.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ProfileStore:          "memory",
		JWTSecret:             testSecret,
		JWTTTLHours:           1,
		PreviewCacheSeconds:   30,
		LoginRateLimitSeconds: 3,
	}
	repo := profiles.NewMemoryStore()
	if err := repo.Save(context.Background(), "default", overlay.DefaultSettings()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	lookup, err := admin.StaticLookup("admin", "letmein")
	if err != nil {
		t.Fatalf("StaticLookup failed: %v", err)
	}
	hub := ws.NewHub(repo, rdb, cfg)

	r := gin.New()
	r.GET("/health", HealthCheck(cfg, rdb))
	r.POST("/predict", Predict)
	r.POST("/login", AdminLogin(lookup, rdb, cfg))
	r.GET("/profiles", ListProfiles(repo))
	r.GET("/profiles/:name", GetProfile(repo))
	r.GET("/profiles/:name/preview.png", GetPreview(repo, rdb, cfg))
	protected := r.Group("", AuthMiddleware(cfg))
	protected.PUT("/profiles/:name", PutProfile(repo, hub, rdb))
	protected.POST("/profiles/:name/reset", ResetProfile(repo, hub, rdb))
	protected.DELETE("/profiles/:name", DeleteProfile(repo, hub, rdb))
	return r, repo
}

func do(r http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(r, http.MethodPost, "/login", "", []byte(`{"username":"admin","token":"letmein"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login response missing token: %s", w.Body.String())
	}
	return resp.Token
}

func TestHealthCheck(t *testing.T) {
	r, _ := testRouter(t)
	w := do(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Status       string `json:"status"`
		ProfileStore string `json:"profile_store"`
		Redis        string `json:"redis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.ProfileStore != "memory" || resp.Redis != "disabled" {
		t.Errorf("health = %+v", resp)
	}
}

func TestPredictRejectsExcessiveBounces(t *testing.T) {
	r, _ := testRouter(t)
	body := []byte(`{"tableRect":{"left":0,"top":0,"right":100,"bottom":100},
		"objectBall":{"x":0,"y":50},"ghostBall":{"x":100,"y":50},"maxBounces":65}`)
	if w := do(r, http.MethodPost, "/predict", "", body); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	body = []byte(`{"tableRect":{"left":0,"top":0,"right":100,"bottom":100},
		"objectBall":{"x":0,"y":50},"ghostBall":{"x":100,"y":50},"maxBounces":7}`)
	w := do(r, http.MethodPost, "/predict", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Segments []json.RawMessage `json:"segments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Segments) != 7 {
		t.Errorf("got %d segments, want 7", len(resp.Segments))
	}
}

func TestPredictBankShot(t *testing.T) {
	r, _ := testRouter(t)
	body := []byte(`{
		"tableRect": {"left":0,"top":0,"right":200,"bottom":100},
		"ballRadius": 0,
		"objectBall": {"x":20,"y":40},
		"ghostBall": {"x":60,"y":0},
		"maxBounces": 2
	}`)
	w := do(r, http.MethodPost, "/predict", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Segments []struct {
			Start struct{ X, Y float64 }
			End   struct{ X, Y float64 }
		} `json:"segments"`
		Bounces []struct{ X, Y float64 } `json:"bounces"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(resp.Segments))
	}
	if e := resp.Segments[0].End; abs(e.X-160) > 1e-6 || abs(e.Y-100) > 1e-6 {
		t.Errorf("first bounce = %+v, want (160,100)", e)
	}
	if len(resp.Bounces) != 2 {
		t.Errorf("got %d bounce points, want 2", len(resp.Bounces))
	}
}

func TestPredictGhostOffRailReturnsEmptyPath(t *testing.T) {
	r, _ := testRouter(t)
	body := []byte(`{
		"tableRect": {"left":0,"top":0,"right":200,"bottom":100},
		"objectBall": {"x":20,"y":40},
		"ghostBall": {"x":100,"y":50},
		"maxBounces": 3
	}`)
	w := do(r, http.MethodPost, "/predict", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Segments []json.RawMessage `json:"segments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Segments == nil || len(resp.Segments) != 0 {
		t.Errorf("segments = %s, want []", w.Body.String())
	}
}

func TestPredictRejectsBadJSON(t *testing.T) {
	r, _ := testRouter(t)
	w := do(r, http.MethodPost, "/predict", "", []byte(`{"tableRect":`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetProfileIncludesPrediction(t *testing.T) {
	r, _ := testRouter(t)
	w := do(r, http.MethodGet, "/profiles/default", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ws.PredictionData
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Profile != "default" {
		t.Errorf("profile = %q", resp.Profile)
	}
	if len(resp.Segments) != 2 {
		t.Errorf("got %d segments, want 2 for default settings", len(resp.Segments))
	}
}

func TestGetProfileErrors(t *testing.T) {
	r, _ := testRouter(t)
	if w := do(r, http.MethodGet, "/profiles/missing", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing profile status = %d, want 404", w.Code)
	}
	if w := do(r, http.MethodGet, "/profiles/Bad!Name", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("invalid name status = %d, want 400", w.Code)
	}
}

func TestListProfiles(t *testing.T) {
	r, _ := testRouter(t)
	w := do(r, http.MethodGet, "/profiles", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Profiles []struct {
			Name string `json:"name"`
		} `json:"profiles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Profiles) != 1 || resp.Profiles[0].Name != "default" {
		t.Errorf("profiles = %+v", resp.Profiles)
	}
}

func TestAdminLoginRejectsWrongToken(t *testing.T) {
	r, _ := testRouter(t)
	w := do(r, http.MethodPost, "/login", "", []byte(`{"username":"admin","token":"nope"}`))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	w = do(r, http.MethodPost, "/login", "", []byte(`{"username":"someone","token":"letmein"}`))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want 401", w.Code)
	}
	w = do(r, http.MethodPost, "/login", "", []byte(`{}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", w.Code)
	}
}

func TestWriteRoutesRequireToken(t *testing.T) {
	r, _ := testRouter(t)
	if w := do(r, http.MethodPut, "/profiles/default", "", []byte(`{}`)); w.Code != http.StatusUnauthorized {
		t.Errorf("PUT without token = %d, want 401", w.Code)
	}
	if w := do(r, http.MethodDelete, "/profiles/default", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("DELETE with bad token = %d, want 401", w.Code)
	}

	expired, _, err := admin.IssueToken(testSecret, mustAccount(t), -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if w := do(r, http.MethodPost, "/profiles/default/reset", expired, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("reset with expired token = %d, want 401", w.Code)
	}
}

func TestPutProfileMergesOverDefaults(t *testing.T) {
	r, repo := testRouter(t)
	token := login(t, r)

	w := do(r, http.MethodPut, "/profiles/practice", token, []byte(`{"bounce_count": 4}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	got, err := repo.Get(context.Background(), "practice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := overlay.DefaultSettings()
	want.BounceCount = 4
	if got.BounceCount != 4 || got.TableRect != want.TableRect || got.ControlPoints != want.ControlPoints {
		t.Errorf("stored settings = %+v", got)
	}

	if w := do(r, http.MethodPut, "/profiles/practice", token, []byte(`not json`)); w.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", w.Code)
	}
}

func TestResetAndDeleteProfile(t *testing.T) {
	r, repo := testRouter(t)
	token := login(t, r)
	ctx := context.Background()

	s := overlay.DefaultSettings()
	s.BounceCount = 5
	if err := repo.Save(ctx, "default", s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if w := do(r, http.MethodPost, "/profiles/default/reset", token, nil); w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}
	got, _ := repo.Get(ctx, "default")
	if got.BounceCount != overlay.DefaultSettings().BounceCount {
		t.Errorf("bounce_count after reset = %d", got.BounceCount)
	}

	if w := do(r, http.MethodDelete, "/profiles/default", token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/profiles/default", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestGetPreviewRendersPNG(t *testing.T) {
	r, _ := testRouter(t)
	w := do(r, http.MethodGet, "/profiles/default/preview.png?w=640&h=360", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if got := w.Header().Get("X-Preview-Cache"); got != "miss" {
		t.Errorf("X-Preview-Cache = %q, want miss without redis", got)
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 360 {
		t.Errorf("size = %v, want 640x360", b)
	}
}

func mustAccount(t *testing.T) *models.AdminAccount {
	t.Helper()
	lookup, err := admin.StaticLookup("admin", "letmein")
	if err != nil {
		t.Fatalf("StaticLookup failed: %v", err)
	}
	acc, err := lookup(context.Background(), "admin")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	return acc
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
