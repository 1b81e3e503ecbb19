package Controllers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/flavorfleet/admin-dashboard/config"
	"github.com/flavorfleet/admin-dashboard/database"
	"github.com/flavorfleet/admin-dashboard/events"
	"github.com/flavorfleet/admin-dashboard/repository"
	"github.com/flavorfleet/admin-dashboard/router"
	"github.com/flavorfleet/admin-dashboard/services"
	"github.com/flavorfleet/admin-dashboard/storage"
	"github.com/flavorfleet/admin-dashboard/utils"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	router    *gin.Engine
	db        *gorm.DB
	uploadDir string
	token     string
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger("error", "text")
	utils.SetJWTSecret("test-secret")

	uploadDir := t.TempDir()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			AdminUsername:   "admin",
			AdminPassword:   "secret",
			TokenTTL:        time.Hour,
			LoginRatePerMin: 600,
			LoginBurst:      50,
		},
		Storage: config.StorageConfig{UploadDir: uploadDir, PublicBaseURL: "http://test"},
		Reports: config.ReportsConfig{Timezone: "UTC", Currency: "Rs."},
	}

	db := setupTestDB(t)
	images, err := storage.NewLocalStore(uploadDir, cfg.Storage.PublicBaseURL)
	require.NoError(t, err)
	hub := events.NewHub()
	sessions := services.NewSessionService(services.NewMemorySessionStore(), cfg.Auth.TokenTTL)

	r, err := router.SetupRouter(router.Dependencies{
		DB:        db,
		Config:    cfg,
		Catalog:   services.NewCatalogService(repository.NewCatalogRepository(db), images, hub),
		Analytics: services.NewAnalyticsService(repository.NewOrderRepository(db), time.UTC),
		Sessions:  sessions,
		Hub:       hub,
	})
	require.NoError(t, err)

	app := &testApp{router: r, db: db, uploadDir: uploadDir}
	app.token = app.login(t, "admin", "secret")
	return app
}

func (a *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// do sends a JSON request; body may be nil.
func (a *testApp) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) authed(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	return a.do(t, method, path, body, a.token)
}

type imagePart struct {
	filename    string
	contentType string
	data        []byte
}

func (a *testApp) postMultipart(t *testing.T, path string, fields map[string]string, img *imagePart) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if img != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+img.filename+`"`)
		h.Set("Content-Type", img.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(img.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func pngImage() *imagePart {
	return &imagePart{filename: "dish.png", contentType: "image/png", data: []byte("\x89PNG\r\n\x1a\nfake")}
}
