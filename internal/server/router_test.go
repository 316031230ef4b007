package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"gearlog/internal/database"
	"gearlog/internal/domain"
	"gearlog/internal/events"
	"gearlog/internal/middleware"
	"gearlog/internal/modules/feed"
	"gearlog/internal/pkg/jwt"
	"gearlog/internal/pkg/requestid"
	"gearlog/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeBroker struct {
	mu      sync.Mutex
	healthy bool
	got     []events.Event
}

func (b *fakeBroker) Publish(_ context.Context, e events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, e)
	return nil
}

func (b *fakeBroker) IsHealthy() bool { return b.healthy }

func (b *fakeBroker) published() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.got...)
}

func setup(t *testing.T, broker *fakeBroker) (*gin.Engine, *gorm.DB, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	opts := database.DefaultOptions()
	opts.LogLevel = logger.Silent
	db, err := database.Connect(":memory:", opts, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	jwtService := jwt.New("router-secret", time.Hour)
	hub := feed.NewHub(nil)
	t.Cleanup(hub.Close)

	d := Deps{DB: db, JWT: jwtService, Hub: hub, Log: zap.NewNop()}
	if broker != nil {
		d.Broker = broker
	}
	return NewRouter(d), db, jwtService
}

func TestHealth(t *testing.T) {
	router, _, _ := setup(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"broker":"disabled"`)
	assert.NotEmpty(t, w.Header().Get(requestid.Header))
}

func TestHealth_BrokerDown(t *testing.T) {
	router, _, _ := setup(t, &fakeBroker{healthy: false})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"broker":"down"`)
}

func TestAPI_RequiresToken(t *testing.T) {
	router, _, _ := setup(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/equipment", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_HEADER_MISSING")
}

func TestAPI_CreatePublishesCorrelatedEvent(t *testing.T) {
	broker := &fakeBroker{healthy: true}
	router, db, jwtService := setup(t, broker)

	u := &domain.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), u))
	token, err := jwtService.GenerateToken(u.ID)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]any{"name": "Test Espresso Machine", "category": "Espresso Machine", "price": "999.99"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/equipment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(requestid.Header, "req-42")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := broker.published()
	require.Len(t, got, 1)
	assert.Equal(t, events.EventTypeEquipmentCreated, got[0].EventType)
	assert.Equal(t, u.ID, got[0].OwnerID)
	assert.Equal(t, "req-42", got[0].CorrelationID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `route="/api/v1/equipment"`)
}

func TestRouter_PanicIsCountedAsServerError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := database.Connect(":memory:", database.DefaultOptions(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	core, logs := observer.New(zapcore.InfoLevel)
	router := NewRouter(Deps{
		DB:      db,
		JWT:     jwt.New("router-secret", time.Hour),
		Metrics: middleware.NewMetrics("gearlog"),
		Log:     zap.New(core),
	})
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `route="/boom",status="500"`)
}

func TestRouter_InternalErrorLoggedOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	opts := database.DefaultOptions()
	opts.LogLevel = logger.Silent
	db, err := database.Connect(":memory:", opts, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	jwtService := jwt.New("router-secret", time.Hour)
	core, logs := observer.New(zapcore.InfoLevel)
	router := NewRouter(Deps{DB: db, JWT: jwtService, Log: zap.New(core)})

	token, err := jwtService.GenerateToken(1)
	require.NoError(t, err)
	require.NoError(t, database.Close(db))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
