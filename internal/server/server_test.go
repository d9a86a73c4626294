package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tenantflow/internal/config"
	"github.com/smallbiznis/tenantflow/internal/events/outbox"
	"github.com/smallbiznis/tenantflow/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&outbox.OutboxEvent{}))

	srv := NewServer(Params{
		DB:     conn,
		Outbox: outbox.NewStore(conn),
		Log:    zap.NewNop(),
	})
	return NewEngine(config.Config{Environment: "test"}, srv), conn
}

func get(router *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthReportsOutboxBacklog(t *testing.T) {
	router, conn := newTestEngine(t)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	publisher := outbox.NewOutboxPublisher(conn, node)
	require.NoError(t, publisher.Publish(t.Context(), "tenant.invitation.sent", []byte(`{"email":"a@example.com"}`)))

	resp := get(router, "/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["outbox_pending"])
}

func TestHealthUnavailableWhenDatabaseClosed(t *testing.T) {
	router, conn := newTestEngine(t)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp := get(router, "/health", nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}

func TestMetricsEndpointServesPrometheusText(t *testing.T) {
	router, _ := newTestEngine(t)

	resp := get(router, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "go_goroutines")
}

func TestRequestMiddlewareEchoesRequestID(t *testing.T) {
	router, _ := newTestEngine(t)

	resp := get(router, "/health", map[string]string{requestIDHeader: "req-1"})
	assert.Equal(t, "req-1", resp.Header().Get(requestIDHeader))

	resp = get(router, "/health", nil)
	assert.NotEmpty(t, resp.Header().Get(requestIDHeader))
}
