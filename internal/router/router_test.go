package router_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docextract/internal/domain"
	"docextract/internal/handler"
	"docextract/internal/router"
	"docextract/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup() (*gin.Engine, *mocks.MockExtractionService) {
	svc := new(mocks.MockExtractionService)
	r := router.Setup(
		handler.NewExtractionHandler(svc),
		handler.NewHealthHandler(),
		[]string{"https://app.example.com"},
	)
	return r, svc
}

func TestRouter_Health(t *testing.T) {
	r, _ := setup()

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_SyncRoute(t *testing.T) {
	r, svc := setup()
	svc.On("ExtractSync", mock.Anything, "aGk=").Return(&domain.ExtractedResult{Text: "hi"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/extractions/sync", bytes.NewBufferString(`{"document":"aGk="}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	svc.AssertExpectations(t)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r, _ := setup()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/extractions/sync", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
