package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"docextract/internal/domain"
	"docextract/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"decode", fmt.Errorf("%w: bad padding", domain.ErrDecode), http.StatusBadRequest, "DECODE_ERROR"},
		{"invalid request", fmt.Errorf("%w: key is required", domain.ErrInvalidRequest), http.StatusBadRequest, "INVALID_REQUEST"},
		{"job failed", domain.NewJobFailedError("j", "bad format"), http.StatusUnprocessableEntity, "JOB_FAILED"},
		{"storage", fmt.Errorf("storing document: %w", domain.ErrStorage), http.StatusBadGateway, "STORAGE_ERROR"},
		{"service", fmt.Errorf("textract: %w", domain.ErrService), http.StatusBadGateway, "SERVICE_ERROR"},
		{"poll timeout", fmt.Errorf("waiting: %w", domain.ErrPollTimeout), http.StatusGatewayTimeout, "POLL_TIMEOUT"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "POLL_TIMEOUT"},
		{"canceled", fmt.Errorf("polling: %w", context.Canceled), http.StatusRequestTimeout, "REQUEST_CANCELED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestMapDomainError_MessageCarriesCause(t *testing.T) {
	_, _, msg := handler.MapDomainError(domain.NewJobFailedError("job-9", "unsupported document"))
	assert.Equal(t, "analysis job job-9 failed: unsupported document", msg)

	_, _, msg = handler.MapDomainError(errors.New("secret internals"))
	assert.NotContains(t, msg, "secret")
}

func TestHealthHandler(t *testing.T) {
	h := handler.NewHealthHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	h.Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	h.SetDraining()

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	h.Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	h.Liveness(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
