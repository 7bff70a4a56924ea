package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"kyc-hub/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFailMapsServiceErrors(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{services.ErrNotFound, http.StatusNotFound, "Record not found"},
		{fmt.Errorf("%w: name must be at least 2 characters", services.ErrInvalidInput), http.StatusBadRequest, "Name must be at least 2 characters"},
		{fmt.Errorf("%w: limit is 16 MB", services.ErrFileTooLarge), http.StatusRequestEntityTooLarge, "Limit is 16 MB"},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{services.ErrNotVerified, http.StatusForbidden, "Email not verified. A new OTP has been sent"},
		{services.ErrForbidden, http.StatusForbidden, "Access denied"},
		{services.ErrEmailTaken, http.StatusConflict, "Email already registered"},
		{fmt.Errorf("%w: status is approved", services.ErrAlreadyDecided), http.StatusConflict, "Record has already been reviewed"},
		{fmt.Errorf("%w: tesseract crashed", services.ErrProcessingFailed), http.StatusUnprocessableEntity, "OCR processing failed"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		h.fail(c, tc.err, "Record")

		assert.Equal(t, tc.code, w.Code, tc.err.Error())
		assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.msg), w.Body.String())
	}
}

func TestDetail(t *testing.T) {
	assert.Equal(t, "Allowed types are png, jpg", detail(fmt.Errorf("%w: allowed types are png, jpg", services.ErrUnsupportedFile)))
	assert.Equal(t, "Invalid input", detail(services.ErrInvalidInput))
}

func TestSameSite(t *testing.T) {
	h := &Handler{}
	for in, want := range map[string]http.SameSite{
		"strict": http.SameSiteStrictMode,
		"none":   http.SameSiteNoneMode,
		"lax":    http.SameSiteLaxMode,
		"":       http.SameSiteLaxMode,
	} {
		h.Cookie.SameSite = in
		assert.Equal(t, want, h.sameSite(), in)
	}
}
