package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"kyc-hub/config"
	"kyc-hub/logger"
	"kyc-hub/metrics"
	middlewares "kyc-hub/middleware"
	"kyc-hub/models"
	"kyc-hub/services"
)

// Pinger reports database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// OCRInfo describes the OCR setup reported by /api/ocr-info
type OCRInfo struct {
	Engine            string   `json:"engine"`
	Version           string   `json:"version"`
	Languages         []string `json:"languages"`
	AllowedExtensions []string `json:"allowed_extensions"`
	MaxUploadMB       int64    `json:"max_upload_mb"`
	DocumentTypes     []string `json:"document_types"`
}

// Handler serves the JSON API
type Handler struct {
	Auth       *services.AuthService
	KYC        *services.KYCService
	Records    *services.RecordService
	Review     *services.ReviewService
	Users      *services.UserService
	Compliance *services.ComplianceService
	Audit      *services.AuditService
	DB         Pinger
	OCR        OCRInfo
	Cookie     config.CookieConfig
	MaxUpload  int64
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

// fail maps service errors to a status code and an error body
func (h *Handler) fail(c *gin.Context, err error, resource string) {
	status, msg := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, services.ErrNotFound):
		status, msg = http.StatusNotFound, resource+" not found"
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrUnsupportedFile):
		status, msg = http.StatusBadRequest, detail(err)
	case errors.Is(err, services.ErrFileTooLarge):
		status, msg = http.StatusRequestEntityTooLarge, detail(err)
	case errors.Is(err, services.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, services.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, services.ErrNotVerified):
		status, msg = http.StatusForbidden, "Email not verified. A new OTP has been sent"
	case errors.Is(err, services.ErrForbidden):
		status, msg = http.StatusForbidden, "Access denied"
	case errors.Is(err, services.ErrInvalidOTP):
		status, msg = http.StatusBadRequest, "Invalid or expired OTP"
	case errors.Is(err, services.ErrAlreadyVerified):
		status, msg = http.StatusBadRequest, "Email already verified"
	case errors.Is(err, services.ErrEmailTaken):
		status, msg = http.StatusConflict, "Email already registered"
	case errors.Is(err, services.ErrAlreadyDecided):
		status, msg = http.StatusConflict, "Record has already been reviewed"
	case errors.Is(err, services.ErrProcessingFailed):
		status, msg = http.StatusUnprocessableEntity, "OCR processing failed"
	default:
		logger.FromContext(c).Error("Request failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

// detail drops the sentinel prefix of a wrapped error
func detail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" {
		return err.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middlewares.UserIDKey))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func viewer(c *gin.Context) (services.Viewer, bool) {
	id, ok := currentUserID(c)
	if !ok {
		return services.Viewer{}, false
	}
	return services.Viewer{UserID: id, Admin: c.GetString(middlewares.RoleKey) == models.RoleAdmin}, true
}

func paramID(c *gin.Context, name, label string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label + " ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func recordFilterFromQuery(c *gin.Context) services.RecordFilter {
	return services.RecordFilter{
		Status:       strings.ToLower(c.Query("status")),
		DocumentType: strings.ToLower(c.Query("document_type")),
		RiskCategory: strings.ToLower(c.Query("risk_category")),
		Keyword:      strings.TrimSpace(c.Query("keyword")),
		Limit:        int64(queryInt(c, "limit", 0)),
	}
}
