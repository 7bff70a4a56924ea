package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kyc-hub/logger"
	"kyc-hub/models"
	"kyc-hub/services"
)

// ReviewQueue lists pending records, newest first
func (h *Handler) ReviewQueue(c *gin.Context) {
	records, err := h.Review.Queue(c.Request.Context(), int64(queryInt(c, "limit", 0)))
	if err != nil {
		h.fail(c, err, "Record")
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (h *Handler) DecideRecord(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	recordID, ok := paramID(c, "id", "record")
	if !ok {
		return
	}
	var input struct {
		Decision string `json:"decision"`
		Status   string `json:"status"`
		Comment  string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	decision := input.Decision
	if decision == "" {
		decision = input.Status
	}

	record, err := h.Review.Decide(c.Request.Context(), recordID, adminID, decision, input.Comment, c.ClientIP())
	if err != nil {
		h.fail(c, err, "Record")
		return
	}
	h.Metrics.ObserveDecision(record.Status)
	c.JSON(http.StatusOK, gin.H{"message": "Record " + record.Status, "record": record})
}

// ExportRecords returns matching records as JSON, or as a CSV attachment with ?format=csv
func (h *Handler) ExportRecords(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format must be json or csv"})
		return
	}

	records, err := h.Records.Export(c.Request.Context(), adminID, recordFilterFromQuery(c), format, c.ClientIP())
	if err != nil {
		h.fail(c, err, "Record")
		return
	}

	if format == "csv" {
		filename := fmt.Sprintf("kyc_records_%s.csv", time.Now().Format("20060102_150405"))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Status(http.StatusOK)
		if err := services.WriteCSV(c.Writer, records); err != nil {
			logger.FromContext(c).Error("Failed to write CSV export", zap.Error(err))
		}
		return
	}

	if records == nil {
		records = []models.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records), "exported_at": time.Now().UTC()})
}

func (h *Handler) SearchRecords(c *gin.Context) {
	records, err := h.Records.Search(c.Request.Context(), recordFilterFromQuery(c))
	if err != nil {
		h.fail(c, err, "Record")
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (h *Handler) ListUsers(c *gin.Context) {
	page, err := h.Users.List(c.Request.Context(), services.UserFilter{
		Search:  strings.TrimSpace(c.Query("search")),
		Role:    c.Query("role"),
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", 20),
	})
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := paramID(c, "id", "user")
	if !ok {
		return
	}
	var input struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := h.Users.UpdateRole(c.Request.Context(), adminID, targetID, input.Role, c.ClientIP()); err != nil {
		h.fail(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated", "role": input.Role})
}

func (h *Handler) AuditTrail(c *gin.Context) {
	page, limit := queryInt(c, "page", 1), queryInt(c, "limit", 20)
	logs, total, err := h.Audit.Trail(c.Request.Context(), page, limit)
	if err != nil {
		h.fail(c, err, "Audit log")
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": total, "page": max(page, 1)})
}

func (h *Handler) ListBlacklist(c *gin.Context) {
	entries, err := h.Compliance.Blacklist(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Blacklist entry")
		return
	}
	if entries == nil {
		entries = []models.BlacklistEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"blacklist": entries, "count": len(entries)})
}

func (h *Handler) AddToBlacklist(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input struct {
		AadhaarNumber string `json:"aadhaar_number" binding:"required"`
		Reason        string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	entry, err := h.Compliance.AddToBlacklist(c.Request.Context(), input.AadhaarNumber, input.Reason, adminID)
	if err != nil {
		h.fail(c, err, "Blacklist entry")
		return
	}
	h.Audit.Record(c.Request.Context(), adminID.Hex(), models.ActionBlacklistAdd,
		map[string]interface{}{"aadhaar_number": entry.AadhaarNumber, "reason": entry.Reason}, c.ClientIP())
	c.JSON(http.StatusCreated, gin.H{"message": "Aadhaar number blacklisted", "entry": entry})
}

func (h *Handler) RemoveFromBlacklist(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	number := c.Param("number")
	if err := h.Compliance.RemoveFromBlacklist(c.Request.Context(), number); err != nil {
		h.fail(c, err, "Blacklist entry")
		return
	}
	h.Audit.Record(c.Request.Context(), adminID.Hex(), models.ActionBlacklistDel,
		map[string]interface{}{"aadhaar_number": number}, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "Aadhaar number removed from blacklist"})
}
