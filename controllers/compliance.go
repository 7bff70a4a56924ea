package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kyc-hub/models"
)

func (h *Handler) ComplianceStats(c *gin.Context) {
	stats, err := h.Compliance.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ComplianceAlerts lists alerts filtered by ?status= (default active) and ?severity=
func (h *Handler) ComplianceAlerts(c *gin.Context) {
	alerts, err := h.Compliance.Alerts(c.Request.Context(),
		strings.ToLower(c.Query("status")),
		strings.ToLower(c.Query("severity")),
		int64(queryInt(c, "limit", 0)),
	)
	if err != nil {
		h.fail(c, err, "Alert")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

func (h *Handler) ResolveAlert(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	alertID, ok := paramID(c, "id", "alert")
	if !ok {
		return
	}
	var input struct {
		Notes string `json:"notes"`
	}
	// empty body is allowed
	_ = c.ShouldBindJSON(&input)

	if err := h.Compliance.Resolve(c.Request.Context(), alertID, adminID, input.Notes); err != nil {
		h.fail(c, err, "Alert")
		return
	}
	h.Audit.Record(c.Request.Context(), adminID.Hex(), models.ActionAlertResolve,
		map[string]interface{}{"alert_id": alertID.Hex(), "notes": input.Notes}, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "Alert resolved"})
}
