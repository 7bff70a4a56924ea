package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kyc-hub/models"
)

func (h *Handler) ListRecords(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	records, err := h.Records.List(c.Request.Context(), v, recordFilterFromQuery(c))
	if err != nil {
		h.fail(c, err, "Record")
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (h *Handler) RecordStats(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	stats, err := h.Records.Stats(c.Request.Context(), v)
	if err != nil {
		h.fail(c, err, "Record")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetRecord(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "record")
	if !ok {
		return
	}
	record, err := h.Records.Get(c.Request.Context(), v, id)
	if err != nil {
		h.fail(c, err, "Record")
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "record")
	if !ok {
		return
	}
	if err := h.Records.Delete(c.Request.Context(), v, id, c.ClientIP()); err != nil {
		h.fail(c, err, "Record")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted"})
}

// SubmitForReview puts a rejected or pending record back into the admin queue
func (h *Handler) SubmitForReview(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "record")
	if !ok {
		return
	}
	if err := h.Records.Resubmit(c.Request.Context(), v, id, c.ClientIP()); err != nil {
		h.fail(c, err, "Record")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record submitted for review", "status": models.StatusPending})
}

// MyAlerts lists the compliance alerts raised against the caller's records
func (h *Handler) MyAlerts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	alerts, err := h.Compliance.UserAlerts(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "Alert")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

