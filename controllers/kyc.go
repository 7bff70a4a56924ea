package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kyc-hub/services"
)

func (h *Handler) limitBody(c *gin.Context) {
	if h.MaxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUpload+1<<20)
	}
}

// uploadedFile returns the "file" part, answering the request itself on failure
func (h *Handler) uploadedFile(c *gin.Context) (*multipart.FileHeader, bool) {
	h.limitBody(c)
	header, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return nil, false
	}
	if err := h.KYC.CheckFile(header.Filename, header.Size); err != nil {
		h.fail(c, err, "File")
		return nil, false
	}
	return header, true
}

// Extract runs OCR and fraud analysis over an uploaded Aadhaar or PAN document
func (h *Handler) Extract(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	header, ok := h.uploadedFile(c)
	if !ok {
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	save, err := strconv.ParseBool(c.DefaultPostForm("save_record", "true"))
	if err != nil {
		save = true
	}

	result, err := h.KYC.Extract(c.Request.Context(), services.ExtractInput{
		UserID:      userID,
		DocType:     c.PostForm("doctype"),
		EnteredName: c.PostForm("user_entered_name"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		SaveRecord:  save,
		IP:          c.ClientIP(),
	})
	if err != nil {
		h.fail(c, err, "Record")
		return
	}

	severities := make([]string, 0, len(result.Alerts))
	for _, a := range result.Alerts {
		severities = append(severities, a.Severity)
	}
	h.Metrics.ObserveExtraction(result.DocumentType, result.RecommendedStatus,
		result.FraudAnalysis.FraudScore, result.RecordID != "", severities)
	c.JSON(http.StatusOK, result)
}

// ValidateFile checks type and size of an upload without processing it
func (h *Handler) ValidateFile(c *gin.Context) {
	header, ok := h.uploadedFile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"filename": header.Filename,
		"size":     header.Size,
		"message":  "File is valid",
	})
}

func (h *Handler) OCRInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.OCR)
}
