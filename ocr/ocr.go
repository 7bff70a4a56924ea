// Package ocr turns uploaded identity documents into text and structured fields.
package ocr

import (
	"context"
	"errors"
	"image"
	"time"
)

// PageSegMode mirrors Tesseract's page segmentation modes
type PageSegMode int

const (
	PSMAuto         PageSegMode = 3
	PSMSingleColumn PageSegMode = 4
	PSMSingleBlock  PageSegMode = 6
)

// DefaultModes are tried on every preprocessed variant
var DefaultModes = []PageSegMode{PSMSingleBlock, PSMSingleColumn, PSMAuto}

var (
	ErrUnsupportedType = errors.New("unsupported file format")
	ErrUnreadable      = errors.New("file could not be read")
)

// Engine recognises text in a single image
type Engine interface {
	Name() string
	Version() string
	Recognize(ctx context.Context, img image.Image, mode PageSegMode) (string, error)
}

// Document is an upload waiting to be processed
type Document struct {
	Filename string
	Data     []byte
	DocType  string
}

type Result struct {
	Success         bool              `json:"success"`
	DocumentType    string            `json:"document_type"`
	ExtractedFields map[string]string `json:"extracted_fields"`
	ConfidenceScore float64           `json:"confidence_score"`
	RawText         string            `json:"raw_text"`
	Error           string            `json:"error,omitempty"`
	Method          string            `json:"preprocessing_method,omitempty"`
	ProcessingTime  time.Duration     `json:"-"`

	// Image is the decoded upload, nil for PDFs
	Image image.Image `json:"-"`
}
