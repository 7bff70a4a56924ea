package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// onePagePDF builds an uncompressed single-page PDF whose content stream
// shows each line with Helvetica, one line per T* operator.
func onePagePDF(lines ...string) []byte {
	var content strings.Builder
	content.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")
	for i, line := range lines {
		if i > 0 {
			content.WriteString("T*\n")
		}
		fmt.Fprintf(&content, "(%s) Tj\n", line)
	}
	content.WriteString("ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

var panLines = []string{
	"INCOME TAX DEPARTMENT GOVT. OF INDIA",
	"Permanent Account Number Card",
	"ABCPE1234F",
	"Name",
	"RAHUL KUMAR SHARMA",
	"Father's Name",
	"SURESH KUMAR SHARMA",
	"Date of Birth",
	"15/08/1990",
}

func TestPDFText(t *testing.T) {
	text, err := PDFText(onePagePDF(panLines...))
	require.NoError(t, err)
	assert.Contains(t, text, "ABCPE1234F")
	assert.Contains(t, text, "SURESH KUMAR SHARMA")

	text, err = PDFText(onePagePDF())
	require.NoError(t, err)
	assert.Empty(t, text)

	_, err = PDFText([]byte("%PDF-1.4\nnot really"))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestProcessPDFTextLayer(t *testing.T) {
	engine := &fakeEngine{}
	p := NewProcessor(engine)

	res := p.Process(context.Background(), Document{Filename: "pan.pdf", Data: onePagePDF(panLines...), DocType: "pan"})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "pdf_text_layer", res.Method)
	assert.Empty(t, res.Error)
	assert.Equal(t, "ABCPE1234F", res.ExtractedFields[FieldPANNumber])
	assert.Equal(t, "RAHUL KUMAR SHARMA", res.ExtractedFields[FieldName])
	assert.Equal(t, "SURESH KUMAR SHARMA", res.ExtractedFields[FieldFatherName])
	assert.Equal(t, "15-08-1990", res.ExtractedFields[FieldDateOfBirth])
	assert.Equal(t, 100.0, res.ConfidenceScore)
	assert.Zero(t, engine.calls, "text layer needs no OCR")
}

func TestProcessPDFWithoutText(t *testing.T) {
	p := NewProcessor(&fakeEngine{})

	res := p.Process(context.Background(), Document{Filename: "scan.pdf", Data: onePagePDF(), DocType: "aadhaar"})

	assert.True(t, res.Success)
	assert.Empty(t, res.RawText)
	assert.Equal(t, "No text could be extracted from the document", res.Error)
	assert.Zero(t, res.ConfidenceScore)
}
