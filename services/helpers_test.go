package services_test

import (
	"context"
	"image"
	"image/color"
	"sync"

	"go.uber.org/zap"

	"kyc-hub/ocr"
	"kyc-hub/services"
	"kyc-hub/services/storetest"
)

func newAudit() (*services.AuditService, *storetest.Audit) {
	store := &storetest.Audit{}
	return services.NewAuditService(store, zap.NewNop()), store
}

// sharpImage passes every quality check
func sharpImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 600, 600))
	for y := 0; y < 600; y++ {
		for x := 0; x < 600; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

type fakeReader struct {
	mu    sync.Mutex
	res   ocr.Result
	calls int
}

func (f *fakeReader) Process(_ context.Context, doc ocr.Document) ocr.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	res := f.res
	res.DocumentType = doc.DocType
	return res
}

type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
}

func (m *captureMailer) SendOTP(_ context.Context, to, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[to] = otp
	m.sent++
	return nil
}

func (m *captureMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}
