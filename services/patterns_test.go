package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuspiciousPatterns(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   []string
	}{
		{"clean", map[string]string{"aadhaar_number": "234567890124", "name": "Rahul Kumar"}, nil},
		{"placeholder number", map[string]string{"aadhaar_number": "999912345678"}, []string{"suspicious_aadhaar_number"}},
		{"test name", map[string]string{"name": "Test User"}, []string{"suspicious_name"}},
		{"initials only", map[string]string{"name": "ab cd"}, []string{"suspicious_name"}},
		{"digits as name", map[string]string{"name": "12345"}, []string{"suspicious_name"}},
		{"both", map[string]string{"aadhaar_number": "000012345678", "name": "demo user"}, []string{"suspicious_aadhaar_number", "suspicious_name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuspiciousPatterns(tt.fields))
		})
	}
}
