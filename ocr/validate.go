package ocr

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	aadhaarFormat = regexp.MustCompile(`^\d{12}$`)
	panFormat     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

// ValidateAadhaar reports whether s is twelve digits that are not all the same
func ValidateAadhaar(s string) bool {
	if !aadhaarFormat.MatchString(s) {
		return false
	}
	return strings.Count(s, s[:1]) != len(s)
}

// ValidatePAN reports whether s has the AAAAA9999A shape
func ValidatePAN(s string) bool {
	return panFormat.MatchString(s)
}

var verhoeffD = [10][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 2, 3, 4, 0, 6, 7, 8, 9, 5},
	{2, 3, 4, 0, 1, 7, 8, 9, 5, 6},
	{3, 4, 0, 1, 2, 8, 9, 5, 6, 7},
	{4, 0, 1, 2, 3, 9, 5, 6, 7, 8},
	{5, 9, 8, 7, 6, 0, 4, 3, 2, 1},
	{6, 5, 9, 8, 7, 1, 0, 4, 3, 2},
	{7, 6, 5, 9, 8, 2, 1, 0, 4, 3},
	{8, 7, 6, 5, 9, 3, 2, 1, 0, 4},
	{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
}

var verhoeffP = [8][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 5, 7, 6, 2, 8, 3, 0, 9, 4},
	{5, 8, 0, 3, 7, 9, 6, 1, 4, 2},
	{8, 9, 1, 6, 0, 4, 3, 5, 2, 7},
	{9, 4, 5, 3, 1, 2, 6, 8, 7, 0},
	{4, 2, 8, 6, 5, 7, 3, 9, 0, 1},
	{2, 7, 9, 3, 8, 0, 6, 4, 1, 5},
	{7, 0, 4, 6, 9, 1, 3, 2, 5, 8},
}

// AadhaarChecksumValid runs the Verhoeff check UIDAI uses for the last digit.
// OCR noise makes this unreliable, so callers treat a failure as a warning.
func AadhaarChecksumValid(s string) bool {
	if !aadhaarFormat.MatchString(s) {
		return false
	}
	c := 0
	for i := len(s) - 1; i >= 0; i-- {
		pos := len(s) - 1 - i
		c = verhoeffD[c][verhoeffP[pos%8][s[i]-'0']]
	}
	return c == 0
}

// PANHolderTypeValid checks the fourth character against the issued holder categories
func PANHolderTypeValid(s string) bool {
	if !ValidatePAN(s) {
		return false
	}
	return strings.ContainsRune("PCHFATBLJG", rune(s[3]))
}

var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006/1/2",
	"2006-1-2",
	"2006.1.2",
	"2/1/06",
	"2-1-06",
	"2.1.06",
}

// NormalizeDate parses the date formats printed on Indian ID cards and
// returns DD-MM-YYYY, or "" when none match.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02-01-2006")
		}
	}
	return ""
}

// Extension returns the lower-case extension of filename without the dot
func Extension(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// AllowedFile reports whether filename carries one of the allowed extensions
func AllowedFile(filename string, allowed []string) bool {
	ext := Extension(filename)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return true
		}
	}
	return false
}
