package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAadhaar(t *testing.T) {
	assert.True(t, ValidateAadhaar("234567890124"))
	assert.False(t, ValidateAadhaar("999999999999"))
	assert.False(t, ValidateAadhaar("23456789012"))
	assert.False(t, ValidateAadhaar("2345 6789 0124"))
	assert.False(t, ValidateAadhaar(""))
}

func TestAadhaarChecksumValid(t *testing.T) {
	assert.True(t, AadhaarChecksumValid("234567890124"))
	assert.True(t, AadhaarChecksumValid("498765432102"))
	assert.False(t, AadhaarChecksumValid("234567890123"))
	assert.False(t, AadhaarChecksumValid("abc"))
}

func TestValidatePAN(t *testing.T) {
	assert.True(t, ValidatePAN("ABCPE1234F"))
	assert.False(t, ValidatePAN("abcpe1234f"))
	assert.False(t, ValidatePAN("ABCP1234F"))
	assert.False(t, ValidatePAN("ABCPE12345"))

	assert.True(t, PANHolderTypeValid("ABCPE1234F"))
	assert.False(t, PANHolderTypeValid("ABCXE1234F"))
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"15/08/1990": "15-08-1990",
		"5-8-1990":   "05-08-1990",
		"15.08.1990": "15-08-1990",
		"1990/08/15": "15-08-1990",
		"1990-08-15": "15-08-1990",
		"1990.8.15":  "15-08-1990",
		"15/08/90":   "15-08-1990",
		"15-08-05":   "15-08-2005",
		"15.08.90":   "15-08-1990",
		"31/02/1990": "",
		"not a date": "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDate(in), in)
	}
}

func TestAllowedFile(t *testing.T) {
	allowed := []string{"png", "jpg", "jpeg", "pdf", "tiff", "bmp"}

	assert.True(t, AllowedFile("card.PNG", allowed))
	assert.True(t, AllowedFile("scan.pdf", allowed))
	assert.False(t, AllowedFile("notes.txt", allowed))
	assert.False(t, AllowedFile("noextension", allowed))
	assert.Equal(t, "jpeg", Extension("a/b/c.JPEG"))
}
