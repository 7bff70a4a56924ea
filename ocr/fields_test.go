package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const aadhaarText = `GOVERNMENT OF INDIA
Name: Rahul Kumar Sharma
DOB: 15/08/1990
Gender: MALE
2345 6789 0124
Address: 12 MG Road, Indiranagar,
Bengaluru, Karnataka 560038`

const panText = `INCOME TAX DEPARTMENT GOVT. OF INDIA
Permanent Account Number Card
ABCPE1234F
Name
RAHUL KUMAR SHARMA
Father's Name
SURESH KUMAR SHARMA
Date of Birth
15/08/1990`

func TestExtractFieldsAadhaar(t *testing.T) {
	fields := ExtractFields(aadhaarText, "aadhaar")

	assert.Equal(t, "234567890124", fields[FieldAadhaarNumber])
	assert.Equal(t, "Rahul Kumar Sharma", fields[FieldName])
	assert.Equal(t, "15-08-1990", fields[FieldDateOfBirth])
	assert.Equal(t, "Male", fields[FieldGender])
	assert.Equal(t, "12 MG Road, Indiranagar, Bengaluru, Karnataka 560038", fields[FieldAddress])
	assert.Equal(t, 100.0, Confidence(fields, "aadhaar"))
}

func TestExtractFieldsAadhaarHindiLabels(t *testing.T) {
	fields := ExtractFields("नाम Name: Priya Verma जन्म 01-02-1985 लिंग महिला", "AADHAAR")

	assert.Equal(t, "Priya Verma", fields[FieldName])
	assert.Equal(t, "01-02-1985", fields[FieldDateOfBirth])
	assert.Equal(t, "Female", fields[FieldGender])
	assert.Empty(t, fields[FieldAadhaarNumber])
	assert.Equal(t, 75.0, Confidence(fields, "aadhaar"))
}

func TestExtractFieldsRejectsRepeatedDigits(t *testing.T) {
	fields := ExtractFields("1111 1111 1111 and 2345-6789-0124", "aadhaar")
	assert.Equal(t, "234567890124", fields[FieldAadhaarNumber])

	fields = ExtractFields("0000 0000 0000", "aadhaar")
	assert.NotContains(t, fields, FieldAadhaarNumber)
}

func TestExtractFieldsPAN(t *testing.T) {
	fields := ExtractFields(panText, "pan")

	assert.Equal(t, "ABCPE1234F", fields[FieldPANNumber])
	assert.Equal(t, "RAHUL KUMAR SHARMA", fields[FieldName])
	assert.Equal(t, "SURESH KUMAR SHARMA", fields[FieldFatherName])
	assert.Equal(t, "15-08-1990", fields[FieldDateOfBirth])
	assert.Equal(t, 100.0, Confidence(fields, "pan"))
}

func TestExtractFieldsEmpty(t *testing.T) {
	assert.Empty(t, ExtractFields("   ", "aadhaar"))
	assert.Empty(t, ExtractFields(aadhaarText, "passport"))
	assert.Equal(t, 0.0, Confidence(map[string]string{}, "passport"))
}

func TestNormalizeGender(t *testing.T) {
	cases := map[string]string{
		"male": "Male", "M": "Male", "पुरुष": "Male",
		"FEMALE": "Female", "f": "Female", "महिला": "Female",
		"Other": "Other", "अन्य": "Other",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeGender(in), in)
	}
}
