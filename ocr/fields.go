package ocr

import (
	"regexp"
	"strings"
)

// Field keys in ExtractFields results
const (
	FieldName          = "name"
	FieldAadhaarNumber = "aadhaar_number"
	FieldPANNumber     = "pan_number"
	FieldDateOfBirth   = "date_of_birth"
	FieldGender        = "gender"
	FieldAddress       = "address"
	FieldFatherName    = "father_name"
)

// ExpectedFields lists the fields counted towards extraction confidence
var ExpectedFields = map[string][]string{
	"aadhaar": {FieldName, FieldAadhaarNumber, FieldDateOfBirth, FieldGender},
	"pan":     {FieldName, FieldPANNumber, FieldDateOfBirth, FieldFatherName},
}

var (
	whitespace = regexp.MustCompile(`\s+`)

	aadhaarNumberRe = regexp.MustCompile(`\b(\d{4}[\s\-]*\d{4}[\s\-]*\d{4})\b`)
	aadhaarNameRe   = regexp.MustCompile(`(?i)Name[:\s]*([A-Za-z][A-Za-z\s\.]{2,40})`)
	aadhaarDOBRe    = regexp.MustCompile(`(?i)(?:DOB|Date of Birth|जन्म)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`)
	genderRe        = regexp.MustCompile(`(?i)(?:Gender|Sex|लिंग)[:\s]*(Male|Female|Other|पुरुष|महिला|अन्य|M\b|F\b)`)
	addressRe       = regexp.MustCompile(`(?i)Address[:\s]*(.+?)(\d{6})`)

	panNumberRe = regexp.MustCompile(`\b([A-Z]{5}\d{4}[A-Z])\b`)
	panNameRe   = regexp.MustCompile(`(?i)Name\s+([A-Z\s\.]+?)\s*Father`)
	panFatherRe = regexp.MustCompile(`(?i)Father.?s Name\s+([A-Z\s\.]+?)\s*Date`)
	panDOBRe    = regexp.MustCompile(`(?i)Date of Birth\s+(\d{2}/\d{2}/\d{4})`)

	// labels that the greedy name pattern tends to swallow
	nameStopWords = regexp.MustCompile(`(?i)\s+(DOB|Date|Year|Gender|Sex|Male|Female|Address|Father|S/O|D/O|W/O)\b.*$`)
)

// ExtractFields pulls identity fields for docType out of raw OCR text.
// Fields that cannot be found or do not validate are left out.
func ExtractFields(text, docType string) map[string]string {
	fields := map[string]string{}
	text = whitespace.ReplaceAllString(strings.TrimSpace(text), " ")
	if text == "" {
		return fields
	}

	switch strings.ToLower(docType) {
	case "aadhaar":
		extractAadhaar(text, fields)
	case "pan":
		extractPAN(text, fields)
	}
	return fields
}

func extractAadhaar(text string, fields map[string]string) {
	for _, m := range aadhaarNumberRe.FindAllStringSubmatch(text, -1) {
		num := strings.NewReplacer(" ", "", "-", "").Replace(m[1])
		if ValidateAadhaar(num) {
			fields[FieldAadhaarNumber] = num
			break
		}
	}

	if m := aadhaarNameRe.FindStringSubmatch(text); m != nil {
		name := collapse(nameStopWords.ReplaceAllString(m[1], ""))
		if len(name) > 2 && len(name) < 50 {
			fields[FieldName] = name
		}
	}

	if m := aadhaarDOBRe.FindStringSubmatch(text); m != nil {
		if dob := NormalizeDate(m[1]); dob != "" {
			fields[FieldDateOfBirth] = dob
		}
	}

	if m := genderRe.FindStringSubmatch(text); m != nil {
		if g := normalizeGender(m[1]); g != "" {
			fields[FieldGender] = g
		}
	}

	if m := addressRe.FindStringSubmatch(text); m != nil {
		addr := collapse(m[1] + " " + m[2])
		if len(addr) > 10 && len(addr) < 200 {
			fields[FieldAddress] = addr
		}
	}
}

func extractPAN(text string, fields map[string]string) {
	if m := panNumberRe.FindStringSubmatch(strings.ToUpper(text)); m != nil && ValidatePAN(m[1]) {
		fields[FieldPANNumber] = m[1]
	}

	if m := panNameRe.FindStringSubmatch(text); m != nil {
		if name := collapse(m[1]); name != "" {
			fields[FieldName] = strings.ToUpper(name)
		}
	}

	if m := panFatherRe.FindStringSubmatch(text); m != nil {
		if name := collapse(m[1]); name != "" {
			fields[FieldFatherName] = strings.ToUpper(name)
		}
	}

	if m := panDOBRe.FindStringSubmatch(text); m != nil {
		if dob := NormalizeDate(m[1]); dob != "" {
			fields[FieldDateOfBirth] = dob
		}
	}
}

func normalizeGender(raw string) string {
	switch g := strings.ToUpper(raw); {
	case g == "पुरुष" || strings.HasPrefix(g, "M"):
		return "Male"
	case g == "महिला" || strings.HasPrefix(g, "F"):
		return "Female"
	case g == "अन्य" || strings.HasPrefix(g, "O"):
		return "Other"
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Confidence is the share of expected fields present, as a whole percentage
func Confidence(fields map[string]string, docType string) float64 {
	expected := ExpectedFields[strings.ToLower(docType)]
	if len(expected) == 0 {
		return 0
	}
	found := 0
	for _, f := range expected {
		if fields[f] != "" {
			found++
		}
	}
	return float64(found * 100 / len(expected))
}
