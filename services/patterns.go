package services

import (
	"regexp"
	"strings"
)

var suspiciousNumbers = []*regexp.Regexp{
	regexp.MustCompile(`^9999\d{8}$`),
	regexp.MustCompile(`^0000\d{8}$`),
	regexp.MustCompile(`^1111\d{8}$`),
	regexp.MustCompile(`^(0{12}|1{12}|2{12}|3{12}|4{12}|5{12}|6{12}|7{12}|8{12}|9{12})$`),
}

var suspiciousNames = []*regexp.Regexp{
	regexp.MustCompile(`test\s+user`),
	regexp.MustCompile(`sample\s+name`),
	regexp.MustCompile(`demo\s+user`),
	regexp.MustCompile(`^[a-z]{1,2}\s+[a-z]{1,2}$`),
	regexp.MustCompile(`^\d+$`),
}

// SuspiciousPatterns lists placeholder or synthetic looking values among the extracted fields
func SuspiciousPatterns(fields map[string]string) []string {
	var found []string
	if num := fields["aadhaar_number"]; num != "" {
		for _, re := range suspiciousNumbers {
			if re.MatchString(num) {
				found = append(found, "suspicious_aadhaar_number")
				break
			}
		}
	}
	if name := strings.ToLower(strings.TrimSpace(fields["name"])); name != "" {
		for _, re := range suspiciousNames {
			if re.MatchString(name) {
				found = append(found, "suspicious_name")
				break
			}
		}
	}
	return found
}
