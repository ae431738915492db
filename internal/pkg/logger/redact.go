package logger

import "strings"

// secretKeywords marks field names whose values must never be logged in clear.
var secretKeywords = []string{"token", "password", "secret", "api_key", "apikey", "credential"}

// redactValue masks the value when the field name suggests a credential.
func redactValue(key, val string) string {
	lower := strings.ToLower(key)
	for _, kw := range secretKeywords {
		if strings.Contains(lower, kw) {
			return MaskSecret(val)
		}
	}
	return val
}

// MaskSecret masks a credential for safe logging, keeping a short prefix for
// identification: "EAABsbCS1iHg..." → "EAAB***". Values of 8 chars or fewer
// are fully masked.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***"
}
