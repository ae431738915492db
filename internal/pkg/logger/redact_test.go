package logger

import "testing"

func TestMaskSecret(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "***"},
		{"12345678", "***"},
		{"EAABsbCS1iHgBAtoken", "EAAB***"},
	}

	for _, tc := range cases {
		if got := MaskSecret(tc.in); got != tc.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRedactValueBySensitiveKey(t *testing.T) {
	val := "super-secret-value-12345"

	for _, key := range []string{"access_token", "PASSWORD", "app_secret", "api_key", "redis_credentials"} {
		if got := redactValue(key, val); got == val {
			t.Errorf("Expected %q field to be redacted", key)
		}
	}

	for _, key := range []string{"window", "run_id", "rows", "table"} {
		if got := redactValue(key, val); got != val {
			t.Errorf("Expected %q field to pass through, got %q", key, got)
		}
	}
}
