package utils

import "testing"

func TestGetEnv(t *testing.T) {
	t.Setenv("DM_TEST_STR", "value")
	t.Setenv("DM_TEST_BLANK", "  ")
	t.Setenv("DM_TEST_INT", "42")
	t.Setenv("DM_TEST_BAD_INT", "forty")
	t.Setenv("DM_TEST_BOOL", "true")

	if got := GetEnv("DM_TEST_STR", "x"); got != "value" {
		t.Errorf("GetEnv() = %q", got)
	}
	if got := GetEnv("DM_TEST_BLANK", "x"); got != "x" {
		t.Errorf("GetEnv(blank) = %q, want fallback", got)
	}
	if got := GetEnv("DM_TEST_MISSING", "x"); got != "x" {
		t.Errorf("GetEnv(missing) = %q, want fallback", got)
	}
	if got := GetEnvInt("DM_TEST_INT", 1); got != 42 {
		t.Errorf("GetEnvInt() = %d", got)
	}
	if got := GetEnvInt("DM_TEST_BAD_INT", 1); got != 1 {
		t.Errorf("GetEnvInt(bad) = %d, want fallback", got)
	}
	if !GetEnvBool("DM_TEST_BOOL", false) {
		t.Error("GetEnvBool() = false")
	}
	if got := GetEnvFloat("DM_TEST_MISSING", 2.5); got != 2.5 {
		t.Errorf("GetEnvFloat(missing) = %v", got)
	}
}
