package util

import (
	"strings"
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	t.Setenv("RENOINTAKE_TEST_BOOL", "yes")
	if !ParseBoolEnv("RENOINTAKE_TEST_BOOL", false) {
		t.Error("expected 'yes' to parse as true")
	}
	t.Setenv("RENOINTAKE_TEST_BOOL", "off")
	if ParseBoolEnv("RENOINTAKE_TEST_BOOL", true) {
		t.Error("expected 'off' to parse as false")
	}
	t.Setenv("RENOINTAKE_TEST_BOOL", "maybe")
	if !ParseBoolEnv("RENOINTAKE_TEST_BOOL", true) {
		t.Error("expected invalid value to return default")
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("RENOINTAKE_TEST_DUR", "45s")
	if got := ParseDurationEnv("RENOINTAKE_TEST_DUR", time.Minute); got != 45*time.Second {
		t.Errorf("expected 45s, got %v", got)
	}
	t.Setenv("RENOINTAKE_TEST_DUR", "not-a-duration")
	if got := ParseDurationEnv("RENOINTAKE_TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("expected default on invalid value, got %v", got)
	}
}

func TestGenerateConversationID(t *testing.T) {
	id := GenerateConversationID()
	if !strings.HasPrefix(id, "conv_") {
		t.Errorf("expected conv_ prefix, got %q", id)
	}
	if len(id) != len("conv_")+32 {
		t.Errorf("unexpected id length: %q", id)
	}
	if id == GenerateConversationID() {
		t.Error("two generated ids collided")
	}
}

func TestGenerateRandomHex(t *testing.T) {
	if GenerateRandomHex(0) != "" {
		t.Error("expected empty string for non-positive length")
	}
	hex := GenerateRandomHex(16)
	if len(hex) != 16 {
		t.Errorf("expected 16 chars, got %d", len(hex))
	}
	for _, c := range hex {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("non-hex character %q in %q", c, hex)
		}
	}
}
