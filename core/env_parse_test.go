package core

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("STUDIO_TEST_STRING", "value")

	if got := GetEnvOrDefault("STUDIO_TEST_STRING", "fallback"); got != "value" {
		t.Errorf("GetEnvOrDefault set var = %q, want %q", got, "value")
	}
	if got := GetEnvOrDefault("STUDIO_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnvOrDefault unset var = %q, want %q", got, "fallback")
	}
}

func TestParseIntEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback int
		want     int
	}{
		{name: "valid integer", value: "8", fallback: 4, want: 8},
		{name: "invalid integer falls back", value: "eight", fallback: 4, want: 4},
		{name: "empty falls back", value: "", fallback: 4, want: 4},
		{name: "negative parses", value: "-2", fallback: 4, want: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("STUDIO_TEST_INT", tt.value)
			}
			if got := ParseIntEnv("STUDIO_TEST_INT", tt.fallback); got != tt.want {
				t.Errorf("ParseIntEnv = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseFloat64Env(t *testing.T) {
	t.Setenv("STUDIO_TEST_FLOAT", "0.85")
	if got := ParseFloat64Env("STUDIO_TEST_FLOAT", 0.5); got != 0.85 {
		t.Errorf("ParseFloat64Env = %v, want 0.85", got)
	}
	if got := ParseFloat64Env("STUDIO_TEST_FLOAT_UNSET", 0.5); got != 0.5 {
		t.Errorf("ParseFloat64Env unset = %v, want 0.5", got)
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback bool
		want     bool
	}{
		{name: "true", value: "true", want: true},
		{name: "one", value: "1", want: true},
		{name: "yes uppercase", value: "YES", want: true},
		{name: "on", value: "on", want: true},
		{name: "false", value: "false", fallback: true, want: false},
		{name: "zero", value: "0", fallback: true, want: false},
		{name: "off", value: "off", fallback: true, want: false},
		{name: "garbage falls back", value: "maybe", fallback: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STUDIO_TEST_BOOL", tt.value)
			if got := ParseBoolEnv("STUDIO_TEST_BOOL", tt.fallback); got != tt.want {
				t.Errorf("ParseBoolEnv(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("STUDIO_TEST_DURATION", "30")
	if got := ParseDurationEnv("STUDIO_TEST_DURATION", 10); got != 30*time.Second {
		t.Errorf("ParseDurationEnv = %v, want 30s", got)
	}
	if got := ParseDurationEnv("STUDIO_TEST_DURATION_UNSET", 10); got != 10*time.Second {
		t.Errorf("ParseDurationEnv unset = %v, want 10s", got)
	}
}
