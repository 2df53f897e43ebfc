package buildinfo

import (
	"strings"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	info := Get()

	if info.Version != "dev" {
		t.Errorf("Version = %q, want dev", info.Version)
	}
	if info.Commit != "unknown" {
		t.Errorf("Commit = %q, want unknown", info.Commit)
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q, want go prefix", info.GoVersion)
	}
}

func TestString(t *testing.T) {
	s := String()

	if !strings.Contains(s, Version) {
		t.Errorf("String() = %q, should contain version %q", s, Version)
	}
	if !strings.Contains(s, Commit) {
		t.Errorf("String() = %q, should contain commit %q", s, Commit)
	}
}
