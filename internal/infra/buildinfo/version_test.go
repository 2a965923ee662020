package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withBuildInfo(t *testing.T, bi *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, ok }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestGet_Defaults(t *testing.T) {
	withBuildInfo(t, nil, false)

	info := Get()
	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.Commit != "unknown" || info.BuildTime != "unknown" || info.GoVersion != "unknown" {
		t.Errorf("Get() = %+v, want unknown fallbacks", info)
	}
}

func TestGet_FromEmbeddedBuildInfo(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{
		GoVersion: "go1.24.4",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-01-01T00:00:00Z"},
		},
	}, true)

	info := Get()
	if info.GoVersion != "go1.24.4" {
		t.Errorf("GoVersion = %q, want go1.24.4", info.GoVersion)
	}
	if info.Commit != "abc123" {
		t.Errorf("Commit = %q, want abc123", info.Commit)
	}
	if info.BuildTime != "2024-01-01T00:00:00Z" {
		t.Errorf("BuildTime = %q", info.BuildTime)
	}
}

func TestGet_LdflagsWin(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}, true)

	orig := Commit
	Commit = "deadbeef"
	t.Cleanup(func() { Commit = orig })

	if got := Get().Commit; got != "deadbeef" {
		t.Errorf("Commit = %q, want deadbeef", got)
	}
}

func TestString(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{GoVersion: "go1.24.4"}, true)

	s := String()
	if !strings.Contains(s, Version) || !strings.Contains(s, "built at") || !strings.Contains(s, "go1.24.4") {
		t.Errorf("String() = %q", s)
	}
}
