package metric

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.Gatherer() == nil {
		t.Fatal("Gatherer() returned nil")
	}

	// Two registries must not share state.
	r.SessionCreated()
	if got := testutil.ToFloat64(NewRegistry().SessionsCreated); got != 0 {
		t.Errorf("fresh registry SessionsCreated = %v, want 0", got)
	}
}

func TestStoreMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordInserted("store-a")
	r.RecordInserted("store-a")
	r.RecordInserted("store-b")
	r.RecordReleased("store-a", "evicted")
	r.RecordReleased("store-a", "duplicate")
	r.RecordReleased("store-a", "duplicate")
	r.RecordsLive("store-a", 7)
	r.Compacted("store-a", 3)
	r.Compacted("store-a", 0)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"inserted a", testutil.ToFloat64(r.RecordsInserted.WithLabelValues("store-a")), 2},
		{"inserted b", testutil.ToFloat64(r.RecordsInserted.WithLabelValues("store-b")), 1},
		{"evicted", testutil.ToFloat64(r.RecordsReleased.WithLabelValues("store-a", "evicted")), 1},
		{"duplicate", testutil.ToFloat64(r.RecordsReleased.WithLabelValues("store-a", "duplicate")), 2},
		{"live", testutil.ToFloat64(r.LiveRecords.WithLabelValues("store-a")), 7},
		{"compacted", testutil.ToFloat64(r.SlotsCompacted.WithLabelValues("store-a")), 3},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestSessionAndTickMetrics(t *testing.T) {
	r := NewRegistry()

	r.SessionCreated()
	r.SessionCreated()
	r.SessionExpired()
	r.SessionRevoked()
	r.SessionsActiveChanged(1)
	r.ProtocolViolation("forbidden_release")
	r.TickCompleted(3, false)
	r.TickCompleted(4, true)

	if got := testutil.ToFloat64(r.SessionsCreated); got != 2 {
		t.Errorf("SessionsCreated = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.SessionsActive); got != 1 {
		t.Errorf("SessionsActive = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.ProtocolViolated.WithLabelValues("forbidden_release")); got != 1 {
		t.Errorf("ProtocolViolated = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Ticks); got != 2 {
		t.Errorf("Ticks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.TickErrors); got != 1 {
		t.Errorf("TickErrors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.LastDay); got != 4 {
		t.Errorf("LastDay = %v, want 4", got)
	}
}

func TestWriteText(t *testing.T) {
	r := NewRegistry()
	r.SessionCreated()
	r.RecordReleased("store-a", "explicit")

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# TYPE userdir_sessions_created_total counter",
		"userdir_sessions_created_total 1",
		`userdir_records_released_total{reason="explicit",store="store-a"} 1`,
		"userdir_maintenance_ticks_total 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteText() output missing %q\n%s", want, out)
		}
	}
}
