package command

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/userdir-go/internal/cli/output"
	"github.com/yndnr/userdir-go/internal/core/domain"
	"github.com/yndnr/userdir-go/internal/core/service"
)

// Report is the outcome of one simulation run.
type Report struct {
	Scenario    string             `json:"scenario" yaml:"scenario"`
	Days        int                `json:"days" yaml:"days"`
	Directories []*DirectoryReport `json:"directories" yaml:"directories"`
	Events      []string           `json:"events,omitempty" yaml:"events,omitempty"`
}

// DirectoryReport is the final state of one directory and its tick history.
type DirectoryReport struct {
	ID       string                 `json:"id" yaml:"id"`
	Side     string                 `json:"side" yaml:"side"`
	Store    string                 `json:"store" yaml:"store"`
	Live     int                    `json:"live" yaml:"live"`
	Slots    int                    `json:"slots" yaml:"slots"`
	Records  []*domain.UserRecord   `json:"records" yaml:"records"`
	Sessions []*domain.SessionEntry `json:"sessions,omitempty" yaml:"sessions,omitempty"`
	Ticks    []*service.TickReport  `json:"ticks" yaml:"ticks"`
}

// snapshotDirectory captures d after its ticks.
func snapshotDirectory(d *service.Directory, ticks []*service.TickReport) *DirectoryReport {
	store := d.Store()
	return &DirectoryReport{
		ID:       d.ID(),
		Side:     d.Side().String(),
		Store:    store.Name(),
		Live:     store.Live(),
		Slots:    store.Count(),
		Records:  d.Records(),
		Sessions: d.Sessions().Entries(),
		Ticks:    ticks,
	}
}

// renderTable writes the report for terminals. Directory ids and session
// tokens vary between runs and are left to the structured formats.
func renderTable(w io.Writer, r *Report, wide bool) error {
	if _, err := fmt.Fprintf(w, "scenario %s: %d days\n", r.Scenario, r.Days); err != nil {
		return err
	}

	records := &output.TableFormatter{Wide: wide}
	for _, dir := range r.Directories {
		if _, err := fmt.Fprintf(w, "\ndirectory %s (%s): %d live, %d slots\n", dir.Side, dir.Store, dir.Live, dir.Slots); err != nil {
			return err
		}
		if err := records.Format(w, dir.Records); err != nil {
			return err
		}
		if len(dir.Ticks) == 0 {
			continue
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := tickTable(dir.Ticks).Render(w); err != nil {
			return err
		}
	}

	if len(r.Events) > 0 {
		if _, err := fmt.Fprintln(w, "\nevents:"); err != nil {
			return err
		}
		for _, e := range r.Events {
			if _, err := fmt.Fprintf(w, "  - %s\n", e); err != nil {
				return err
			}
		}
	}
	return nil
}

func tickTable(ticks []*service.TickReport) *output.Table {
	t := &output.Table{}
	t.SetHeaders("DAY", "VALIDATED", "EVICTED", "DUPLICATES", "COMPACTED")
	for _, tick := range ticks {
		compacted := "-"
		if tick.Compacted {
			compacted = strconv.Itoa(tick.CompactedRecords)
		}
		t.AddRow(
			strconv.Itoa(tick.Day),
			strconv.Itoa(tick.Validated),
			joinIDs(tick.Evicted),
			joinIDs(tick.Duplicates),
			compacted,
		)
	}
	return t
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
