// Package cli provides output formatting for shirushi run reports.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/shirushi/internal/models"
)

// OutputFormat is the format for report output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "text", "":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteReport writes a run report to w in the given format.
func WriteReport(w io.Writer, report *models.RunReport, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	writeReportText(w, report)
	return nil
}

func writeReportText(w io.Writer, report *models.RunReport) {
	verb := "stamped"
	if report.CheckOnly {
		verb = "pending"
	}
	fmt.Fprintf(w, "scanned %d document(s) in %dms: %d moved, %d adopted, %d %s\n",
		report.Scanned,
		report.DurationMS,
		report.CountKind(models.DriftMove),
		report.CountKind(models.DriftAdoption),
		report.CountKind(models.DriftStamp)+report.Unmarked,
		verb,
	)
	for _, ev := range report.Events {
		switch ev.Kind {
		case models.DriftMove:
			fmt.Fprintf(w, "  moved    %s  %s -> %s\n", ev.Token, ev.OldPath, ev.Path)
		case models.DriftAdoption:
			fmt.Fprintf(w, "  adopted  %s  %s\n", ev.Token, ev.Path)
		case models.DriftStamp:
			fmt.Fprintf(w, "  stamped  %s  %s\n", ev.Token, ev.Path)
		}
	}
	if report.CheckOnly && report.Unmarked > 0 {
		fmt.Fprintf(w, "  %d document(s) lack a marker; run \"shirushi run\" to stamp them\n", report.Unmarked)
	}
}

// WriteStatus writes the status view of a report: counts only, no events.
func WriteStatus(w io.Writer, report *models.RunReport, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"root":     report.Root,
			"scanned":  report.Scanned,
			"tracked":  report.Tracked,
			"unmarked": report.Unmarked,
			"drift":    len(report.Events),
		})
	}
	fmt.Fprintf(w, "root:      %s\n", report.Root)
	fmt.Fprintf(w, "scanned:   %d   # documents matching configured extensions\n", report.Scanned)
	fmt.Fprintf(w, "tracked:   %d   # identifiers in the mapping after reconciliation\n", report.Tracked)
	fmt.Fprintf(w, "unmarked:  %d   # documents still lacking a marker\n", report.Unmarked)
	fmt.Fprintf(w, "drift:     %d   # pending moves and adoptions\n", len(report.Events))
	return nil
}
