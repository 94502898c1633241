package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taconinja125/winup/internal/patching"
	"github.com/taconinja125/winup/internal/wua"
)

// updateRow is the serializable view of one catalog entry.
type updateRow struct {
	UpdateID       string   `json:"updateId" yaml:"updateId"`
	RevisionNumber int      `json:"revisionNumber" yaml:"revisionNumber"`
	Title          string   `json:"title" yaml:"title"`
	KB             string   `json:"kb,omitempty" yaml:"kb,omitempty"`
	Severity       string   `json:"severity,omitempty" yaml:"severity,omitempty"`
	Impact         string   `json:"impact" yaml:"impact"`
	Hidden         bool     `json:"hidden" yaml:"hidden"`
	EulaAccepted   bool     `json:"eulaAccepted" yaml:"eulaAccepted"`
	Downloaded     bool     `json:"downloaded" yaml:"downloaded"`
	SizeBytes      int64    `json:"sizeBytes" yaml:"sizeBytes"`
	Categories     []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
}

func toRow(u *patching.Update, details bool) updateRow {
	row := updateRow{
		UpdateID:       u.ID,
		RevisionNumber: u.RevisionNumber,
		Title:          u.Title,
		KB:             u.KBNumber(),
		Severity:       u.MsrcSeverity,
		Impact:         u.Impact.String(),
		Hidden:         u.Hidden,
		EulaAccepted:   u.EulaAccepted,
		Downloaded:     u.IsDownloaded,
		SizeBytes:      u.MaxDownloadSize,
	}
	if details {
		for _, c := range u.Categories {
			row.Categories = append(row.Categories, c.Name)
		}
		row.Description = u.Description
	}
	return row
}

func renderUpdates(updates []*patching.Update, format string, details bool) error {
	rows := make([]updateRow, 0, len(updates))
	for _, u := range updates {
		rows = append(rows, toRow(u, details))
	}

	switch strings.ToLower(format) {
	case "json":
		return writeJSON(rows)
	case "yaml":
		return writeYAML(rows)
	case "text", "":
		for _, row := range rows {
			line := row.Title
			if row.KB != "" {
				line += " (" + row.KB + ")"
			}
			fmt.Println(line)
			if details {
				fmt.Printf("  id=%s:%d severity=%s impact=%s size=%d\n",
					row.UpdateID, row.RevisionNumber, row.Severity, row.Impact, row.SizeBytes)
				if len(row.Categories) > 0 {
					fmt.Printf("  categories=%s\n", strings.Join(row.Categories, ", "))
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderHistory(entries []wua.HistoryEntry, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return writeJSON(entries)
	case "yaml":
		return writeYAML(entries)
	case "text", "":
		for _, e := range entries {
			line := fmt.Sprintf("%s  %-9s  %-21s  %s",
				e.Date.Format("2006-01-02 15:04"), e.OperationName(), e.Result.String(), e.Title)
			if e.HResult != 0 {
				line += "  [" + patching.FormatHResult(e.HResult) + "]"
			}
			fmt.Println(line)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(v)
}
