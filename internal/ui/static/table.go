// Package static provides non-interactive terminal output components.
//
// This package renders the inventory and restore outcome tables printed
// by the list, scan, restore and sync commands.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/reposet/internal/record"
	"github.com/raphi011/reposet/internal/restore"
	"github.com/raphi011/reposet/internal/ui/styles"
)

// InventoryHeaders are the columns of [InventoryRow].
var InventoryHeaders = []string{"PATH", "REMOTE", "REACHABLE", "USER", "LAST ACTIVITY", "SYSTEM"}

// OutcomeHeaders are the columns of [OutcomeRow].
var OutcomeHeaders = []string{"PATH", "STATUS", "DETAIL"}

// statusDateLayout renders status dates in local time without seconds.
const statusDateLayout = "2006-01-02 15:04"

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// InventoryRow formats a record for the inventory table.
func InventoryRow(r record.Record) []string {
	remote := r.RemoteURL
	if remote == "" {
		remote = styles.MutedStyle.Render("-")
	}

	user := r.UserName
	if r.UserEmail != "" {
		if user != "" {
			user += " "
		}
		user += "<" + r.UserEmail + ">"
	}

	date := ""
	if r.StatusDate != nil {
		date = r.StatusDate.Local().Format(statusDateLayout)
	}

	return []string{
		r.RelativePath,
		remote,
		styles.Accessibility(r.IsRemoteAccessible),
		user,
		date,
		r.SystemFilter,
	}
}

// RenderInventory renders records as a table.
func RenderInventory(records []record.Record) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, InventoryRow(r))
	}
	return RenderTable(InventoryHeaders, rows)
}

// OutcomeRow formats a restore outcome for the outcome table. The detail
// column carries the skip or failure reason, or the remote for clones.
func OutcomeRow(o restore.Outcome) []string {
	detail := o.Reason
	if o.Status == restore.Cloned {
		detail = o.RemoteURL
	}
	if o.IsDryRun() {
		detail = strings.TrimPrefix(o.Reason, restore.DryRunPrefix)
	}
	return []string{
		o.RelativePath,
		styles.Status(o.Status.String(), o.IsDryRun()),
		detail,
	}
}

// RenderOutcomes renders restore outcomes as a table.
func RenderOutcomes(outcomes []restore.Outcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, OutcomeRow(o))
	}
	return RenderTable(OutcomeHeaders, rows)
}
