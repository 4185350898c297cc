package main

import (
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/raphi011/reposet/internal/config"
	"github.com/raphi011/reposet/internal/inventory"
	"github.com/raphi011/reposet/internal/log"
	"github.com/raphi011/reposet/internal/output"
	"github.com/raphi011/reposet/internal/record"
	"github.com/raphi011/reposet/internal/ui/static"
)

func newListCmd() *cobra.Command {
	var (
		filter     string
		jsonOutput bool
		copyPath   bool
	)

	cmd := &cobra.Command{
		Use:     "list [file]",
		Short:   "Show the repositories in an inventory",
		Aliases: []string{"ls"},
		GroupID: GroupInventory,
		Args:    cobra.MaximumNArgs(1),
		Long: `Show the repositories recorded in an inventory file.

Entries are sorted by path. With --filter they are ranked by fuzzy match
against the relative path instead, best match first.`,
		Example: `  reposet list                      # List list_path
  reposet list repos.yaml --json
  reposet list --filter api         # Fuzzy search
  reposet list --filter api --copy  # Copy the best match's path`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			var explicit string
			if len(args) > 0 {
				explicit = args[0]
			}
			listPath, err := resolveListPath(explicit, config.FromContext(ctx))
			if err != nil {
				return err
			}
			records, err := inventory.Load(listPath)
			if err != nil {
				return err
			}

			if filter != "" {
				records = filterRecords(records, filter)
			} else {
				record.Sort(records)
			}

			if copyPath {
				if len(records) == 0 {
					l.Warnf("nothing matched, clipboard unchanged")
				} else {
					copyToClipboard(ctx, records[0].FullPath)
				}
			}

			if jsonOutput {
				if records == nil {
					records = []record.Record{}
				}
				return out.JSON(records)
			}
			if len(records) == 0 {
				l.Printf("No repositories in %s\n", listPath)
				return nil
			}
			out.Print(static.RenderInventory(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Fuzzy filter on the relative path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&copyPath, "copy", false, "Copy the full path of the first entry to the clipboard")

	return cmd
}

// filterRecords returns the records whose path fuzzy-matches query, best
// match first. Matching ignores case.
func filterRecords(records []record.Record, query string) []record.Record {
	matches := fuzzy.FindFrom(strings.ToLower(query), lowerSource(records))
	out := make([]record.Record, 0, len(matches))
	for _, m := range matches {
		out = append(out, records[m.Index])
	}
	return out
}

// lowerSource implements fuzzy.Source over lowercased relative paths.
type lowerSource []record.Record

func (s lowerSource) String(i int) string { return strings.ToLower(s[i].RelativePath) }
func (s lowerSource) Len() int            { return len(s) }
