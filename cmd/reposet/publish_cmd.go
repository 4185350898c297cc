package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/reposet/internal/config"
	"github.com/raphi011/reposet/internal/gist"
	"github.com/raphi011/reposet/internal/inventory"
	"github.com/raphi011/reposet/internal/log"
)

func newPublishCmd() *cobra.Command {
	var (
		gistID   string
		filename string
		public   bool
	)

	cmd := &cobra.Command{
		Use:     "publish [file]",
		Short:   "Publish an inventory to a GitHub gist",
		GroupID: GroupInventory,
		Args:    cobra.MaximumNArgs(1),
		Long: `Publish an inventory file to a GitHub gist.

The file is validated before upload. Without a gist ID (publish.gist_id or
--gist) a new gist is created and its ID printed so it can be added to the
config; later runs update that gist in place.

The token is read from publish.token, which may reference an environment
variable such as ${GITHUB_TOKEN}, or from GITHUB_TOKEN directly.`,
		Example: `  reposet publish                        # Publish list_path
  reposet publish repos.yaml --gist abc123
  reposet publish --filename laptop.json --public`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := *config.FromContext(ctx)

			var explicit string
			if len(args) > 0 {
				explicit = args[0]
			}
			listPath, err := resolveListPath(explicit, &cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("public") {
				cfg.Publish.Public = public
			}

			_, err = publishInventory(ctx, &cfg, listPath, gistID, filename)
			return err
		},
	}

	cmd.Flags().StringVar(&gistID, "gist", "", "Gist ID to update (default: publish.gist_id)")
	cmd.Flags().StringVar(&filename, "filename", "", "File name inside the gist (default: publish.filename or the inventory's name)")
	cmd.Flags().BoolVar(&public, "public", false, "Create a public gist")

	return cmd
}

// publishInventory uploads the inventory at listPath. Empty gistID and
// filename fall back to the publish config.
func publishInventory(ctx context.Context, cfg *config.Config, listPath, gistID, filename string) (gist.Result, error) {
	l := log.FromContext(ctx)

	content, err := os.ReadFile(listPath)
	if err != nil {
		return gist.Result{}, fmt.Errorf("read inventory: %w", err)
	}
	format, err := inventory.FormatFromPath(listPath)
	if err != nil {
		return gist.Result{}, err
	}
	if _, err := inventory.Unmarshal(format, content); err != nil {
		return gist.Result{}, fmt.Errorf("refusing to publish %s: %w", listPath, err)
	}

	if gistID == "" {
		gistID = cfg.Publish.GistID
	}
	if filename == "" {
		filename = cfg.Publish.Filename
	}
	if filename == "" {
		filename = filepath.Base(listPath)
	}

	p, err := gist.NewPublisher(cfg.Publish.Token, cfg.Publish.Public)
	if err != nil {
		return gist.Result{}, err
	}
	if cfg.Publish.APIURL != "" {
		if p, err = p.WithBaseURL(cfg.Publish.APIURL); err != nil {
			return gist.Result{}, err
		}
	}

	res, err := p.Publish(ctx, gistID, filename, content)
	if err != nil {
		return gist.Result{}, err
	}
	if res.Created {
		l.Printf("Created gist %s: %s\n", res.ID, res.URL)
		l.Printf("Add gist_id = %q to the [publish] section of your config to update it next time\n", res.ID)
	} else {
		l.Printf("Updated gist %s: %s\n", res.ID, res.URL)
	}
	return res, nil
}
