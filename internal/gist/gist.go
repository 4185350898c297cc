// Package gist publishes inventory files to GitHub gists.
package gist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/raphi011/reposet/internal/log"
)

const description = "reposet repository inventory"

// ErrNoToken is returned when publishing without a GitHub token.
var ErrNoToken = errors.New("no GitHub token configured (set publish.token or GITHUB_TOKEN)")

// Result describes a published gist.
type Result struct {
	ID      string
	URL     string
	Created bool
}

// Publisher creates and updates gists.
type Publisher struct {
	client *gh.Client
	public bool
}

// NewPublisher creates a publisher authenticated with token.
func NewPublisher(token string, public bool) (*Publisher, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoToken
	}
	return &Publisher{
		client: gh.NewClient(nil).WithAuthToken(token),
		public: public,
	}, nil
}

// WithBaseURL points the publisher at a different API endpoint, such as a
// GitHub Enterprise server.
func (p *Publisher) WithBaseURL(raw string) (*Publisher, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	p.client.BaseURL = u
	return p, nil
}

// Publish writes content as filename into the gist with the given ID, or
// into a new gist when gistID is empty.
func (p *Publisher) Publish(ctx context.Context, gistID, filename string, content []byte) (Result, error) {
	if filename == "" {
		return Result{}, errors.New("gist filename is empty")
	}

	g := &gh.Gist{
		Description: gh.String(description),
		Files: map[gh.GistFilename]gh.GistFile{
			gh.GistFilename(filename): {
				Filename: gh.String(filename),
				Content:  gh.String(string(content)),
			},
		},
	}

	l := log.FromContext(ctx)
	if gistID == "" {
		g.Public = gh.Bool(p.public)
		l.Debug("creating gist", "file", filename, "public", p.public)
		created, _, err := p.client.Gists.Create(ctx, g)
		if err != nil {
			return Result{}, fmt.Errorf("create gist: %w", err)
		}
		return Result{ID: created.GetID(), URL: created.GetHTMLURL(), Created: true}, nil
	}

	l.Debug("updating gist", "id", gistID, "file", filename)
	updated, _, err := p.client.Gists.Edit(ctx, gistID, g)
	if err != nil {
		return Result{}, fmt.Errorf("update gist %s: %w", gistID, err)
	}
	return Result{ID: updated.GetID(), URL: updated.GetHTMLURL()}, nil
}
