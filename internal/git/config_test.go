package git

import (
	"strings"
	"testing"
)

const sampleConfig = `[core]
	repositoryformatversion = 0
	bare = false
[remote "origin"]
	url = https://github.com/org/app.git
	fetch = +refs/heads/*:refs/remotes/origin/*
[remote "Upstream"]
	url = "git@github.com:upstream/app.git" ; fork source
[branch "main"]
	remote = origin
	merge = refs/heads/main
[user]
	name = "Ada Lovelace"
	email = ada@example.com   # work address
`

func TestParseConfig_Get(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	tests := []struct {
		section, sub, key string
		want              string
		wantOK            bool
	}{
		{"remote", "origin", "url", "https://github.com/org/app.git", true},
		{"remote", "Upstream", "url", "git@github.com:upstream/app.git", true},
		{"remote", "upstream", "url", "", false},
		{"REMOTE", "origin", "URL", "https://github.com/org/app.git", true},
		{"user", "", "name", "Ada Lovelace", true},
		{"user", "", "email", "ada@example.com", true},
		{"core", "", "bare", "false", true},
		{"remote", "missing", "url", "", false},
		{"user", "", "signingkey", "", false},
	}

	for _, tt := range tests {
		got, ok := cfg.Get(tt.section, tt.sub, tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Get(%q, %q, %q) = (%q, %v), want (%q, %v)", tt.section, tt.sub, tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseConfig_Edges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		input             string
		section, sub, key string
		want              string
		wantOK            bool
	}{
		{
			name:    "last value wins",
			input:   "[user]\nname = first\nname = second\n",
			section: "user", key: "name",
			want: "second", wantOK: true,
		},
		{
			name:    "bare key is true",
			input:   "[core]\n\tbare\n",
			section: "core", key: "bare",
			want: "true", wantOK: true,
		},
		{
			name:    "key before any section ignored",
			input:   "name = orphan\n[user]\nemail = a@b.c\n",
			section: "user", key: "name",
			wantOK: false,
		},
		{
			name:    "unterminated header closes section",
			input:   "[user]\nname = ok\n[broken\nname = lost\n",
			section: "user", key: "name",
			want: "ok", wantOK: true,
		},
		{
			name:    "deprecated dotted subsection",
			input:   "[remote.Origin]\nurl = x\n",
			section: "remote", sub: "origin", key: "url",
			want: "x", wantOK: true,
		},
		{
			name:    "key on header line",
			input:   "[user] name = inline\n",
			section: "user", key: "name",
			want: "inline", wantOK: true,
		},
		{
			name:    "comment chars inside quotes kept",
			input:   "[user]\nname = \"a # b ; c\"\n",
			section: "user", key: "name",
			want: "a # b ; c", wantOK: true,
		},
		{
			name:    "escaped quote in subsection",
			input:   "[remote \"we\\\"ird\"]\nurl = y\n",
			section: "remote", sub: "we\"ird", key: "url",
			want: "y", wantOK: true,
		},
		{
			name:    "empty value",
			input:   "[remote \"origin\"]\nurl =\n",
			section: "remote", sub: "origin", key: "url",
			want: "", wantOK: true,
		},
		{
			name:    "crlf line endings",
			input:   "[user]\r\nemail = c@d.e\r\n",
			section: "user", key: "email",
			want: "c@d.e", wantOK: true,
		},
		{
			name:    "value containing equals",
			input:   "[remote \"origin\"]\nurl = https://h/x?a=b\n",
			section: "remote", sub: "origin", key: "url",
			want: "https://h/x?a=b", wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := ParseConfig(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseConfig() error = %v", err)
			}
			got, ok := cfg.Get(tt.section, tt.sub, tt.key)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Get() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestConfig_GetNil(t *testing.T) {
	t.Parallel()
	var cfg *Config
	if _, ok := cfg.Get("user", "", "name"); ok {
		t.Error("Get() on nil config reported a value")
	}
}
