package git

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/raphi011/reposet/internal/cmd"
	"github.com/raphi011/reposet/internal/log"
)

// DefaultProbeTimeout bounds a single "git ls-remote" reachability probe.
const DefaultProbeTimeout = 10 * time.Second

// probeCacheSize is the number of distinct remote URLs remembered per Prober.
const probeCacheSize = 512

// nonInteractiveEnv keeps git from waiting on a credential prompt, which
// would otherwise only end at the timeout.
var nonInteractiveEnv = []string{"GIT_TERMINAL_PROMPT=0"}

// ProbeReachability runs "git ls-remote --heads <url>" with a hard timeout
// and reports whether it exited zero. Empty URLs return false without
// starting a process. It never returns an error: timeouts, spawn failures
// and non-zero exits all mean unreachable.
func ProbeReachability(ctx context.Context, remoteURL, gitPath string, timeout time.Duration) bool {
	if strings.TrimSpace(remoteURL) == "" {
		return false
	}
	if gitPath == "" {
		gitPath = "git"
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := cmd.RunEnvContext(ctx, "", nonInteractiveEnv, gitPath, "ls-remote", "--heads", remoteURL)
	if err != nil {
		log.FromContext(ctx).Debug("remote unreachable", "url", remoteURL, "error", err)
		return false
	}
	return true
}

// Prober probes remotes and remembers each URL's result, so repositories
// sharing a remote cost one ls-remote per run.
type Prober struct {
	gitPath string
	timeout time.Duration
	cache   *lru.Cache[string, bool]
}

// NewProber creates a Prober using the given git executable and timeout.
func NewProber(gitPath string, timeout time.Duration) *Prober {
	cache, err := lru.New[string, bool](probeCacheSize)
	if err != nil {
		// Only possible for a non-positive size.
		panic(err)
	}
	return &Prober{gitPath: gitPath, timeout: timeout, cache: cache}
}

// Probe reports whether remoteURL is reachable, consulting the cache first.
func (p *Prober) Probe(ctx context.Context, remoteURL string) bool {
	key := strings.TrimSpace(remoteURL)
	if key == "" {
		return false
	}

	if ok, hit := p.cache.Get(key); hit {
		return ok
	}
	ok := ProbeReachability(ctx, key, p.gitPath, p.timeout)
	p.cache.Add(key, ok)
	return ok
}
