package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/mod/semver"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/util"
)

const (
	githubRepo = "babith-ai/Real-Time-Voice-Cloning-System"

	// The first check is delayed so it never competes with startup, then the
	// release feed is polled once a day.
	versionCheckDelay    = 30 * time.Second
	versionCheckInterval = 24 * time.Hour
	versionCheckTimeout  = 30 * time.Second
	versionMaxRetries    = 3
)

// errRetryable marks a failed check that should be attempted again.
var errRetryable = fmt.Errorf("retryable")

// VersionChecker polls the GitHub releases feed and reports whether a newer
// build is available. It is safe for concurrent use.
type VersionChecker struct {
	mu     sync.RWMutex
	latest string
	etag   string
	stopCh chan struct{}
}

// NewVersionChecker starts the background release poll.
func NewVersionChecker() *VersionChecker {
	vc := &VersionChecker{stopCh: make(chan struct{})}
	go vc.run()
	return vc
}

// Stop terminates the poll loop.
func (vc *VersionChecker) Stop() {
	close(vc.stopCh)
}

func (vc *VersionChecker) run() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in version checker", "panic", r)
		}
	}()

	if !vc.sleep(versionCheckDelay) {
		return
	}
	vc.checkWithRetry()

	ticker := time.NewTicker(versionCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			vc.checkWithRetry()
		case <-vc.stopCh:
			return
		}
	}
}

// sleep waits for d and reports false when the checker was stopped meanwhile.
func (vc *VersionChecker) sleep(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-vc.stopCh:
		return false
	}
}

// checkWithRetry runs one check cycle, backing off between transient failures.
func (vc *VersionChecker) checkWithRetry() {
	backoff := util.NewBackoff(time.Minute, 4*time.Minute)
	for attempt := 0; attempt < versionMaxRetries; attempt++ {
		err := vc.check()
		if err == nil {
			return
		}
		slog.Debug("version check failed", "attempt", attempt+1, "error", err)
		if !vc.sleep(backoff.Next()) {
			return
		}
	}
}

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// check fetches the latest release once. A nil return means the cycle is
// done; errRetryable-wrapped errors get another attempt.
func (vc *VersionChecker) check() error {
	ctx, cancel := context.WithTimeout(context.Background(), versionCheckTimeout)
	defer cancel()

	url := "https://api.github.com/repos/" + githubRepo + "/releases/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "voiceclone-studio/"+Version)

	vc.mu.RLock()
	etag := vc.etag
	vc.mu.RUnlock()
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errRetryable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decoding.
	case resp.StatusCode == http.StatusNotModified:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		// No releases published yet.
		return nil
	case resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
	default:
		// Other client errors will not improve on retry.
		return nil
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return fmt.Errorf("%w: decode release: %v", errRetryable, err)
	}
	if release.Draft || release.Prerelease {
		return nil
	}
	if release.TagName == "" {
		return fmt.Errorf("%w: release without tag", errRetryable)
	}

	vc.mu.Lock()
	vc.latest = strings.TrimPrefix(strings.TrimSpace(release.TagName), "v")
	if newEtag := resp.Header.Get("ETag"); newEtag != "" {
		vc.etag = newEtag
	}
	vc.mu.Unlock()

	return nil
}

// Info returns the version snapshot shown in the UI.
func (vc *VersionChecker) Info() types.VersionInfo {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	current := strings.TrimPrefix(strings.TrimSpace(Version), "v")
	info := types.VersionInfo{
		Current:   current,
		Latest:    vc.latest,
		Commit:    Commit,
		BuildTime: util.FormatHumanTime(BuildTime),
	}
	if vc.latest != "" && current != "dev" && current != "unknown" {
		info.UpdateAvail = semver.Compare("v"+vc.latest, "v"+current) > 0
	}
	return info
}
