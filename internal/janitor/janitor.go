// Package janitor removes stale files from the ephemeral directories, and
// nothing else: every deletion is checked against the directory allow-list.
package janitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
)

type Janitor struct {
	allowedDirs []string
	retention   time.Duration
}

func New(allowedDirs []string, retention time.Duration) *Janitor {
	abs := make([]string, 0, len(allowedDirs))
	for _, dir := range allowedDirs {
		if resolved, err := filepath.Abs(dir); err == nil {
			abs = append(abs, resolved)
		}
	}
	return &Janitor{
		allowedDirs: abs,
		retention:   retention,
	}
}

// Delete removes one ephemeral file. Paths outside the allow-list are refused
// with a warning; a wrong path produced by a bug must never delete arbitrary
// files. Removal failures are logged and swallowed.
func (j *Janitor) Delete(path string) {
	if path == "" {
		return
	}
	if !j.pathAllowed(path) {
		logutils.Log.WithField("path", path).Warn("Refusing to delete file outside ephemeral directories")
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logutils.Log.WithError(err).WithField("path", path).Warn("Failed to delete ephemeral file")
		return
	}
	logutils.Log.WithField("path", path).Debug("Deleted ephemeral file")
}

// Sweep deletes regular files older than the retention age in every allowed
// directory. Per-file failures are logged and skipped, never raised.
func (j *Janitor) Sweep() {
	cutoff := time.Now().Add(-j.retention)

	for _, dir := range j.allowedDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logutils.Log.WithError(err).WithField("dir", dir).Warn("Failed to read ephemeral directory")
			continue
		}

		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logutils.Log.WithError(err).WithField("path", path).Warn("Failed to sweep stale file")
				continue
			}
			logutils.Log.WithField("path", path).Debug("Swept stale file")
		}
	}
}

// Run sweeps periodically until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logutils.Log.WithField("interval", interval).Info("Starting periodic ephemeral storage sweeper")

	for {
		select {
		case <-ctx.Done():
			logutils.Log.Info("Stopping periodic ephemeral storage sweeper")
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

func (j *Janitor) pathAllowed(path string) bool {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range j.allowedDirs {
		if strings.HasPrefix(resolved, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
