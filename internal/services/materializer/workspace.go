package materializer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/waseem196/down-fb/internal/metrics"
)

const workspacePrefix = "downfb-"

// Leftovers of an interrupted download, never a finished output.
var partialSuffixes = []string{".part", ".ytdl", ".temp", ".tmp"}

// Workspace is a single-use scratch directory holding one materialized file.
type Workspace struct {
	fs      afero.Fs
	dir     string
	metrics *metrics.Metrics

	// onCleanup runs after the directory is gone.
	onCleanup   func()
	cleanupOnce sync.Once
	cleanupErr  error
}

// NewWorkspace creates a fresh, uniquely named directory under root.
func NewWorkspace(fs afero.Fs, root string, m *metrics.Metrics) (*Workspace, error) {
	dir := filepath.Join(root, workspacePrefix+uuid.New().String())
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", dir, err)
	}
	m.IncrementWorkspaces()
	return &Workspace{fs: fs, dir: dir, metrics: m}, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// OutputTemplate is the tool's output path template; the tool fills in the extension.
func (w *Workspace) OutputTemplate() string {
	return filepath.Join(w.dir, "video.%(ext)s")
}

// OutputFile returns the path of the first finished file in the workspace.
func (w *Workspace) OutputFile() (string, os.FileInfo, error) {
	entries, err := afero.ReadDir(w.fs, w.dir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read workspace: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || isPartial(entry.Name()) {
			continue
		}
		return filepath.Join(w.dir, entry.Name()), entry, nil
	}
	return "", nil, os.ErrNotExist
}

// Cleanup removes the workspace. Only the first call does any work.
func (w *Workspace) Cleanup() error {
	w.cleanupOnce.Do(func() {
		w.cleanupErr = w.fs.RemoveAll(w.dir)
		w.metrics.DecrementWorkspaces()
		if w.onCleanup != nil {
			w.onCleanup()
		}
	})
	return w.cleanupErr
}

func isPartial(name string) bool {
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// CleanupOrphans removes workspaces older than maxAge, typically left behind by a crash.
// Directories for which skip returns true are left alone; skip may be nil.
// It returns the number of directories removed.
func CleanupOrphans(fs afero.Fs, root string, maxAge time.Duration, skip func(dir string) bool) (int, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return 0, fmt.Errorf("failed to read scratch root: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workspacePrefix) {
			continue
		}
		// Only directories we named ourselves
		if _, err := uuid.Parse(strings.TrimPrefix(entry.Name(), workspacePrefix)); err != nil {
			continue
		}
		if entry.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		// A long download only touches its .part file, so the dir's mtime says nothing about liveness
		if skip != nil && skip(dir) {
			continue
		}
		if err := fs.RemoveAll(dir); err != nil {
			continue
		}
		removed++
	}

	return removed, nil
}

// liveSet tracks workspaces that a download still owns.
type liveSet struct {
	mu   sync.Mutex
	dirs map[string]struct{}
}

func newLiveSet() *liveSet {
	return &liveSet{dirs: make(map[string]struct{})}
}

func (l *liveSet) add(dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirs[dir] = struct{}{}
}

func (l *liveSet) remove(dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.dirs, dir)
}

func (l *liveSet) contains(dir string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.dirs[dir]
	return ok
}
