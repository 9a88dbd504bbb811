// Package watchlist maintains the set of inode numbers the eviction
// engine considers in scope. The set is seeded from a watched directory
// tree at startup and kept current through fsnotify as files are created
// underneath it.
package watchlist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// MaxPathLen bounds the resolved watch-directory path.
const MaxPathLen = 128

var (
	// ErrPathTooLong reports a resolved path over MaxPathLen bytes.
	ErrPathTooLong = errors.New("watchlist: path too long")
	// ErrNotDirectory reports a watch path that is not a directory.
	ErrNotDirectory = errors.New("watchlist: not a directory")
)

// Options configures a Watchlist. Zero values are safe: live updates are
// on and logging is disabled.
type Options struct {
	// Static disables the fsnotify watcher; the set is frozen after the
	// initial scan.
	Static bool

	// Logger for scan results and watcher degradations. Nil disables.
	Logger *zerolog.Logger
}

// Watchlist is a concurrency-safe inode set rooted at one directory.
// The engine consults Contains on every lifecycle hook.
type Watchlist struct {
	dir string
	log zerolog.Logger

	mu     sync.RWMutex
	inodes map[uint64]struct{}

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New resolves dir, validates it, scans the tree for inodes, and starts
// the change watcher unless opt.Static is set.
func New(dir string, opt Options) (*Watchlist, error) {
	log := zerolog.Nop()
	if opt.Logger != nil {
		log = *opt.Logger
	}

	resolved, err := resolve(dir)
	if err != nil {
		return nil, err
	}

	w := &Watchlist{
		dir:    resolved,
		log:    log,
		inodes: make(map[uint64]struct{}),
		done:   make(chan struct{}),
	}

	if !opt.Static {
		w.watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("watchlist: fsnotify: %w", err)
		}
	}

	if err := w.scan(resolved); err != nil {
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		return nil, err
	}

	if w.watcher != nil {
		go w.eventLoop()
	}

	w.log.Info().Str("dir", resolved).Int("inodes", w.Len()).Msg("watchlist ready")
	return w, nil
}

// resolve converts dir to a bounded absolute path with symlinks expanded.
func resolve(dir string) (string, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("watchlist: %w", err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("watchlist: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("watchlist: %w", err)
	}
	if len(resolved) > MaxPathLen {
		return "", fmt.Errorf("%w: %s", ErrPathTooLong, resolved)
	}
	return resolved, nil
}

// scan walks root, records every inode, and registers directories with
// the watcher.
func (w *Watchlist) scan(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ino, statErr := inodeOf(path)
		if statErr != nil {
			// Raced with a concurrent unlink; nothing to track.
			return nil
		}
		w.add(ino)
		if d.IsDir() && w.watcher != nil {
			if werr := w.watcher.Add(path); werr != nil {
				return fmt.Errorf("watchlist: watch %s: %w", path, werr)
			}
		}
		return nil
	})
}

func inodeOf(path string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, err
	}
	return st.Ino, nil
}

func (w *Watchlist) add(ino uint64) {
	w.mu.Lock()
	w.inodes[ino] = struct{}{}
	w.mu.Unlock()
}

// eventLoop folds newly created files and directories into the set.
// Inodes of removed files are kept: the engine still owns their resident
// pages until the host evicts them.
func (w *Watchlist) eventLoop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			ino, err := inodeOf(ev.Name)
			if err != nil {
				continue
			}
			w.add(ino)
			if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
				if err := w.watcher.Add(ev.Name); err != nil {
					w.log.Warn().Err(err).Str("path", ev.Name).Msg("watch add failed")
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// Contains reports whether an inode is in scope.
func (w *Watchlist) Contains(inode uint64) bool {
	w.mu.RLock()
	_, ok := w.inodes[inode]
	w.mu.RUnlock()
	return ok
}

// Len is the number of tracked inodes.
func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.inodes)
}

// Dir is the resolved watch root.
func (w *Watchlist) Dir() string { return w.dir }

// Close stops the change watcher. The set remains readable.
func (w *Watchlist) Close() error {
	close(w.done)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
