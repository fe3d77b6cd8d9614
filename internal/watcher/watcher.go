// Package watcher turns filesystem events under a directory tree into
// debounced change notifications.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/suykerbuyk/blue/internal/change"
	"github.com/suykerbuyk/blue/internal/config"
)

// Stats tracks watcher activity.
type Stats struct {
	Dirs     int
	Events   int
	Emitted  int
	Moves    int
	Errors   int
	LastPath string
	LastKind change.Kind
	LastTime time.Time
}

type pending struct {
	kind change.Kind
	from string // source path of a move
	last time.Time
}

type rename struct {
	path string
	at   time.Time
}

// Watcher watches root recursively. Run owns all mutable state except stats.
type Watcher struct {
	root     string
	filter   *Filter
	debounce time.Duration
	fsw      *fsnotify.Watcher
	out      chan change.Notification
	now      func() time.Time
	log      *zap.Logger

	pending map[string]*pending
	renames []rename

	mu    sync.Mutex
	stats Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithClock replaces time.Now for event timestamps and debouncing.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// New creates a Watcher for root and registers every directory under it
// that is not ignored.
func New(root string, cfg config.MonitoringConfig, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	size := cfg.QueueSize
	if size <= 0 {
		size = 64
	}
	debounce := time.Duration(cfg.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	w := &Watcher{
		root:     abs,
		filter:   NewFilter(cfg),
		debounce: debounce,
		fsw:      fsw,
		out:      make(chan change.Notification, size),
		now:      time.Now,
		log:      zap.NewNop(),
		pending:  make(map[string]*pending),
	}
	for _, o := range opts {
		o(w)
	}

	if err := w.addTree(abs); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string { return w.root }

// Events returns the notification channel. It is closed when Run returns.
func (w *Watcher) Events() <-chan change.Notification { return w.out }

func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Vanished or unreadable subtrees are skipped.
			if path == dir {
				return fmt.Errorf("walk %s: %w", path, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.filter.IgnoreDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("watch directory", zap.String("path", path), zap.Error(err))
			return nil
		}
		w.mu.Lock()
		w.stats.Dirs++
		w.mu.Unlock()
		return nil
	})
}

// Run processes events until ctx is cancelled or the underlying watcher
// closes. Events still inside their debounce window are dropped on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.out)
	defer w.fsw.Close()

	tick := w.debounce / 3
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	w.log.Info("watching", zap.String("root", w.root), zap.Duration("debounce", w.debounce))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			if !w.flush(ctx, w.now()) {
				return nil
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	now := w.now()
	path := ev.Name

	w.mu.Lock()
	w.stats.Events++
	w.mu.Unlock()

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.filter.IgnoreDir(filepath.Base(path)) {
				if err := w.addTree(path); err != nil {
					w.log.Warn("watch new directory", zap.String("path", path), zap.Error(err))
				}
			}
			return
		}
	}

	if !w.filter.Match(w.root, path) {
		return
	}

	switch {
	case ev.Has(fsnotify.Create):
		if i := w.renameIn(filepath.Dir(path)); i >= 0 {
			src := w.renames[i]
			w.renames = append(w.renames[:i], w.renames[i+1:]...)
			delete(w.pending, src.path)
			w.pending[path] = &pending{kind: change.Moved, from: src.path, last: now}
			w.mu.Lock()
			w.stats.Moves++
			w.mu.Unlock()
			return
		}
		w.queue(path, change.Created, now)

	case ev.Has(fsnotify.Write):
		w.queue(path, change.Modified, now)

	case ev.Has(fsnotify.Remove):
		if p, ok := w.pending[path]; ok && p.kind == change.Created {
			// Created and removed inside one window: nothing happened.
			delete(w.pending, path)
			return
		}
		w.queue(path, change.Deleted, now)

	case ev.Has(fsnotify.Rename):
		delete(w.pending, path)
		w.renames = append(w.renames, rename{path: path, at: now})
	}
}

// renameIn returns the index of the oldest unpaired rename whose source was
// in dir, or -1. Renames across directories are not paired.
func (w *Watcher) renameIn(dir string) int {
	for i, r := range w.renames {
		if filepath.Dir(r.path) == dir {
			return i
		}
	}
	return -1
}

// queue records a debounced event. A write after a create or move keeps the
// earlier kind.
func (w *Watcher) queue(path string, kind change.Kind, now time.Time) {
	p, ok := w.pending[path]
	if !ok {
		w.pending[path] = &pending{kind: kind, last: now}
		return
	}
	if kind == change.Modified && (p.kind == change.Created || p.kind == change.Moved) {
		p.last = now
		return
	}
	p.kind = kind
	p.from = ""
	p.last = now
}

// flush emits every pending event that has been quiet for the debounce
// window, oldest first. Renames that found no matching create become
// deletions. It returns false if ctx ended while sending.
func (w *Watcher) flush(ctx context.Context, now time.Time) bool {
	var ready []change.Notification
	for path, p := range w.pending {
		if now.Sub(p.last) < w.debounce {
			continue
		}
		n := change.Notification{Path: path, Kind: p.kind, Timestamp: p.last}
		if p.kind == change.Moved {
			n.Path, n.Dest = p.from, path
		}
		ready = append(ready, n)
		delete(w.pending, path)
	}

	kept := w.renames[:0]
	for _, r := range w.renames {
		if now.Sub(r.at) >= w.debounce {
			ready = append(ready, change.Notification{Path: r.path, Kind: change.Deleted, Timestamp: r.at})
			continue
		}
		kept = append(kept, r)
	}
	w.renames = kept

	sort.Slice(ready, func(i, j int) bool {
		if ready[i].Timestamp.Equal(ready[j].Timestamp) {
			return ready[i].Target() < ready[j].Target()
		}
		return ready[i].Timestamp.Before(ready[j].Timestamp)
	})

	for _, n := range ready {
		if !w.emit(ctx, n) {
			return false
		}
	}
	return true
}

// emit blocks while the queue is full, so a slow consumer slows the watcher
// instead of losing changes.
func (w *Watcher) emit(ctx context.Context, n change.Notification) bool {
	select {
	case w.out <- n:
	case <-ctx.Done():
		return false
	}
	w.log.Debug("change",
		zap.String("kind", string(n.Kind)),
		zap.String("path", n.Target()))

	w.mu.Lock()
	w.stats.Emitted++
	w.stats.LastPath = n.Target()
	w.stats.LastKind = n.Kind
	w.stats.LastTime = n.Timestamp
	w.mu.Unlock()
	return true
}
