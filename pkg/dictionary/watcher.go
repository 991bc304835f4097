package dictionary

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bastiangx/termserve/internal/logger"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors emit per save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher calls back once per burst of changes to files matching any of
// its dictionary patterns.
type Watcher struct {
	fw       *fsnotify.Watcher
	patterns []string
	debounce time.Duration
	onChange func()

	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewWatcher starts watching the directories the patterns can match in.
// onChange runs on the watcher goroutine, at most once per debounce window.
func NewWatcher(patterns []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:       fw,
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, p := range patterns {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.patterns = append(w.patterns, abs)
		if err := w.addDirs(abs); err != nil {
			fw.Close()
			return nil, err
		}
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// addDirs watches the static base of pattern and, for globs, every
// directory below it.
func (w *Watcher) addDirs(pattern string) error {
	if !isGlob(pattern) {
		return w.fw.Add(filepath.Dir(pattern))
	}
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	base = filepath.FromSlash(base)
	return filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.fw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) matches(path string) bool {
	for _, p := range w.patterns {
		if p == path {
			return true
		}
		if ok, _ := doublestar.PathMatch(p, path); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) run() {
	defer w.wg.Done()
	wlog := logger.New("watch")
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fw.Add(event.Name)
					continue
				}
			}
			if event.Op == fsnotify.Chmod || !w.matches(event.Name) {
				continue
			}
			wlog.Debug("Dictionary changed", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.onChange()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			wlog.Warnf("Watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops watching and waits for the watcher goroutine. Safe to call
// more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	err := w.fw.Close()
	w.wg.Wait()
	return err
}
