// Package watcher installs APG packages dropped into a watched directory.
// New .apg files are picked up via filesystem events, waited for write
// stability, installed through the pipeline, and renamed aside so they are
// processed exactly once. The watcher can run in the foreground or as a
// PID-file daemon.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// InstallFunc installs one package archive. The watcher treats a nil error
// as success.
type InstallFunc func(path string) error

// Watcher monitors a drop directory and installs packages that appear in it.
type Watcher struct {
	dropDir string
	install InstallFunc
	log     zerolog.Logger

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup

	// settle is how long a file's size must hold steady before it is
	// considered fully written.
	settle time.Duration
}

// New creates a Watcher for dropDir. The directory is created if missing.
func New(dropDir string, install InstallFunc, log zerolog.Logger) (*Watcher, error) {
	if install == nil {
		return nil, fmt.Errorf("install function cannot be nil")
	}

	if err := os.MkdirAll(dropDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create drop directory: %w", err)
	}

	return &Watcher{
		dropDir: dropDir,
		install: install,
		log:     log,
		stopCh:  make(chan struct{}),
		settle:  500 * time.Millisecond,
	}, nil
}

// SetSettleInterval overrides the write-stability interval (useful in tests).
func (w *Watcher) SetSettleInterval(d time.Duration) {
	w.settle = d
}

// Start begins watching the drop directory. Packages already present are
// processed immediately, then filesystem events take over.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	if err := fsw.Add(w.dropDir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dropDir, err)
	}
	w.fsw = fsw

	w.sweep()

	w.wg.Add(1)
	go w.run()

	return nil
}

// Stop halts the watcher. In-flight installs finish first.
func (w *Watcher) Stop() error {
	close(w.stopCh)

	if w.fsw != nil {
		w.fsw.Close()
	}

	w.wg.Wait()
	return nil
}

// run dispatches filesystem events until the watcher is stopped.
func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// Files moved into the directory arrive as Create. Rename fires
			// for the old name when a processed package is moved aside, so
			// reacting to it would re-handle a file that is already gone.
			if ev.Op&fsnotify.Create != 0 && isPackage(ev.Name) {
				w.handlePackage(ev.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("filesystem watcher error")
		case <-w.stopCh:
			return
		}
	}
}

// sweep installs any packages already sitting in the drop directory, in
// name order, so a restart does not miss files dropped while down.
func (w *Watcher) sweep() {
	entries, err := os.ReadDir(w.dropDir)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to read drop directory")
		return
	}

	for _, entry := range entries {
		if entry.Type().IsRegular() && isPackage(entry.Name()) {
			w.handlePackage(filepath.Join(w.dropDir, entry.Name()))
		}
	}
}

// handlePackage waits for the file to stop growing, installs it, and renames
// it aside with a .installed or .failed suffix.
func (w *Watcher) handlePackage(path string) {
	if err := w.waitStable(path); err != nil {
		w.log.Warn().Err(err).Str("package", path).Msg("dropped package never settled")
		return
	}

	w.log.Info().Str("package", path).Msg("installing dropped package")

	suffix := ".installed"
	if err := w.install(path); err != nil {
		suffix = ".failed"
		w.log.Error().Err(err).Str("package", path).Msg("installation failed")
	} else {
		w.log.Info().Str("package", path).Msg("installation succeeded")
	}

	if err := os.Rename(path, path+suffix); err != nil && !os.IsNotExist(err) {
		w.log.Warn().Err(err).Str("package", path).Msg("failed to move package aside")
	}
}

// waitStable polls the file size until it holds steady for one settle
// interval, so partially copied archives are not installed.
func (w *Watcher) waitStable(path string) error {
	const maxChecks = 120

	var lastSize int64 = -1
	for i := 0; i < maxChecks; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()

		select {
		case <-time.After(w.settle):
		case <-w.stopCh:
			return fmt.Errorf("watcher stopped while waiting for %s", path)
		}
	}

	return fmt.Errorf("%s still growing after %d checks", path, maxChecks)
}

// isPackage reports whether the path names an APG archive.
func isPackage(path string) bool {
	return strings.HasSuffix(path, ".apg")
}
