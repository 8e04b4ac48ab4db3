package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Alia5/macropad/keymap"
	"github.com/Alia5/macropad/macro"

	"github.com/fsnotify/fsnotify"
)

// KeymapWatcher reloads the engine's table whenever the keymap file
// changes. A file that fails to load or validate is logged and the old
// table stays active.
type KeymapWatcher struct {
	Path   string
	Engine *macro.Engine
	Logger *slog.Logger
	// Settings are the ones the run started with. Only bindings are
	// swapped on reload, so a file with other settings gets a warning.
	Settings keymap.Settings
	// Settle is how long the file must stay quiet before it is reloaded.
	Settle time.Duration
	// OnReload is called after every reload attempt.
	OnReload func(keymap.Config, error)
}

func (w *KeymapWatcher) String() string { return "keymap watcher" }

func (w *KeymapWatcher) Serve(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	settle := w.Settle
	if settle <= 0 {
		settle = 200 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace the file, so watch the directory
	abs, err := filepath.Abs(w.Path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.Path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("Watching keymap", "path", abs)

	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("keymap changed", "op", ev.Op.String())
			timer.Reset(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			logger.Warn("keymap watcher error", "error", err)
		case <-timer.C:
			w.reload(abs, logger)
		}
	}
}

func (w *KeymapWatcher) reload(path string, logger *slog.Logger) {
	cfg, err := keymap.Load(path)
	if err != nil {
		logger.Warn("Keeping previous keymap", "error", err)
	} else {
		w.Engine.SetTable(cfg.Bindings)
		logger.Info("Keymap reloaded", "path", path, "buttons", len(cfg.Bindings))
		for _, group := range cfg.Bindings.Duplicates() {
			logger.Warn("Buttons share the same binding", "buttons", group)
		}
		if cfg.Settings != w.Settings {
			logger.Warn("Keymap settings changed; restart to apply them",
				"debug", cfg.Debug,
				"led_idle", cfg.LEDIdleBrightness,
				"led_active", cfg.LEDActiveBrightness,
			)
		}
	}
	if w.OnReload != nil {
		w.OnReload(cfg, err)
	}
}
