package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher reloads Config from its .env file on write events, mirroring
// cmd/pulse's config.NewConfigWatcher / SIGHUP reload dance but driven by
// the filesystem instead of a signal, since this core has no HTTP admin
// surface of its own to trigger a manual reload from.
type Watcher struct {
	mu       sync.Mutex
	cfg      Config
	watcher  *fsnotify.Watcher
	onReload func(Config)
	done     chan struct{}
}

// NewWatcher starts watching cfg.DataDir for changes to its .env file.
func NewWatcher(cfg Config, onReload func(Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(cfg.DataDir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		cfg:      cfg,
		watcher:  fw,
		onReload: onReload,
		done:     make(chan struct{}),
	}, nil
}

// Start begins the watch loop in a background goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name == w.cfg.DataDir+"/.env" && (event.Op&(fsnotify.Write|fsnotify.Create) != 0) {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("config watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	w.mu.Lock()
	cfg := Load(w.cfg.DataDir)
	w.cfg = cfg
	w.mu.Unlock()

	log.Info().Str("path", cfg.DataDir+"/.env").Msg("configuration reloaded")
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Current returns the most recently loaded Config.
func (w *Watcher) Current() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// Stop tears down the watcher.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
}
