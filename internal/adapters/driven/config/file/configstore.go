package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/logger"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// duration parses TOML duration strings like "15m" or "30s".
type duration time.Duration

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// connectorSection is one [connectors.<source>] table.
type connectorSection struct {
	Credentials        map[string]string `toml:"credentials"`
	MaxResults         int               `toml:"max_results"`
	RateLimitPerMinute int               `toml:"rate_limit_per_minute"`
	Timeout            duration          `toml:"timeout"`
	Extra              map[string]string `toml:"extra"`
}

// taskSection is one [[scheduler.tasks]] entry.
type taskSection struct {
	Name       string   `toml:"name"`
	Source     string   `toml:"source"`
	Query      string   `toml:"query"`
	MaxResults int      `toml:"max_results"`
	Interval   duration `toml:"interval"`
	Enabled    *bool    `toml:"enabled"`
}

type schedulerSection struct {
	Enabled *bool         `toml:"enabled"`
	Tasks   []taskSection `toml:"tasks"`
}

type fileConfig struct {
	Connectors map[string]connectorSection `toml:"connectors"`
	Scheduler  schedulerSection            `toml:"scheduler"`
}

// ConfigStore is a TOML-file implementation of driven.ConfigStore.
// The backing file is watched; edits are reloaded in place and
// subscribers are notified, so credential rotation and schedule changes
// take effect without a restart.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	cfg      fileConfig
	subs     []func()

	watcher *fsnotify.Watcher
	done    chan struct{}
	log     zerolog.Logger
}

// NewConfigStore creates a TOML-based config store and starts watching
// the file for changes. If configDir is empty, defaults to
// ~/.leadboost/config.toml. A missing file is not an error; every
// lookup then falls back to its defaults.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".leadboost")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		done:     make(chan struct{}),
		log:      logger.With("config"),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace the file on
	// save, which would orphan a file-level watch.
	if err := watcher.Add(configDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}
	s.watcher = watcher
	go s.watch()

	return s, nil
}

// load reads and parses the TOML file. A missing file yields an empty config.
func (s *ConfigStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.cfg = fileConfig{}
			s.mu.Unlock()
			return nil
		}
		return err
	}

	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// watch reloads the config when the backing file changes.
func (s *ConfigStore) watch() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.filePath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.load(); err != nil {
				// Keep the last good config on a bad edit.
				s.log.Warn().Err(err).Msg("config reload failed, keeping previous")
				continue
			}
			s.log.Info().Str("path", s.filePath).Msg("config reloaded")
			s.notify()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (s *ConfigStore) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

// ConnectorConfig returns the configured settings for a source merged
// over the given defaults.
func (s *ConfigStore) ConnectorConfig(source domain.SourceType, defaults domain.ConnectorConfig) domain.ConnectorConfig {
	s.mu.RLock()
	section, ok := s.cfg.Connectors[strings.ToLower(string(source))]
	s.mu.RUnlock()
	if !ok {
		return defaults
	}

	return defaults.Merge(domain.ConnectorConfig{
		Credentials:        section.Credentials,
		MaxResults:         section.MaxResults,
		RateLimitPerMinute: section.RateLimitPerMinute,
		Timeout:            time.Duration(section.Timeout),
		Extra:              section.Extra,
	})
}

// SchedulerConfig returns the task catalogue. Without a [scheduler]
// section the built-in default catalogue applies.
func (s *ConfigStore) SchedulerConfig() domain.SchedulerConfig {
	s.mu.RLock()
	section := s.cfg.Scheduler
	s.mu.RUnlock()

	cfg := domain.DefaultSchedulerConfig()
	if section.Enabled != nil {
		cfg.Enabled = *section.Enabled
	}
	if len(section.Tasks) == 0 {
		return cfg
	}

	tasks := make([]domain.ScheduledTask, 0, len(section.Tasks))
	for _, t := range section.Tasks {
		task := domain.ScheduledTask{
			Name:       t.Name,
			Query:      t.Query,
			MaxResults: t.MaxResults,
			Interval:   time.Duration(t.Interval),
			Enabled:    true,
		}
		if t.Source != "" {
			source, err := domain.ParseSourceType(t.Source)
			if err != nil {
				s.log.Warn().Str("task", t.Name).Str("source", t.Source).
					Msg("skipping task with unknown source")
				continue
			}
			task.Source = source
		}
		if t.Enabled != nil {
			task.Enabled = *t.Enabled
		}
		if task.Interval <= 0 {
			s.log.Warn().Str("task", t.Name).Dur("default", domain.DefaultTaskInterval).
				Msg("task has no interval, applying default")
			task.Interval = domain.DefaultTaskInterval
		}
		tasks = append(tasks, task)
	}
	cfg.Tasks = tasks
	return cfg
}

// Subscribe registers a callback invoked after each successful reload.
func (s *ConfigStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Close stops the file watcher.
func (s *ConfigStore) Close() error {
	close(s.done)
	return s.watcher.Close()
}
