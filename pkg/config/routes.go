package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/lumenhq/console/pkg/observability"
	"github.com/lumenhq/console/pkg/rbac"
)

// routeRulesFile is the on-disk shape of the route rule table
type routeRulesFile struct {
	Routes []rbac.RouteRule `yaml:"routes"`
}

// LoadRouteRules reads a route rule table from a YAML file
func LoadRouteRules(path string) ([]rbac.RouteRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading route rules: %w", err)
	}

	var file routeRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing route rules: %w", err)
	}

	for i, rule := range file.Routes {
		if rule.Path == "" {
			return nil, fmt.Errorf("route rule %d has no path", i)
		}
		if rule.RequiredRole == "" && len(rule.AllowedRoles) == 0 {
			return nil, fmt.Errorf("route rule %q needs required_role or allowed_roles", rule.Path)
		}
	}

	return file.Routes, nil
}

// RouteRulesWatcher hot-reloads the route rule table when the file
// changes on disk. A broken edit is logged and skipped; the last good
// table stays active.
type RouteRulesWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *observability.Logger
	onLoad  func([]rbac.RouteRule)
	done    chan struct{}
}

// WatchRouteRules loads the file once, then watches it and invokes onLoad
// with each successfully parsed table
func WatchRouteRules(path string, logger *observability.Logger, onLoad func([]rbac.RouteRule)) (*RouteRulesWatcher, error) {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	rules, err := LoadRouteRules(path)
	if err != nil {
		return nil, err
	}
	onLoad(rules)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory rather than the file: editors replace files on
	// save, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	w := &RouteRulesWatcher{
		path:    path,
		watcher: watcher,
		logger:  logger,
		onLoad:  onLoad,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *RouteRulesWatcher) run() {
	defer observability.RecoverPanic(w.logger, "route rules watcher")
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}

			rules, err := LoadRouteRules(w.path)
			if err != nil {
				w.logger.WithError(err).Error("route rules reload failed, keeping previous table")
				continue
			}
			w.logger.WithField("rules", len(rules)).Info("route rules reloaded")
			w.onLoad(rules)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Error("route rules watcher error")

		case <-w.done:
			return
		}
	}
}

// Close stops the watcher
func (w *RouteRulesWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
