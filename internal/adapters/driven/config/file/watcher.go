package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sitenav/internal/logger"
)

// promptExt is the file extension of prompt templates.
const promptExt = ".txt"

// Watch reloads the prompt cache whenever a template file in the prompt
// directory is written, created, removed, or renamed. The name of each
// changed prompt is sent on the returned channel, which is closed when ctx
// is cancelled.
func (s *PromptStore) Watch(ctx context.Context) (<-chan string, error) {
	// Make sure the directory and default files exist before watching.
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return nil, fmt.Errorf("prompt directory error: %w", s.initErr)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.promptDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", s.promptDir, err)
	}

	changes := make(chan string)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, changed := promptFromEvent(event)
				if !changed {
					continue
				}
				s.Reload()
				logger.Debug("Prompt %q changed on disk, cache cleared", name)
				select {
				case changes <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Prompt watcher error: %v", err)
			}
		}
	}()

	return changes, nil
}

// promptFromEvent returns the prompt name touched by event, if any.
// Chmod events and non-template files are ignored.
func promptFromEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != promptExt {
		return "", false
	}
	return strings.TrimSuffix(base, promptExt), true
}
