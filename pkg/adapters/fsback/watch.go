package fsback

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of fsnotify events an atomic
// write-then-rename produces into a single notification.
const debounceWindow = 50 * time.Millisecond

// Watch notifies on changes to the review directory made by another
// process. Each tick on the returned channel means the review or its
// comments changed; the consumer re-reads through the backend. The channel
// closes when ctx is done.
func (b *Backend) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(b.path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", b.path, err)
	}
	// The comments dir may not exist until the first annotation lands.
	_ = watcher.Add(filepath.Join(b.path, commentsDir))

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer watcher.Close()

		var pending *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !relevant(event) {
					continue
				}
				if pending == nil {
					pending = time.NewTimer(debounceWindow)
				} else {
					if !pending.Stop() {
						select {
						case <-pending.C:
						default:
						}
					}
					pending.Reset(debounceWindow)
				}
				fire = pending.C
			case <-fire:
				fire = nil
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				b.logger.Warn("watch error", "path", b.path, "error", err)
			}
		}
	}()
	return changes, nil
}

// relevant filters out our own temp files and directory noise; only the
// renamed-into-place yaml documents matter.
func relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, TempFilePrefix) {
		return false
	}
	if filepath.Ext(name) != ".yaml" {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}
