package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/hubastard/quadtext/engine/core"
)

// Watch invalidates cached sprites when their files under Root change. It
// blocks until ctx is done. onChange, if non-nil, is called with the
// invalidated key after each change.
func (l *SpriteLoader) Watch(ctx context.Context, onChange func(key string)) error {
	if l.Root == "" {
		return errors.New("assets: watch: loader has no root directory")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("assets: watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(l.Root); err != nil {
		return fmt.Errorf("assets: watch %q: %w", l.Root, err)
	}
	core.Logger().Info("assets: watching sprites", "root", l.Root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			keys := l.keysForPath(ev.Name)
			for _, k := range keys {
				l.Invalidate(k)
			}
			if onChange != nil && len(keys) > 0 {
				onChange(keys[len(keys)-1])
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			core.Logger().Warn("assets: watcher error", "err", err)
		}
	}
}
