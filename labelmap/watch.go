package labelmap

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// debounceDelay coalesces the burst of events editors emit for one save.
const debounceDelay = 250 * time.Millisecond

// Watch calls fn with the freshly loaded file every time path changes, until
// ctx is done. The directory is watched so that editors replacing the file
// by rename are followed.
func Watch(ctx context.Context, path string, log zerolog.Logger, fn func(*Data, error)) error {
	dir := filepath.Dir(path)
	file := filepath.Base(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Debug().Str("dir", dir).Str("file", file).Msg("label map watcher started")

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, func() {
			if ctx.Err() != nil {
				return
			}
			fn(Load(path))
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if strings.EqualFold(filepath.Base(ev.Name), file) && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("dir", dir).Msg("label map watch error")
		}
	}
}
