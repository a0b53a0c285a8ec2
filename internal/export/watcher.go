package export

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/dagaz/internal/journal"
)

// Syncer applies a parsed day document to storage. Satisfied by
// dayservice.Service.
type Syncer interface {
	SyncDocument(ctx context.Context, doc journal.Document) (*journal.DayNotes, error)
}

// Watch starts an fsnotify watcher on the export directory and re-syncs
// day files through the reconciler as they are edited, until ctx is
// cancelled. A file that fails to parse or sync is logged and skipped:
// one bad edit must not stop the watcher.
func Watch(ctx context.Context, dir string, svc Syncer, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			date, ok := DateFromFileName(ev.Name)
			if !ok {
				continue
			}
			resyncFile(ctx, ev.Name, date, svc, logger)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// resyncFile parses an edited day file and reconciles it. The file name
// fixes which day the document must describe; a document whose header
// names a different date is rejected rather than silently applied.
func resyncFile(ctx context.Context, path string, date time.Time, svc Syncer, logger *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	doc, err := journal.ParseDocument(string(data), time.Now().UTC())
	if err != nil {
		logger.Warn("watcher: parse failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if !doc.Date.Equal(date) {
		logger.Warn("watcher: header date does not match file name",
			slog.String("path", path),
			slog.String("header", doc.Date.Format(journal.DateFormat)))
		return
	}

	if _, err := svc.SyncDocument(ctx, *doc); err != nil {
		logger.Warn("watcher: sync failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: synced", slog.String("file", filepath.Base(path)))
}
