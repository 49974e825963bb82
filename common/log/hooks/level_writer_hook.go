package hooks

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LevelWriterHook copies entries at the given levels to a writer, formatted
// independently of the logger's own output. A logger can carry several of these
// to split one stream into per-level files and a console.
type LevelWriterHook struct {
	mu        sync.Mutex
	w         io.Writer
	levels    []logrus.Level
	formatter logrus.Formatter
	closer    io.Closer
}

// NewLevelWriterHook writes entries at levels to w. A nil formatter selects a
// plain text formatter with full timestamps.
func NewLevelWriterHook(w io.Writer, levels []logrus.Level, formatter logrus.Formatter) *LevelWriterHook {
	if formatter == nil {
		formatter = &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}
	}
	return &LevelWriterHook{w: w, levels: levels, formatter: formatter}
}

// NewLevelFileHook appends entries at levels to the file at path, creating it if needed.
func NewLevelFileHook(path string, levels []logrus.Level, formatter logrus.Formatter) (*LevelWriterHook, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening log file %s", path)
	}
	h := NewLevelWriterHook(f, levels, formatter)
	h.closer = f
	return h, nil
}

// LevelsAtLeast returns every level as severe as or more severe than lvl.
func LevelsAtLeast(lvl logrus.Level) []logrus.Level {
	levels := []logrus.Level{}
	for _, l := range logrus.AllLevels {
		if l <= lvl {
			levels = append(levels, l)
		}
	}
	return levels
}

func (h *LevelWriterHook) Levels() []logrus.Level {
	return h.levels
}

func (h *LevelWriterHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.w == nil {
		return nil
	}
	_, err = h.w.Write(line)
	return err
}

// Close closes the underlying file, if this hook owns one. Entries fired after
// Close are dropped.
func (h *LevelWriterHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.w = nil
	if h.closer == nil {
		return nil
	}
	err := h.closer.Close()
	h.closer = nil
	return err
}
