package hooks

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Frames from logrus and from this file belong to the logging machinery, not the caller.
const logrusPackage = "github.com/sirupsen/logrus."

const maxCallerDepth = 25

type contextHook struct {
}

// NewContextHook returns a hook that annotates every entry with the file:line
// of the code that logged it.
func NewContextHook() contextHook {
	return contextHook{}
}

func (hook contextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook contextHook) Fire(entry *logrus.Entry) error {
	pcs := make([]uintptr, maxCallerDepth)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !isSkipped(frame) {
			file := frame.File
			if i := strings.LastIndex(file, "testsched/"); i >= 0 {
				file = file[i+len("testsched/"):]
			}
			entry.Data["file:line"] = fmt.Sprintf("%s:%d", file, frame.Line)
			return nil
		}
		if !more {
			return nil
		}
	}
}

func isSkipped(frame runtime.Frame) bool {
	return strings.HasPrefix(frame.Function, logrusPackage) || strings.HasSuffix(frame.File, "/context_hook.go")
}
