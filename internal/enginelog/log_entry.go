// Package enginelog is the engine-wide component logger: a ring buffer of
// timestamped entries, filtered by minimum level and per-component enable
// flags, drained by a background goroutine so hot paths (the render walk,
// the resolver) never block on log I/O.
package enginelog

import (
	"fmt"
	"time"
)

// Level is the severity of a log entry.
type Level int

const (
	LevelNone Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Component names the engine subsystem that produced an entry.
type Component string

const (
	ComponentArchive      Component = "Archive"
	ComponentMapDatabase  Component = "MapDB"
	ComponentBSP          Component = "BSP"
	ComponentThink        Component = "Think"
	ComponentCollide      Component = "Collide"
	ComponentRender       Component = "Render"
	ComponentOrchestrator Component = "Orchestrator"
	ComponentPresent      Component = "Present"
	ComponentInput        Component = "Input"
)

// Entry is a single log record.
type Entry struct {
	Timestamp time.Time
	Component Component
	Level     Level
	Message   string
	Data      map[string]interface{}
}

// Format renders the entry the way it would appear in a terminal log.
func (e *Entry) Format() string {
	ts := e.Timestamp.Format("15:04:05.000")
	return fmt.Sprintf("[%s] [%s] %s: %s", ts, e.Component, e.Level, e.Message)
}
