// Package models stores actors, community membership, bans, activities
// and the outbound delivery queue.
package models

import (
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
)

// Env is the environment shared by the handlers and workers of a
// single request or unit of work.
type Env struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Log returns the logger of the env, or the default logger if none was set.
func (e *Env) Log() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
