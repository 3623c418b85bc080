package logger

import (
	"sync"

	"github.com/charmbracelet/log"
)

// component loggers are created at package init, before flags are parsed
var (
	mu       sync.Mutex
	registry []*log.Logger
)

// SetLevel sets the level of the global logger and of every component logger made by New.
func SetLevel(level log.Level) {
	log.SetLevel(level)
	mu.Lock()
	defer mu.Unlock()
	for _, l := range registry {
		l.SetLevel(level)
	}
}
