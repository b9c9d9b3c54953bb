// Package log is a module-keyed front end over the go-ethereum logger.
// Debug and trace output can be switched per module; info and above always
// pass through.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	gethlog "github.com/ethereum/go-ethereum/log"
)

const (
	Input   = "input"
	Backend = "backend"
	Bench   = "bench"
	Report  = "report"
	Config  = "config"
)

var (
	mu            sync.RWMutex
	moduleEnabled = map[string]bool{
		Input:   true,
		Backend: true,
		Bench:   true,
		Report:  true,
		Config:  true,
	}
)

// ParseLevel maps a level name onto a slog level.
func ParseLevel(lvl string) (slog.Level, error) {
	switch strings.ToUpper(lvl) {
	case "TRACE":
		return gethlog.LevelTrace, nil
	case "DEBUG":
		return gethlog.LevelDebug, nil
	case "INFO", "":
		return gethlog.LevelInfo, nil
	case "WARN", "WARNING":
		return gethlog.LevelWarn, nil
	case "ERROR":
		return gethlog.LevelError, nil
	case "CRIT", "CRITICAL":
		return gethlog.LevelCrit, nil
	default:
		return 0, fmt.Errorf("invalid level: %s", lvl)
	}
}

// InitLogger installs a terminal logger on stderr at the given level.
func InitLogger(logLevel string) error {
	lvl, err := ParseLevel(logLevel)
	if err != nil {
		return err
	}
	fi, err := os.Stderr.Stat()
	color := err == nil && fi.Mode()&os.ModeCharDevice != 0
	SetOutput(os.Stderr, lvl, color)
	return nil
}

// SetOutput installs a terminal logger writing to w.
func SetOutput(w io.Writer, lvl slog.Level, color bool) {
	gethlog.SetDefault(gethlog.NewLogger(gethlog.NewTerminalHandlerWithLevel(w, lvl, color)))
}

func EnableModule(module string) {
	mu.Lock()
	defer mu.Unlock()
	moduleEnabled[module] = true
}

func DisableModule(module string) {
	mu.Lock()
	defer mu.Unlock()
	moduleEnabled[module] = false
}

// EnableModules enables a comma-separated list of modules.
func EnableModules(list string) {
	for _, m := range strings.Split(list, ",") {
		if m = strings.TrimSpace(m); m != "" {
			EnableModule(m)
		}
	}
}

// OnlyModules restricts debug and trace output to the listed modules.
func OnlyModules(list string) {
	mu.RLock()
	modules := make([]string, 0, len(moduleEnabled))
	for m := range moduleEnabled {
		modules = append(modules, m)
	}
	mu.RUnlock()
	for _, m := range modules {
		DisableModule(m)
	}
	EnableModules(list)
}

func isModuleEnabled(module string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return moduleEnabled[module]
}

func write(level slog.Level, module, msg string, ctx []interface{}) {
	gethlog.Root().Log(level, msg, append([]interface{}{"module", module}, ctx...)...)
}

func Trace(module string, msg string, ctx ...interface{}) {
	if !isModuleEnabled(module) {
		return
	}
	write(gethlog.LevelTrace, module, msg, ctx)
}

func Debug(module string, msg string, ctx ...interface{}) {
	if !isModuleEnabled(module) {
		return
	}
	write(gethlog.LevelDebug, module, msg, ctx)
}

func Info(module string, msg string, ctx ...interface{}) {
	write(gethlog.LevelInfo, module, msg, ctx)
}

func Warn(module string, msg string, ctx ...interface{}) {
	write(gethlog.LevelWarn, module, msg, ctx)
}

func Error(module string, msg string, ctx ...interface{}) {
	write(gethlog.LevelError, module, msg, ctx)
}
