// Copyright 2026 The blockvm Authors
// This file is part of the blockvm library.
//
// The blockvm library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The blockvm library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the blockvm library. If not, see <http://www.gnu.org/licenses/>.

// Package log is the engine's ambient structured logger: a thin,
// key/value-context wrapper over logrus with optional file rotation via
// lumberjack. The interpreter hot path never calls into it above Trace/Debug
// level — an Invalid outcome is returned to the caller, not logged, since
// reverts and out-of-gas are ordinary data, not operational faults.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type Lvl int

const (
	LvlCrit Lvl = iota
	LvlFatal
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

var levelNames = [...]string{"crit", "fatal", "error", "warn", "info", "debug", "trace"}

func (l Lvl) String() string {
	if int(l) < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

func toLogrusLevel(l Lvl) logrus.Level {
	switch l {
	case LvlCrit, LvlFatal:
		return logrus.FatalLevel
	case LvlError:
		return logrus.ErrorLevel
	case LvlWarn:
		return logrus.WarnLevel
	case LvlInfo:
		return logrus.InfoLevel
	case LvlDebug:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// A Logger writes key/value pairs to a Handler.
type Logger interface {
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

var (
	terminal = logrus.New()
	root     = &logger{ctx: []interface{}{}}

	logManager *LogManager
)

// Config controls Init. It intentionally has no dependency on any wider
// node/process configuration package — the engine is a library, not a node.
type Config struct {
	LogFile      string
	Level        string
	MaxSize      int // MB
	MaxBackups   int
	MaxAge       int // days
	Compress     bool
	Console      bool
	JSONFormat   bool
	LocalTime    bool
	TotalSizeCap int // MB, 0 disables background cleanup
	DataDir      string
}

// Init wires the root logger according to cfg. When cfg.LogFile is empty,
// output goes to the console only.
func Init(cfg Config) {
	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	if cfg.LogFile == "" {
		terminal.SetFormatter(consoleFormatter())
		terminal.SetLevel(lvl)
		terminal.SetOutput(os.Stdout)
		return
	}

	logDir := filepath.Join(cfg.DataDir, "log")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "log: failed to create log directory: %v\n", err)
		return
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, cfg.LogFile),
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  cfg.LocalTime,
	}

	if cfg.JSONFormat {
		terminal.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		terminal.SetFormatter(consoleFormatter())
	}
	terminal.SetLevel(lvl)

	if cfg.Console {
		terminal.SetOutput(writerPair{lj, os.Stdout})
	} else {
		terminal.SetOutput(lj)
	}

	if cfg.TotalSizeCap > 0 {
		logManager = NewLogManager(logDir, cfg.TotalSizeCap)
		logManager.Start()
	}

	Info("logger initialized", "level", cfg.Level, "max_size_mb", cfg.MaxSize,
		"max_backups", cfg.MaxBackups, "max_age_days", cfg.MaxAge, "compress", cfg.Compress)
}

func consoleFormatter() logrus.Formatter {
	return &logrus.TextFormatter{TimestampFormat: "2006-01-02 15:04:05", FullTimestamp: true}
}

type writerPair struct {
	a, b interface{ Write([]byte) (int, error) }
}

func (w writerPair) Write(p []byte) (int, error) {
	n, err := w.a.Write(p)
	_, _ = w.b.Write(p)
	return n, err
}

// Close stops any background log-rotation bookkeeping started by Init.
func Close() {
	if logManager != nil {
		logManager.Stop()
	}
}

// New returns a new logger whose context is ctx layered on top of the root.
func New(ctx ...interface{}) Logger { return root.New(ctx...) }

// Root returns the root logger.
func Root() Logger { return root }

func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...); os.Exit(1) }

func Tracef(format string, args ...interface{}) { root.Trace(fmt.Sprintf(format, args...)) }
func Debugf(format string, args ...interface{}) { root.Debug(fmt.Sprintf(format, args...)) }
func Infof(format string, args ...interface{})  { root.Info(fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...interface{})  { root.Warn(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...interface{}) { root.Error(fmt.Sprintf(format, args...)) }

// LogManager trims old rotated log files once the directory's total size
// exceeds totalSizeCap.
type LogManager struct {
	logDir        string
	totalSizeCap  int64
	checkInterval time.Duration
	cancel        func()
	mu            sync.Mutex
}

func NewLogManager(logDir string, totalSizeCapMB int) *LogManager {
	return &LogManager{
		logDir:        logDir,
		totalSizeCap:  int64(totalSizeCapMB) * 1024 * 1024,
		checkInterval: time.Hour,
	}
}

func (m *LogManager) Start() {
	if m.totalSizeCap <= 0 {
		return
	}
	stop := make(chan struct{})
	m.cancel = func() { close(stop) }
	go func() {
		ticker := time.NewTicker(m.checkInterval)
		defer ticker.Stop()
		m.cleanup()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.cleanup()
			}
		}
	}()
}

func (m *LogManager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *LogManager) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	files, err := m.getLogFiles()
	if err != nil {
		return
	}
	var total int64
	for _, f := range files {
		total += f.size
	}
	for total > m.totalSizeCap && len(files) > 1 {
		oldest := files[0]
		if err := os.Remove(oldest.path); err == nil {
			total -= oldest.size
			files = files[1:]
			Info("log cleanup: removed old file", "file", filepath.Base(oldest.path), "size_mb", oldest.size/1024/1024)
		} else {
			break
		}
	}
}

type logFileInfo struct {
	path    string
	size    int64
	modTime time.Time
}

func (m *LogManager) getLogFiles() ([]logFileInfo, error) {
	var files []logFileInfo
	err := filepath.Walk(m.logDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".log" || ext == ".gz" {
			files = append(files, logFileInfo{path: path, size: info.Size(), modTime: info.ModTime()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	return files, nil
}
