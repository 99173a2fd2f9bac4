// pattern: Imperative Shell

package logging

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds configuration for the Manager.
type Config struct {
	FilePath       string // Log file path
	MaxSizeMB      int    // Rotate after this many MB (default 5)
	MaxBackups     int    // Rotated files to keep (default 3)
	MaxAgeDays     int    // Days to keep rotated files (default 14)
	Level          string // debug, info, warn, error (default info)
	ChannelBufSize int    // Entries buffered for the TUI log panel (default 500)
}

func (c *Config) applyDefaults() {
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 5
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 14
	}
	if c.ChannelBufSize == 0 {
		c.ChannelBufSize = 500
	}
}

// scopes caches one ScopedLogger per scope name.
type scopes struct {
	base    *zap.Logger
	level   zapcore.Level
	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

func (s *scopes) get(scope string) *ScopedLogger {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.loggers[scope]; ok {
		return l
	}
	l := newScopedLogger(s.base, s.level, scope)
	s.loggers[scope] = l
	return l
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.EpochTimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// Manager writes JSON logs to a rotated file and mirrors them into a
// ChannelSink the TUI drains.
type Manager struct {
	*scopes
	sink *ChannelSink
	file *lumberjack.Logger
}

// NewManager creates a Manager. FilePath is required.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("logging: FilePath is required")
	}
	cfg.applyDefaults()

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level = zapcore.InfoLevel
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	sink := NewChannelSink(cfg.ChannelBufSize)

	core := zapcore.NewTee(
		zapcore.NewCore(jsonEncoder(), zapcore.AddSync(file), level),
		zapcore.NewCore(jsonEncoder(), zapcore.AddSync(sink), level),
	)

	return &Manager{
		scopes: &scopes{base: zap.New(core), level: level, loggers: make(map[string]*ScopedLogger)},
		sink:   sink,
		file:   file,
	}, nil
}

// For returns the cached logger for scope.
func (m *Manager) For(scope string) *ScopedLogger {
	return m.get(scope)
}

// Entries returns the channel of mirrored log entries.
func (m *Manager) Entries() <-chan LogEntry {
	return m.sink.Entries()
}

// Sync flushes buffered output.
func (m *Manager) Sync() error {
	return m.base.Sync()
}

// Close flushes and releases the log file and the entry channel.
func (m *Manager) Close() error {
	_ = m.Sync()
	_ = m.sink.Close()
	return m.file.Close()
}

// TestLogManager only writes to a channel, at debug level, for assertions
// in tests.
type TestLogManager struct {
	*scopes
	sink *ChannelSink
}

// NewTestLogManager creates a TestLogManager buffering up to bufferSize entries.
func NewTestLogManager(bufferSize int) *TestLogManager {
	sink := NewChannelSink(bufferSize)
	core := zapcore.NewCore(jsonEncoder(), zapcore.AddSync(sink), zapcore.DebugLevel)
	return &TestLogManager{
		scopes: &scopes{base: zap.New(core), level: zapcore.DebugLevel, loggers: make(map[string]*ScopedLogger)},
		sink:   sink,
	}
}

func (m *TestLogManager) For(scope string) *ScopedLogger {
	return m.get(scope)
}

// Entries returns the channel of captured entries.
func (m *TestLogManager) Entries() <-chan LogEntry {
	return m.sink.Entries()
}

func (m *TestLogManager) Close() error {
	return m.sink.Close()
}
