// internal/logging/log_store.go
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogStore 会话级 JSONL 日志存储
//
// 每个会话一个目录（session_<id>/），每种日志类型一个 .jsonl 文件。
// 通过构造函数注入到使用方，不提供全局单例。
type LogStore struct {
	mu        sync.Mutex
	dir       string
	sessionID string
	loggers   map[string]*zap.Logger
	files     []*os.File
}

// NewLogStore 在 logDir 下创建会话日志目录
func NewLogStore(logDir string) (*LogStore, error) {
	sessionID := uuid.NewString()[:8]
	dir := filepath.Join(logDir, "session_"+sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &LogStore{
		dir:       dir,
		sessionID: sessionID,
		loggers:   make(map[string]*zap.Logger),
	}, nil
}

// SessionID 当前会话标识
func (s *LogStore) SessionID() string {
	return s.sessionID
}

// Dir 会话日志目录
func (s *LogStore) Dir() string {
	return s.dir
}

// Write 向指定类型的日志文件追加一条 JSON 记录
func (s *LogStore) Write(logType, event string, fields ...zap.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger, err := s.loggerFor(logType)
	if err != nil {
		return err
	}
	logger.Info(event, fields...)
	return nil
}

// loggerFor 按日志类型懒加载 zap logger（调用方需持有锁）
func (s *LogStore) loggerFor(logType string) (*zap.Logger, error) {
	if logger, ok := s.loggers[logType]; ok {
		return logger, nil
	}

	path := filepath.Join(s.dir, logType+".jsonl")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.MessageKey = "event"

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(file),
		zapcore.InfoLevel,
	)
	logger := zap.New(core).With(zap.String("session_id", s.sessionID))

	s.loggers[logType] = logger
	s.files = append(s.files, file)
	return logger, nil
}

// Close 同步并关闭全部日志文件
func (s *LogStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, logger := range s.loggers {
		if err := logger.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, file := range s.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.loggers = make(map[string]*zap.Logger)
	s.files = nil
	return firstErr
}
