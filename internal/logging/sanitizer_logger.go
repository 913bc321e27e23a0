// internal/logging/sanitizer_logger.go
package logging

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Corphon/DuoTalkDirector/internal/checks"
)

// SpeakerSanitizeStats 单个角色的净化统计
type SpeakerSanitizeStats struct {
	Replaced int `json:"replaced"`
	Removed  int `json:"removed"`
}

// SanitizerLogger 动作净化事件的记录器
//
// 每次替换/除去写一条 JSONL 记录，同时在内存里累积
// 被拦截道具的出现频度和角色别统计。
type SanitizerLogger struct {
	mu        sync.Mutex
	store     *LogStore
	propFreq  map[string]int
	bySpeaker map[string]*SpeakerSanitizeStats
}

// NewSanitizerLogger 创建净化记录器
func NewSanitizerLogger(store *LogStore) *SanitizerLogger {
	return &SanitizerLogger{
		store:     store,
		propFreq:  make(map[string]int),
		bySpeaker: make(map[string]*SpeakerSanitizeStats),
	}
}

// LogSanitize 记录一次净化结果
//
// 什么都没发生的结果（无拦截・无替换・无除去）不写日志。
func (l *SanitizerLogger) LogSanitize(turnNumber int, speaker string, result checks.SanitizeResult) {
	if !result.ActionReplaced && !result.ActionRemoved && len(result.BlockedProps) == 0 {
		return
	}

	l.mu.Lock()
	for _, prop := range result.BlockedProps {
		l.propFreq[prop]++
	}
	stats, ok := l.bySpeaker[speaker]
	if !ok {
		stats = &SpeakerSanitizeStats{}
		l.bySpeaker[speaker] = stats
	}
	if result.ActionReplaced {
		stats.Replaced++
	}
	if result.ActionRemoved {
		stats.Removed++
	}
	l.mu.Unlock()

	if l.store != nil {
		l.store.Write("sanitizer", "action_sanitized",
			zap.Int("turn", turnNumber),
			zap.String("speaker", speaker),
			zap.Bool("replaced", result.ActionReplaced),
			zap.Bool("removed", result.ActionRemoved),
			zap.Strings("blocked_props", result.BlockedProps),
			zap.String("original_action", result.OriginalAction),
		)
	}
}

// PropFrequency 被拦截道具的出现频度
func (l *SanitizerLogger) PropFrequency() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int, len(l.propFreq))
	for prop, count := range l.propFreq {
		out[prop] = count
	}
	return out
}

// SpeakerStats 角色别的净化统计
func (l *SanitizerLogger) SpeakerStats() map[string]SpeakerSanitizeStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]SpeakerSanitizeStats, len(l.bySpeaker))
	for speaker, stats := range l.bySpeaker {
		out[speaker] = *stats
	}
	return out
}
