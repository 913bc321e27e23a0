// internal/logging/thought_logger.go
package logging

import (
	"go.uber.org/zap"

	"github.com/Corphon/DuoTalkDirector/internal/state"
)

// ThoughtLogger 思考文本与抽取状态的记录器
//
// 每轮一条 JSONL 记录，思考原文和信号抽取结果一起落盘，
// 供会话后的表现分析使用。
type ThoughtLogger struct {
	store *LogStore
}

// NewThoughtLogger 创建思考记录器
func NewThoughtLogger(store *LogStore) *ThoughtLogger {
	return &ThoughtLogger{store: store}
}

// LogThought 记录一轮的思考内容和抽取状态
func (l *ThoughtLogger) LogThought(turnNumber int, speaker, thought string, extracted state.ExtractedState) {
	if l.store == nil || thought == "" {
		return
	}

	l.store.Write("thoughts", "thought_recorded",
		zap.Int("turn", turnNumber),
		zap.String("speaker", speaker),
		zap.String("thought", thought),
		zap.String("emotion", string(extracted.Emotion)),
		zap.Float64("emotion_intensity", extracted.EmotionIntensity),
		zap.String("target", extracted.EmotionTarget),
		zap.String("relationship", string(extracted.RelationshipTone)),
		zap.Float64("topic_interest", extracted.TopicInterest),
		zap.Float64("confidence", extracted.Confidence),
	)
}
