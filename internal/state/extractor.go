// internal/state/extractor.go
package state

import (
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// 情绪优先级（数值越大越优先）
var emotionPriority = map[EmotionType]int{
	EmotionAffection: 4,
	EmotionJoy:       3,
	EmotionWorry:     2,
	EmotionAnnoyance: 1,
	EmotionNeutral:   0,
}

// 情绪的固定遍历顺序
var emotionOrder = []EmotionType{
	EmotionJoy, EmotionWorry, EmotionAnnoyance, EmotionAffection,
}

// Extractor 基于信号辞典的轻量状态提取器
//
// 不依赖 LLM 和形态素解析，只做辞典匹配；输出仅供日志
// 和状态差分使用。
type Extractor struct{}

// NewExtractor 创建状态提取器
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract 从单条思考文本提取状态
func (e *Extractor) Extract(thought, speaker string) ExtractedState {
	if strings.TrimSpace(thought) == "" {
		st := NewExtractedState()
		st.Confidence = 0.0
		return st
	}

	emotion, signalCount := detectEmotion(thought)
	intensity := calculateIntensity(thought, signalCount)

	return ExtractedState{
		Emotion:          emotion,
		EmotionIntensity: intensity,
		EmotionTarget:    detectTarget(thought, speaker),
		RelationshipTone: detectRelationship(thought),
		TopicInterest:    calculateTopicInterest(intensity, emotion),
		Confidence:       calculateConfidence(signalCount, emotion),
		ExtractionMethod: "signal",
	}
}

// ExtractDiff 计算相邻两轮的状态差分
//
// previous 为 nil 表示会话首轮，不报告任何变化。
func (e *Extractor) ExtractDiff(current ExtractedState, previous *ExtractedState, turnNumber int, speaker string) StateDiff {
	diff := StateDiff{TurnNumber: turnNumber, Speaker: speaker}
	if previous == nil {
		return diff
	}

	if current.Emotion != previous.Emotion {
		diff.EmotionChanged = true
		diff.EmotionFrom = previous.Emotion
		diff.EmotionTo = current.Emotion
	}
	if current.RelationshipTone != previous.RelationshipTone {
		diff.RelationshipChanged = true
		diff.RelationshipFrom = previous.RelationshipTone
		diff.RelationshipTo = current.RelationshipTone
	}

	prevKeywords := make(map[string]struct{}, len(previous.TopicKeywords))
	for _, kw := range previous.TopicKeywords {
		prevKeywords[kw] = struct{}{}
	}
	for _, kw := range current.TopicKeywords {
		if _, ok := prevKeywords[kw]; !ok {
			diff.NewTopics = append(diff.NewTopics, kw)
		}
	}

	return diff
}

// detectEmotion 识别主情绪和信号计数
//
// 带否定判定计数；计数相同时按固定优先级取胜。
func detectEmotion(thought string) (EmotionType, int) {
	best := EmotionNeutral
	bestCount := 0

	for _, emotion := range emotionOrder {
		count := countSignalMatches(thought, emotionSignals[emotion])
		if count == 0 {
			continue
		}
		switch {
		case count > bestCount:
			best = emotion
			bestCount = count
		case count == bestCount && emotionPriority[emotion] > emotionPriority[best]:
			best = emotion
		}
	}

	return best, bestCount
}

// calculateIntensity 基于信号数和修饰词计算情绪强度
func calculateIntensity(thought string, signalCount int) float64 {
	base := 0.5 + float64(signalCount)*0.1
	if base > 0.8 {
		base = 0.8
	}

	boost := 0
	for _, b := range intensityBoosters {
		if strings.Contains(thought, b) {
			boost++
		}
	}
	reduce := 0
	for _, r := range intensityReducers {
		if strings.Contains(thought, r) {
			reduce++
		}
	}

	intensity := base + float64(boost)*0.1 - float64(reduce)*0.1
	if intensity < 0.0 {
		return 0.0
	}
	if intensity > 1.0 {
		return 1.0
	}
	return intensity
}

// detectTarget 识别情绪指向的角色（排除自我指称）
func detectTarget(thought, speaker string) string {
	for _, ref := range characterReferences {
		for _, pattern := range ref.patterns {
			if !strings.Contains(thought, pattern) {
				continue
			}
			switch {
			case ref.target == "姉様" && models.IsAyu(speaker):
				return "姉様"
			case ref.target == "あゆ" && models.IsYana(speaker):
				return "あゆ"
			case ref.target != speaker:
				return ref.target
			}
		}
	}
	return ""
}

// detectRelationship 识别关系基调
//
// 计数最高者胜；并列时按固定顺序先到者胜。
func detectRelationship(thought string) RelationshipTone {
	best := ToneNeutral
	bestCount := 0

	for _, tone := range relationshipToneOrder {
		count := countSignalMatches(thought, relationshipSignals[tone])
		if count > bestCount {
			best = tone
			bestCount = count
		}
	}

	return best
}

// calculateTopicInterest 基于情绪推算话题兴趣度
func calculateTopicInterest(intensity float64, emotion EmotionType) float64 {
	switch emotion {
	case EmotionJoy, EmotionAffection:
		interest := 0.5 + intensity*0.5
		if interest > 1.0 {
			return 1.0
		}
		return interest
	case EmotionWorry:
		return 0.5
	case EmotionAnnoyance:
		interest := 0.5 - intensity*0.3
		if interest < 0.2 {
			return 0.2
		}
		return interest
	default:
		return 0.5
	}
}

// calculateConfidence 基于信号数计算提取置信度
func calculateConfidence(signalCount int, emotion EmotionType) float64 {
	if emotion == EmotionNeutral && signalCount == 0 {
		return 0.2
	}
	confidence := 0.3 + float64(signalCount)*0.2
	if confidence > 1.0 {
		return 1.0
	}
	return confidence
}
