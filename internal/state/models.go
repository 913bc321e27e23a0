// internal/state/models.go
package state

// EmotionType 从思考文本中识别的情绪类型
type EmotionType string

const (
	EmotionJoy       EmotionType = "joy"       // 喜び
	EmotionWorry     EmotionType = "worry"     // 心配
	EmotionAnnoyance EmotionType = "annoyance" // 苛立ち
	EmotionAffection EmotionType = "affection" // 愛情
	EmotionNeutral   EmotionType = "neutral"   // 中立
)

// RelationshipTone 识别的关系基调
type RelationshipTone string

const (
	ToneWarm      RelationshipTone = "warm"      // 温かい
	ToneTeasing   RelationshipTone = "teasing"   // からかい
	ToneConcerned RelationshipTone = "concerned" // 心配
	ToneDistant   RelationshipTone = "distant"   // 距離感
	ToneNeutral   RelationshipTone = "neutral"   // 中立
)

// ExtractedState 从单条思考文本提取的状态
//
// 仅用于日志和状态差分，不参与 PASS/RETRY 判定。
type ExtractedState struct {
	Emotion          EmotionType      `json:"emotion"`
	EmotionIntensity float64          `json:"emotion_intensity"`
	EmotionTarget    string           `json:"emotion_target,omitempty"`
	RelationshipTone RelationshipTone `json:"relationship_tone"`
	TopicKeywords    []string         `json:"topic_keywords,omitempty"`
	TopicInterest    float64          `json:"topic_interest"`
	Confidence       float64          `json:"confidence"`
	ExtractionMethod string           `json:"extraction_method"`
}

// NewExtractedState 默认（中立）状态
func NewExtractedState() ExtractedState {
	return ExtractedState{
		Emotion:          EmotionNeutral,
		EmotionIntensity: 0.5,
		RelationshipTone: ToneNeutral,
		TopicInterest:    0.5,
		ExtractionMethod: "signal",
	}
}

// StateDiff 相邻两轮之间的状态差分
type StateDiff struct {
	TurnNumber int    `json:"turn_number"`
	Speaker    string `json:"speaker"`

	EmotionChanged bool        `json:"emotion_changed"`
	EmotionFrom    EmotionType `json:"emotion_from,omitempty"`
	EmotionTo      EmotionType `json:"emotion_to,omitempty"`

	RelationshipChanged bool             `json:"relationship_changed"`
	RelationshipFrom    RelationshipTone `json:"relationship_from,omitempty"`
	RelationshipTo      RelationshipTone `json:"relationship_to,omitempty"`

	NewTopics []string `json:"new_topics,omitempty"`
}
