// internal/state/extractor_test.go
package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

func TestExtractEmptyThought(t *testing.T) {
	extractor := NewExtractor()

	st := extractor.Extract("   ", models.SpeakerYana)
	assert.Equal(t, EmotionNeutral, st.Emotion)
	assert.Equal(t, ToneNeutral, st.RelationshipTone)
	assert.InDelta(t, 0.0, st.Confidence, 1e-9)
}

func TestExtractTypicalCombinations(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		name    string
		thought string
		speaker string
		emotion EmotionType
		tone    RelationshipTone
	}{
		{
			"喜び+温かさ",
			"嬉しい。姉様と一緒に進められるのが最高。ありがとう。",
			models.SpeakerAyu,
			EmotionJoy, ToneWarm,
		},
		{
			"心配+気遣い",
			"大丈夫かな…。心配だけど、姉様のことは放っておけない。",
			models.SpeakerAyu,
			EmotionWorry, ToneConcerned,
		},
		{
			"苛立ち+距離感",
			"はぁ……また始まった。正直うんざり。距離を取りたい。",
			models.SpeakerAyu,
			EmotionAnnoyance, ToneDistant,
		},
		{
			"愛情+温かさ",
			"姉様って本当に大切。守りたいって思う。",
			models.SpeakerAyu,
			EmotionAffection, ToneWarm,
		},
		{
			"からかいのみ",
			"ふふ、相変わらずだね。",
			models.SpeakerAyu,
			EmotionNeutral, ToneTeasing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := extractor.Extract(tt.thought, tt.speaker)
			assert.Equal(t, tt.emotion, st.Emotion)
			assert.Equal(t, tt.tone, st.RelationshipTone)
		})
	}
}

func TestExtractNegationGuard(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		name    string
		thought string
		emotion EmotionType
	}{
		{"後置否定", "嬉しくない。全然最高でもない。", EmotionNeutral},
		{"全然+否定形", "全然嬉しくない。", EmotionNeutral},
		{"でもない", "最高でもない。", EmotionNeutral},
		// 「全然」は口語では強調にも使われるため前置否定には含めない
		{"全然の強調用法", "全然最高！", EmotionJoy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := extractor.Extract(tt.thought, models.SpeakerYana)
			assert.Equal(t, tt.emotion, st.Emotion)
		})
	}
}

// 信号数が同数のときは優先順位 AFFECTION > JOY > WORRY > ANNOYANCE
func TestExtractEmotionPriorityTieBreak(t *testing.T) {
	extractor := NewExtractor()

	// JOY 1件 vs WORRY 1件 -> JOY
	st := extractor.Extract("やった！でも大丈夫かな…。", models.SpeakerYana)
	assert.Equal(t, EmotionJoy, st.Emotion)
	assert.Equal(t, ToneConcerned, st.RelationshipTone)

	// AFFECTION 1件 vs JOY 1件 -> AFFECTION
	st = extractor.Extract("可愛いなあ。面白い子だ。", models.SpeakerYana)
	assert.Equal(t, EmotionAffection, st.Emotion)
}

// 信号数が多い方が優先順位に勝つ
func TestExtractEmotionCountBeatsPriority(t *testing.T) {
	extractor := NewExtractor()

	// WORRY 2件（困る, どうしよう） vs ANNOYANCE 1件（面倒） -> WORRY
	st := extractor.Extract("それは困るな。面倒だけど、どうしようもない。", models.SpeakerYana)
	assert.Equal(t, EmotionWorry, st.Emotion)
	assert.Equal(t, ToneNeutral, st.RelationshipTone)
}

func TestExtractIntensityModifiers(t *testing.T) {
	extractor := NewExtractor()

	strong := extractor.Extract("本当に嬉しい！", models.SpeakerYana)
	weak := extractor.Extract("ちょっと嬉しい", models.SpeakerYana)
	assert.Greater(t, strong.EmotionIntensity, weak.EmotionIntensity)

	// 範囲は常に [0,1]
	assert.LessOrEqual(t, strong.EmotionIntensity, 1.0)
	assert.GreaterOrEqual(t, weak.EmotionIntensity, 0.0)
}

func TestExtractTarget(t *testing.T) {
	extractor := NewExtractor()

	st := extractor.Extract("あゆも起きてるかな", models.SpeakerYana)
	assert.Equal(t, "あゆ", st.EmotionTarget)

	st = extractor.Extract("姉様はいつも元気そう", models.SpeakerAyu)
	assert.Equal(t, "姉様", st.EmotionTarget)

	st = extractor.Extract("今日はいい天気", models.SpeakerYana)
	assert.Empty(t, st.EmotionTarget)
}

func TestExtractConfidence(t *testing.T) {
	extractor := NewExtractor()

	neutral := extractor.Extract("そうか。", models.SpeakerYana)
	assert.InDelta(t, 0.2, neutral.Confidence, 1e-9)

	strong := extractor.Extract("嬉しい！楽しいし最高！", models.SpeakerYana)
	assert.Greater(t, strong.Confidence, neutral.Confidence)
}

func TestExtractDiff(t *testing.T) {
	extractor := NewExtractor()

	prev := extractor.Extract("嬉しい！最高！", models.SpeakerYana)
	curr := extractor.Extract("心配だな…大丈夫かな", models.SpeakerYana)

	diff := extractor.ExtractDiff(curr, &prev, 3, models.SpeakerYana)
	assert.Equal(t, 3, diff.TurnNumber)
	assert.True(t, diff.EmotionChanged)
	assert.Equal(t, EmotionJoy, diff.EmotionFrom)
	assert.Equal(t, EmotionWorry, diff.EmotionTo)
	assert.True(t, diff.RelationshipChanged)
}

// 会話の最初のターンは比較対象が無いので変化なし
func TestExtractDiffFirstTurn(t *testing.T) {
	extractor := NewExtractor()

	curr := extractor.Extract("嬉しい！", models.SpeakerYana)
	diff := extractor.ExtractDiff(curr, nil, 0, models.SpeakerYana)
	assert.False(t, diff.EmotionChanged)
	assert.False(t, diff.RelationshipChanged)
	assert.Empty(t, diff.NewTopics)
}
