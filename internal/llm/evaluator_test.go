// internal/llm/evaluator_test.go
package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// mockClient 固定応答を返すテスト用バックエンド
type mockClient struct {
	response string
	err      error
	prompts  []string
}

func (m *mockClient) Generate(_ context.Context, prompt string, _ int) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockClient) IsAvailable(context.Context) bool { return m.err == nil }

const validScoreJSON = `{
  "character_consistency": 0.9,
  "topic_novelty": 0.7,
  "relationship_quality": 0.8,
  "naturalness": 0.85,
  "concreteness": 0.6,
  "overall_score": 0.78,
  "issues": [],
  "strengths": ["口調が安定している"]
}`

func TestScorerParsesValidJSON(t *testing.T) {
	client := &mockClient{response: validScoreJSON}
	scorer := NewScorer(client)

	score := scorer.EvaluateSingleTurn(context.Background(), models.SpeakerYana, "「おはよう」", nil)
	assert.InDelta(t, 0.9, score.CharacterConsistency, 1e-9)
	assert.InDelta(t, 0.7, score.TopicNovelty, 1e-9)
	assert.InDelta(t, 0.8, score.RelationshipQuality, 1e-9)
	assert.InDelta(t, 0.85, score.Naturalness, 1e-9)
	assert.InDelta(t, 0.6, score.Concreteness, 1e-9)
	require.NotNil(t, score.Overall)
	assert.InDelta(t, 0.78, *score.Overall, 1e-9)
	assert.Equal(t, []string{"口調が安定している"}, score.Strengths)
}

// JSON の前後に説明文が付いていても抽出できる
func TestScorerExtractsJSONWithSurroundingText(t *testing.T) {
	client := &mockClient{response: "評価結果は以下の通りです。\n" + validScoreJSON + "\n以上です。"}
	scorer := NewScorer(client)

	score := scorer.EvaluateSingleTurn(context.Background(), models.SpeakerAyu, "「おはようございます」", nil)
	assert.InDelta(t, 0.9, score.CharacterConsistency, 1e-9)
}

func TestScorerClampsOutOfRangeValues(t *testing.T) {
	client := &mockClient{response: `{
		"character_consistency": 1.5,
		"topic_novelty": -0.3,
		"relationship_quality": 0.5,
		"naturalness": 0.5,
		"concreteness": 0.5
	}`}
	scorer := NewScorer(client)

	score := scorer.EvaluateSingleTurn(context.Background(), models.SpeakerYana, "x", nil)
	assert.InDelta(t, 1.0, score.CharacterConsistency, 1e-9)
	assert.InDelta(t, 0.0, score.TopicNovelty, 1e-9)
}

// overall_score が無い場合は nil のまま（加重平均で代替される）
func TestScorerMissingOverallIsNil(t *testing.T) {
	client := &mockClient{response: `{
		"character_consistency": 0.8,
		"topic_novelty": 0.8,
		"relationship_quality": 0.8,
		"naturalness": 0.8,
		"concreteness": 0.8
	}`}
	scorer := NewScorer(client)

	score := scorer.EvaluateSingleTurn(context.Background(), models.SpeakerYana, "x", nil)
	assert.Nil(t, score.Overall)
	assert.InDelta(t, 0.8, score.OverallScore(), 1e-9)
}

func TestScorerMissingFieldsDefaultToNeutral(t *testing.T) {
	client := &mockClient{response: `{"character_consistency": 0.9}`}
	scorer := NewScorer(client)

	score := scorer.EvaluateSingleTurn(context.Background(), models.SpeakerYana, "x", nil)
	assert.InDelta(t, 0.9, score.CharacterConsistency, 1e-9)
	assert.InDelta(t, 0.5, score.TopicNovelty, 1e-9)
	assert.InDelta(t, 0.5, score.Concreteness, 1e-9)
}

func TestScorerGenerationErrorFallsBack(t *testing.T) {
	client := &mockClient{err: errors.New("connection refused")}
	scorer := NewScorer(client)

	score := scorer.EvaluateSingleTurn(context.Background(), models.SpeakerYana, "x", nil)
	assert.InDelta(t, 0.5, score.CharacterConsistency, 1e-9)
	require.NotEmpty(t, score.Issues)
	assert.Contains(t, score.Issues[0], "LLM evaluation error")
}

func TestScorerGarbageResponseFallsBack(t *testing.T) {
	client := &mockClient{response: "JSONではない自由形式の回答です。"}
	scorer := NewScorer(client)

	score := scorer.EvaluateSingleTurn(context.Background(), models.SpeakerYana, "x", nil)
	assert.InDelta(t, 0.5, score.CharacterConsistency, 1e-9)
	require.NotEmpty(t, score.Issues)
	assert.Contains(t, score.Issues[0], "JSON parse error")
}

func TestBuildEvaluationPrompt(t *testing.T) {
	history := []models.Turn{
		{Speaker: models.SpeakerYana, Content: "「おはよう」"},
		{Speaker: models.SpeakerAyu, Content: "「おはようございます、姉様」"},
	}
	prompt := BuildEvaluationPrompt(models.SpeakerAyu, "「今日は映画を観に行きましょう」", history)

	assert.Contains(t, prompt, "あゆ: 「今日は映画を観に行きましょう」")
	assert.Contains(t, prompt, "やな: 「おはよう」")
	assert.Contains(t, prompt, "character_consistency")
	assert.NotContains(t, prompt, "（会話開始）")
}

func TestFormatHistoryEmpty(t *testing.T) {
	assert.Equal(t, "（会話開始）", FormatHistory(nil))
}

func TestFormatHistoryOrder(t *testing.T) {
	history := []models.Turn{
		{Speaker: "やな", Content: "a"},
		{Speaker: "あゆ", Content: "b"},
	}
	formatted := FormatHistory(history)
	assert.True(t, strings.Index(formatted, "やな: a") < strings.Index(formatted, "あゆ: b"))
}
