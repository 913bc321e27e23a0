// internal/checks/suite_test.go
package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

func TestSuiteGoodResponsePasses(t *testing.T) {
	suite := NewStaticCheckSuite()

	response := "Thought: (やな: あゆの提案、乗ってみようかな)\nOutput: 「いいね、それで行こう！」"
	eval := suite.Evaluate(models.SpeakerYana, response, nil)
	assert.Equal(t, models.StatusPass, eval.Status)
	assert.Equal(t, "OK", eval.Reason)
	assert.Len(t, eval.ChecksPassed, 6)
	assert.Empty(t, eval.ChecksFailed)
}

// 順序保証: thought_check が落ちたら他の検査名は一切現れない
func TestSuiteThoughtFailureShortCircuits(t *testing.T) {
	suite := NewStaticCheckSuite()

	eval := suite.Evaluate(models.SpeakerYana, "「おはよう！」", nil)
	assert.Equal(t, models.StatusRetry, eval.Status)
	assert.Empty(t, eval.ChecksPassed)
	assert.Equal(t, []string{"thought_check"}, eval.ChecksFailed)
}

// 口調違反で中断した時点で、後続の検査名は passed/failed のどちらにも無い
func TestSuiteToneFailureStopsRemaining(t *testing.T) {
	suite := NewStaticCheckSuite()

	response := "Thought: (やな: 丁寧に答えよう)\nOutput: 「これは面白いです。」"
	eval := suite.Evaluate(models.SpeakerYana, response, nil)
	assert.Equal(t, models.StatusRetry, eval.Status)
	assert.Equal(t, []string{"thought_check"}, eval.ChecksPassed)
	assert.Equal(t, []string{"tone_check"}, eval.ChecksFailed)
	assert.NotContains(t, eval.ChecksPassed, "format_check")
}

func TestSuiteWarningsConcatenated(t *testing.T) {
	suite := NewStaticCheckSuite()

	// 感嘆符過多（tone WARN）+ 6行（format WARN）
	response := "Thought: (やな: テンション上げていこう)\n" +
		"Output: すごい！\nやばい！\n最高！\nこれは！\nほんとに！\nびっくりだよ"
	eval := suite.Evaluate(models.SpeakerYana, response, nil)
	assert.Equal(t, models.StatusWarn, eval.Status)
	assert.Contains(t, eval.Reason, "警告:")
	assert.Contains(t, eval.Reason, "感嘆符")
	assert.Contains(t, eval.Reason, "行")
	assert.Equal(t, "次のターンで改善してください", eval.Suggestion)
	assert.Len(t, eval.ChecksPassed, 6)
}

func TestSuiteRetryCarriesSuggestion(t *testing.T) {
	suite := NewStaticCheckSuite()

	eval := suite.Evaluate(models.SpeakerYana, "「おはよう」", nil)
	assert.Equal(t, models.StatusRetry, eval.Status)
	assert.NotEmpty(t, eval.Suggestion)
}

func TestSuiteContextUsesHistory(t *testing.T) {
	suite := NewStaticCheckSuite()

	history := []models.Turn{
		{Speaker: models.SpeakerAyu, Content: "「映画を観に行くのはいかがでしょうか」"},
	}
	response := "Thought: (やな: また言われた気がする)\nOutput: 「あゆって本当に毒舌だよね」"
	eval := suite.Evaluate(models.SpeakerYana, response, history)
	assert.Equal(t, models.StatusRetry, eval.Status)
	assert.Equal(t, []string{"context_check"}, eval.ChecksFailed)
	assert.Contains(t, eval.ChecksPassed, "tone_check")
}
