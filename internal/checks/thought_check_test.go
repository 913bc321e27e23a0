// internal/checks/thought_check_test.go
package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

func TestThoughtCheckerValidResponses(t *testing.T) {
	checker := NewThoughtChecker()

	tests := []struct {
		name     string
		response string
	}{
		{"括弧付きThought", "Thought: (Yana: あゆも起きてるかな？)\nOutput: 「おはよう！」"},
		{"日本語名のThought", "Thought: (やな: 朝から張り切ってるな)\nOutput: 「おはよう！」"},
		{"複文のThought", "Thought: (姉様の無邪気さに呆れる。でも嬉しい。)\nOutput: 「おはようございます」"},
		{"括弧なしThought", "Thought: あゆも起きてるかな\nOutput: 「おはよう」"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.Check(tt.response)
			assert.True(t, result.Passed)
			assert.Equal(t, models.StatusPass, result.Status)
		})
	}
}

func TestThoughtCheckerMissingThought(t *testing.T) {
	checker := NewThoughtChecker()

	tests := []struct {
		name     string
		response string
	}{
		{"Outputのみ", "Output: 「おはよう！」"},
		{"動作と台詞のみ", "（笑顔で）「おはよう！」"},
		{"台詞のみ", "「おはよう！」"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.Check(tt.response)
			assert.Equal(t, models.StatusRetry, result.Status)
			assert.Contains(t, result.Reason, "Thought")
		})
	}
}

func TestThoughtCheckerEmptyThought(t *testing.T) {
	checker := NewThoughtChecker()

	tests := []struct {
		name     string
		response string
	}{
		{"括弧だけ", "Thought: (\nOutput: （笑顔で）「おはよう！」"},
		{"空白のみ", "Thought:    \nOutput: （笑顔で）「おはよう！」"},
		{"改行のみ", "Thought:\nOutput: 「おはよう」"},
		{"名前だけで切れている", "Thought: (Yana:\nOutput: 「おはよう」"},
		{"日本語名で切れている", "Thought: (やな:\nOutput: 「おはよう」"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.Check(tt.response)
			assert.Equal(t, models.StatusRetry, result.Status)
		})
	}
}

func TestThoughtCheckerTruncatedThought(t *testing.T) {
	checker := NewThoughtChecker()

	result := checker.Check("Thought: (やな: あゆも起きて")
	assert.Equal(t, models.StatusRetry, result.Status)
}

func TestThoughtCheckerMissingOutput(t *testing.T) {
	checker := NewThoughtChecker()

	result := checker.Check("Thought: (やな: あゆも起きてるかな、様子を見に行こう)")
	assert.Equal(t, models.StatusRetry, result.Status)
	assert.Contains(t, result.Reason, "Output")
}

// 寛容モードでは空Thoughtを警告に格下げする
func TestThoughtCheckerRelaxedMode(t *testing.T) {
	checker := NewThoughtChecker()
	checker.Strict = false

	result := checker.Check("Thought:\nOutput: 「おはよう」")
	assert.Equal(t, models.StatusWarn, result.Status)
}
