// internal/checks/context_check.go
package checks

import (
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// やな向けの幻觉检测: あゆ的上一条发言并不毒舌时，
// やな却做出"被毒舌了"的反应 -> 文脉捏造。

// 表示"在对毒舌做反应"的触发词（出现在やな的发言中）
var toxicityReactionTriggers = []string{
	"毒舌",
	"厳しい",
	"辛辣",
	"きつい",
	"手厳しい",
}

// あゆ发言中真正算"毒舌/严厉"的信号词
var toxicKeywords = []string{
	"無駄",
	"コスト",
	"ダメ",
	"無理",
	"非効率",
	"リスク",
	"問題",
	"危険",
	"失敗",
	"間違い",
	"正気",
	"呆れ",
	"ため息",
}

// ContextChecker 文脉一致性检查器
type ContextChecker struct{}

// NewContextChecker 创建文脉检查器
func NewContextChecker() *ContextChecker {
	return &ContextChecker{}
}

// Check 检查反应与实际文脉是否一致
//
// 只检查やな的发言；且只看紧邻的上一轮（如果上一轮不是あゆ，
// 视为やな在回应更早的内容，直接放行以避免误报）。
func (cc *ContextChecker) Check(speaker, response string, history []models.Turn) models.CheckOutcome {
	ok := models.CheckOutcome{
		Name:   "context_check",
		Passed: true,
		Status: models.StatusPass,
		Reason: "OK",
	}

	if !models.IsYana(speaker) {
		return ok
	}

	hasReaction := false
	for _, trigger := range toxicityReactionTriggers {
		if strings.Contains(response, trigger) {
			hasReaction = true
			break
		}
	}
	if !hasReaction {
		return ok
	}

	lastAyu, found := lastAyuMessage(history)
	if !found {
		ok.Reason = "OK (no previous あゆ message)"
		return ok
	}

	for _, keyword := range toxicKeywords {
		if strings.Contains(lastAyu, keyword) {
			// 反应有依据
			ok.Details = map[string]any{"context_matched": true}
			return ok
		}
	}

	preview := lastAyu
	if r := []rune(preview); len(r) > 50 {
		preview = string(r[:50]) + "..."
	}
	return models.CheckOutcome{
		Name:   "context_check",
		Passed: false,
		Status: models.StatusRetry,
		Reason: "文脈エラー: 存在しない「毒舌」への反応を検出",
		Details: map[string]any{
			"suggestion":       "直前のあゆの発言は毒舌ではありません。文脈に沿った反応をしてください。",
			"last_ayu_message": preview,
		},
	}
}

// lastAyuMessage 仅当紧邻上一轮是あゆ时返回其内容
func lastAyuMessage(history []models.Turn) (string, bool) {
	if len(history) == 0 {
		return "", false
	}
	last := history[len(history)-1]
	if models.IsAyu(last.Speaker) {
		return last.Content, true
	}
	return "", false
}
