// internal/models/evaluation.go
package models

// Turn 表示对话历史中的一轮发言
type Turn struct {
	Speaker string `json:"speaker"`
	Content string `json:"content"`
}

// CheckOutcome 单个静态检查器的结果
type CheckOutcome struct {
	Name    string         `json:"name"`
	Passed  bool           `json:"passed"`
	Status  Status         `json:"status"`
	Reason  string         `json:"reason"`
	Details map[string]any `json:"details,omitempty"`
}

// Suggestion 从 Details 中取出改进建议文本（没有则返回空串）
func (c CheckOutcome) Suggestion() string {
	if c.Details == nil {
		return ""
	}
	if s, ok := c.Details["suggestion"].(string); ok {
		return s
	}
	return ""
}

// Evaluation 一次发言评估的完整结果
type Evaluation struct {
	Status       Status      `json:"status"`
	Reason       string      `json:"reason"`
	Suggestion   string      `json:"suggestion,omitempty"`
	ChecksPassed []string    `json:"checks_passed"`
	ChecksFailed []string    `json:"checks_failed"`
	Score        *Score      `json:"llm_score,omitempty"`
	RAGSummary   *RAGSummary `json:"rag_summary,omitempty"`
}

// RAGSummary 附加在评估结果上的事实使用概要
// 只记录统计信息，不重复事实内容本身
type RAGSummary struct {
	FactsCount      int            `json:"facts_count"`
	Sources         map[string]int `json:"sources"`
	TopTags         []string       `json:"top_tags"`
	UsedForAttempts []int          `json:"used_for_attempts"`
}

// InjectionDecision 记录"是否向下一条提示注入事实"的判定过程
// 只保留最近一次判定（单槽记忆）
type InjectionDecision struct {
	WouldInject                 bool     `json:"would_inject"`
	Reasons                     []string `json:"reasons"`
	PredictedBlockedProps       []string `json:"predicted_blocked_props"`
	DetectedAddressingViolation bool     `json:"detected_addressing_violation"`
	DetectedToneViolation       bool     `json:"detected_tone_violation"`
	FactsInjected               int      `json:"facts_injected"`
}
