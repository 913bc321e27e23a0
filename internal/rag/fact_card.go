// internal/rag/fact_card.go
package rag

import (
	"fmt"
	"strings"

	apperrors "github.com/Corphon/DuoTalkDirector/internal/errors"
)

// 事实卡约束
const (
	MaxFactLength = 50 // content 最大字符数（rune）
	MaxFactCount  = 3  // 单次检索返回的事实上限
)

// 事实来源
const (
	SourcePersona = "persona" // 角色静态设定
	SourceSession = "session" // 会话动态记忆
)

// 事实标签
const (
	TagScene = "SCENE" // 场景/道具相关
	TagStyle = "STYLE" // 口调/用语相关
	TagRel   = "REL"   // 称呼/关系相关
)

// FactCard 单条检索事实
//
// content 不超过50字符，priority 1-4（1最高），confidence 0.0-1.0。
type FactCard struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Priority   int     `json:"priority"`
	Confidence float64 `json:"confidence"`
}

// NewFactCard 创建并校验事实卡
func NewFactCard(content, source string, priority int, confidence float64) (FactCard, error) {
	if n := len([]rune(content)); n > MaxFactLength {
		return FactCard{}, apperrors.NewValidationError(
			fmt.Sprintf("fact content exceeds %d chars: %d chars", MaxFactLength, n), nil)
	}
	if priority < 1 || priority > 4 {
		return FactCard{}, apperrors.NewValidationError(
			fmt.Sprintf("priority must be 1-4, got %d", priority), nil)
	}
	if confidence < 0.0 || confidence > 1.0 {
		return FactCard{}, apperrors.NewValidationError(
			fmt.Sprintf("confidence must be 0.0-1.0, got %g", confidence), nil)
	}
	return FactCard{
		Content:    content,
		Source:     source,
		Priority:   priority,
		Confidence: confidence,
	}, nil
}

// Key 会话级去重键（source+content）
func (f FactCard) Key() string {
	return f.Source + ":" + f.Content
}

// Tag 根据内容形态归类标签
func (f FactCard) Tag() string {
	switch {
	case strings.Contains(f.Content, "Sceneに存在しない"),
		strings.Contains(f.Content, "Sceneにある物"),
		strings.Contains(f.Content, "Sceneには"),
		strings.Contains(f.Content, "現在の話題"):
		return TagScene
	case strings.Contains(f.Content, "と呼ぶ"):
		return TagRel
	default:
		// 禁止用语（「…を使わない」）と話し方はともに口调类
		return TagStyle
	}
}

func (f FactCard) String() string {
	return "FACT: " + f.Content
}

// RAGResult 一次检索的汇总结果
type RAGResult struct {
	Facts           []FactCard `json:"facts"`
	QueryTimeMS     float64    `json:"query_time_ms"`
	SourcesSearched []string   `json:"sources_searched"`
}

// AddFact 追加事实，超过上限时拒绝
func (r *RAGResult) AddFact(fact FactCard) bool {
	if len(r.Facts) >= MaxFactCount {
		return false
	}
	r.Facts = append(r.Facts, fact)
	return true
}

// HasFacts 是否检索到任何事实
func (r *RAGResult) HasFacts() bool {
	return len(r.Facts) > 0
}

// FactString 日志用的 FACT: 格式串
func (r *RAGResult) FactString() string {
	lines := make([]string, 0, len(r.Facts))
	for _, f := range r.Facts {
		lines = append(lines, f.String())
	}
	return strings.Join(lines, "\n")
}
