// internal/director/injection.go
package director

import (
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/models"
	"github.com/Corphon/DuoTalkDirector/internal/rag"
)

// 主动注入的触发模式
var (
	// 话题在要求やな使用敬体的迹象
	toneViolationPatterns = []string{"丁寧語", "敬語", "です。", "ます。", "ください"}

	// 话题在诱导あゆ用错误称呼的迹象
	addressingViolationPatterns = []string{"やなちゃん", "お姉ちゃん", "やな」", "やなを"}
)

// InjectedFact 注入到下一条提示的单条事实
type InjectedFact struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// observeRAG 评估路径上的观测性事实检索
//
// 把检索结果记成日志条目并累积到本轮的尝试列表，
// 不影响评估结论本身。
func (d *Director) observeRAG(speaker, response string) *rag.RAGLogEntry {
	if !d.ragEnabled {
		return nil
	}

	// Thought/Output 结构时只检索对外发言部分，标记匹配与 ExtractOutput 保持一致
	outputText := ExtractOutput(response)

	result := d.facts.Search(speaker, outputText)
	entry := d.facts.ToLogEntry(result)

	var triggeredBy []string
	if len(entry.BlockedProps) > 0 {
		triggeredBy = append(triggeredBy, "blocked_props")
	}
	for _, fact := range result.Facts {
		if strings.Contains(fact.Content, "使わない") {
			triggeredBy = append(triggeredBy, "prohibited_terms")
			break
		}
	}
	entry.TriggeredBy = triggeredBy
	entry.WouldInject = len(entry.BlockedProps) > 0 || containsString(triggeredBy, "prohibited_terms")

	d.ragAttempts = append(d.ragAttempts, entry)
	return &entry
}

// attachRAGSummary 把本轮全部检索尝试汇总后挂到评估结果上
func (d *Director) attachRAGSummary(evaluation models.Evaluation, ragLog *rag.RAGLogEntry) models.Evaluation {
	if ragLog == nil {
		return evaluation
	}

	sources := make(map[string]int)
	var tags []string
	totalFacts := 0

	for _, attempt := range d.ragAttempts {
		for _, fact := range attempt.Facts {
			sources[fact.Source]++
			if !containsString(tags, fact.Tag) {
				tags = append(tags, fact.Tag)
			}
			totalFacts++
		}
	}
	if len(tags) > 3 {
		tags = tags[:3]
	}

	attempts := make([]int, len(d.ragAttempts))
	for i := range attempts {
		attempts[i] = i + 1
	}

	evaluation.RAGSummary = &models.RAGSummary{
		FactsCount:      totalFacts,
		Sources:         sources,
		TopTags:         tags,
		UsedForAttempts: attempts,
	}
	return evaluation
}

// LastRAGLog 最近一次检索的日志条目
func (d *Director) LastRAGLog() *rag.RAGLogEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.ragAttempts) == 0 {
		return nil
	}
	entry := d.ragAttempts[len(d.ragAttempts)-1]
	return &entry
}

// ClearRAGAttempts 一轮完成后清空检索尝试记录
func (d *Director) ClearRAGAttempts() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ragAttempts = nil
}

// FactsForInjection 为下一条提示组装注入事实
//
// 四类触发（已拦截道具出现在话题/候选文本、敬体要求、称呼诱导、
// 禁止用语命中）任何一个命中才注入，最多3条，标签优先级
// SCENE > STYLE > REL，每个标签最多1条。判定过程记录到单槽。
func (d *Director) FactsForInjection(speaker, responseText, topic string) []InjectedFact {
	d.mu.Lock()
	defer d.mu.Unlock()

	decision := &models.InjectionDecision{}

	if !d.injectEnabled || !d.ragEnabled {
		d.lastInjection = decision
		return nil
	}

	textToCheck := responseText
	if textToCheck == "" {
		textToCheck = topic
	}

	// 触发1: 已拦截道具再次出现（前瞻检查话题文本）
	var predictedBlocked []string
	for _, prop := range d.facts.Session.BlockedProps() {
		if strings.Contains(textToCheck, prop) {
			predictedBlocked = append(predictedBlocked, prop)
		}
	}

	// 触发2: やな被要求使用敬体
	hasToneViolation := false
	if models.IsYana(speaker) && topic != "" {
		hasToneViolation = containsAny(topic, toneViolationPatterns)
	}

	// 触发3: あゆ被诱导使用错误称呼
	hasAddressingViolation := false
	if models.IsAyu(speaker) && topic != "" {
		hasAddressingViolation = containsAny(topic, addressingViolationPatterns)
	}

	// 触发4: 检索命中禁止用语
	result := d.facts.Search(speaker, textToCheck)
	hasProhibitedTerm := false
	for _, fact := range result.Facts {
		if strings.Contains(fact.Content, "使わない") {
			hasProhibitedTerm = true
			break
		}
	}

	var reasons []string
	if len(predictedBlocked) > 0 {
		reasons = append(reasons, "predicted_blocked_props")
	}
	if hasProhibitedTerm {
		reasons = append(reasons, "prohibited_terms")
	}
	if hasToneViolation {
		reasons = append(reasons, "tone_violation")
	}
	if hasAddressingViolation {
		reasons = append(reasons, "addressing_violation")
	}

	if len(reasons) == 0 {
		d.lastInjection = decision
		return nil
	}

	// 按标签分组组装
	factsByTag := map[string][]InjectedFact{}

	for _, prop := range predictedBlocked {
		factsByTag[rag.TagScene] = append(factsByTag[rag.TagScene], InjectedFact{
			Tag:  rag.TagScene,
			Text: "「" + prop + "」はSceneに存在しない。使用禁止。",
		})
	}
	if hasToneViolation {
		factsByTag[rag.TagStyle] = append(factsByTag[rag.TagStyle], InjectedFact{
			Tag:  rag.TagStyle,
			Text: "やなは「です/ます」禁止。崩して言う。",
		})
	}
	if hasAddressingViolation {
		factsByTag[rag.TagStyle] = append(factsByTag[rag.TagStyle], InjectedFact{
			Tag:  rag.TagStyle,
			Text: "あゆは「やなちゃん」禁止。代わりに「姉様」。",
		})
	}

	for _, fact := range result.Facts {
		tag := fact.Tag()
		text := fact.Content
		// 称呼禁止の汎用事実は正しい呼び方まで示す具体形に差し替える
		if strings.Contains(text, "やなちゃん") && strings.Contains(text, "使わない") {
			text = "あゆは「やなちゃん」禁止。代わりに「姉様」。"
		}
		factsByTag[tag] = append(factsByTag[tag], InjectedFact{Tag: tag, Text: text})
	}

	// SCENE > STYLE > REL の優先順で、各タグ1件・計3件まで
	var selected []InjectedFact
	for _, tag := range []string{rag.TagScene, rag.TagStyle, rag.TagRel} {
		if len(selected) >= 3 {
			break
		}
		if facts := factsByTag[tag]; len(facts) > 0 {
			selected = append(selected, facts[0])
		}
	}

	decision.WouldInject = true
	decision.Reasons = reasons
	decision.PredictedBlockedProps = predictedBlocked
	decision.DetectedAddressingViolation = hasAddressingViolation
	decision.DetectedToneViolation = hasToneViolation
	decision.FactsInjected = len(selected)
	d.lastInjection = decision

	return selected
}

// LastInjectionDecision 最近一次注入判定的详情
func (d *Director) LastInjectionDecision() *models.InjectionDecision {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastInjection
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
