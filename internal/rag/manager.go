// internal/rag/manager.go
package rag

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// FactStore 统一事实检索入口
//
// 组合角色设定源和会话记忆源，负责优先级排序、标签配额
// 和会话级去重，保证单次检索最多返回3条事实。
type FactStore struct {
	Persona *PersonaSource
	Session *SessionSource

	enabled bool

	// 会话级已呈现事实缓存: speaker -> fact key 集合。
	// 命中缓存的事实被抑制，除非其标签本回合被主动触发
	// （当前违规绝不能被去重缓存吞掉）。
	seenFacts map[string]map[string]struct{}
}

// NewFactStore 创建事实库
func NewFactStore(persona *PersonaSource, session *SessionSource) *FactStore {
	return &FactStore{
		Persona:   persona,
		Session:   session,
		enabled:   true,
		seenFacts: make(map[string]map[string]struct{}),
	}
}

// SetEnabled 开关检索功能（关闭时返回空结果）
func (fs *FactStore) SetEnabled(enabled bool) {
	fs.enabled = enabled
}

// Enabled 当前是否启用
func (fs *FactStore) Enabled() bool {
	return fs.enabled
}

// SetSceneContext 透传场景上下文到会话源
func (fs *FactStore) SetSceneContext(ctx SceneContext) {
	fs.Session.SetSceneContext(ctx)
}

// AddBlockedProp 透传被拦截道具到会话源
func (fs *FactStore) AddBlockedProp(prop string) {
	fs.Session.AddBlockedProp(prop)
}

// AddTopic 透传话题到会话源
func (fs *FactStore) AddTopic(topic string) {
	fs.Session.AddTopic(topic)
}

// Search 从两个事实源检索并合并
//
// 合并约束（同时生效）:
//  1. 每个标签（SCENE/STYLE/REL）每次最多1条
//  2. 同一结果内不允许字面相同的内容
//  3. 会话级去重: 对同一说话者呈现过的事实被抑制，
//     除非其标签本回合被主动触发（拦截道具命中强制放行 SCENE，
//     禁止用语命中强制放行 STYLE）
func (fs *FactStore) Search(speaker, responseText string) RAGResult {
	start := time.Now()
	result := RAGResult{
		SourcesSearched: []string{SourcePersona, SourceSession},
	}

	if !fs.enabled {
		result.QueryTimeMS = float64(time.Since(start).Microseconds()) / 1000.0
		return result
	}

	personaFacts := fs.Persona.Search(speaker, responseText, MaxFactCount)
	sessionFacts := fs.Session.Search(speaker, responseText, MaxFactCount)

	all := make([]FactCard, 0, len(personaFacts)+len(sessionFacts))
	all = append(all, personaFacts...)
	all = append(all, sessionFacts...)
	sortFacts(all)

	triggered := triggeredTags(all)
	selected := fs.selectFacts(speaker, all, triggered)

	for _, fact := range selected {
		result.AddFact(fact)
	}
	result.QueryTimeMS = float64(time.Since(start).Microseconds()) / 1000.0
	return result
}

// triggeredTags 判定本回合被主动触发的标签
//
// priority 1 的事实代表当前实际违规: 被拦截道具再现 -> SCENE，
// 禁止用语命中 -> STYLE。
func triggeredTags(facts []FactCard) map[string]bool {
	triggered := make(map[string]bool)
	for _, f := range facts {
		if f.Priority != 1 {
			continue
		}
		triggered[f.Tag()] = true
	}
	return triggered
}

// selectFacts 在三重约束下选取事实
func (fs *FactStore) selectFacts(speaker string, facts []FactCard, triggered map[string]bool) []FactCard {
	seen := fs.seenFacts[speaker]
	if seen == nil {
		seen = make(map[string]struct{})
		fs.seenFacts[speaker] = seen
	}

	usedTags := make(map[string]bool)
	usedContents := make(map[string]bool)
	var selected []FactCard

	for _, fact := range facts {
		if len(selected) >= MaxFactCount {
			break
		}

		tag := fact.Tag()
		if usedTags[tag] {
			continue
		}
		if usedContents[fact.Content] {
			continue
		}

		// 会话级去重，被触发的标签强制放行
		if _, shown := seen[fact.Key()]; shown && !triggered[tag] {
			continue
		}

		usedTags[tag] = true
		usedContents[fact.Content] = true
		seen[fact.Key()] = struct{}{}
		selected = append(selected, fact)
	}
	return selected
}

// ResetSession 新会话开始时清空会话记忆和去重缓存
func (fs *FactStore) ResetSession() {
	fs.Session.Reset()
	fs.seenFacts = make(map[string]map[string]struct{})
}

// sortFacts 按 (priority 升序, confidence 降序) 稳定排序
func sortFacts(facts []FactCard) {
	sort.SliceStable(facts, func(i, j int) bool {
		if facts[i].Priority != facts[j].Priority {
			return facts[i].Priority < facts[j].Priority
		}
		return facts[i].Confidence > facts[j].Confidence
	})
}

// FactLogEntry 单条事实的日志表示
type FactLogEntry struct {
	ID     string `json:"id"`
	Tag    string `json:"tag"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// RAGLogEntry 单次检索的日志表示
type RAGLogEntry struct {
	Enabled      bool           `json:"enabled"`
	TriggeredBy  []string       `json:"triggered_by"`
	BlockedProps []string       `json:"blocked_props"`
	Facts        []FactLogEntry `json:"facts"`
	LatencyMS    float64        `json:"latency_ms"`
	WouldInject  bool           `json:"would_inject"`
}

// ToLogEntry 把检索结果转换为日志条目
func (fs *FactStore) ToLogEntry(result RAGResult) RAGLogEntry {
	entry := RAGLogEntry{
		Enabled:      fs.enabled,
		BlockedProps: fs.Session.BlockedProps(),
		LatencyMS:    result.QueryTimeMS,
	}

	for _, fact := range result.Facts {
		entry.Facts = append(entry.Facts, FactLogEntry{
			ID:     uuid.NewString()[:8],
			Tag:    fact.Tag(),
			Text:   fact.Content,
			Source: fact.Source,
		})
	}
	return entry
}
