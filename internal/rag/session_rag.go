// internal/rag/session_rag.go
package rag

import (
	"fmt"
	"strings"
)

// SceneContext 当前场景的会话上下文
type SceneContext struct {
	Location       string   `json:"location"`
	TimeOfDay      string   `json:"time_of_day"` // 朝/昼/夕方/夜
	AvailableProps []string `json:"available_props"`
	Mood           string   `json:"mood"`
	CurrentTopic   string   `json:"current_topic"`
}

// 近期话题保留数量
const maxRecentTopics = 3

// SessionSource 会话记忆事实源
//
// 记录场景上下文、被消毒器拦截过的道具和近期话题，
// 据此生成场景约束类事实。
type SessionSource struct {
	sceneContext *SceneContext
	blockedProps []string
	recentTopics []string
}

// NewSessionSource 创建空的会话事实源
func NewSessionSource() *SessionSource {
	return &SessionSource{}
}

// SetSceneContext 设置当前场景上下文
func (ss *SessionSource) SetSceneContext(ctx SceneContext) {
	ss.sceneContext = &ctx
}

// AddBlockedProp 记录被拦截的道具（去重）
func (ss *SessionSource) AddBlockedProp(prop string) {
	for _, p := range ss.blockedProps {
		if p == prop {
			return
		}
	}
	ss.blockedProps = append(ss.blockedProps, prop)
}

// AddTopic 记录话题，仅保留最近3条
func (ss *SessionSource) AddTopic(topic string) {
	if topic == "" {
		return
	}
	for _, t := range ss.recentTopics {
		if t == topic {
			return
		}
	}
	ss.recentTopics = append(ss.recentTopics, topic)
	if len(ss.recentTopics) > maxRecentTopics {
		ss.recentTopics = ss.recentTopics[1:]
	}
}

// Search 检索会话相关的场景事实
func (ss *SessionSource) Search(speaker, responseText string, maxFacts int) []FactCard {
	var facts []FactCard

	facts = append(facts, ss.blockedPropFacts(responseText)...)

	if fact, ok := ss.scenePropsFact(); ok {
		facts = append(facts, fact)
	}
	if fact, ok := ss.currentTopicFact(); ok {
		facts = append(facts, fact)
	}

	sortFacts(facts)
	if len(facts) > maxFacts {
		facts = facts[:maxFacts]
	}
	return facts
}

// blockedPropFacts 候选文本再次提到已被拦截的道具 -> priority 1
func (ss *SessionSource) blockedPropFacts(responseText string) []FactCard {
	var facts []FactCard
	for _, prop := range ss.blockedProps {
		if !strings.Contains(responseText, prop) {
			continue
		}
		content := fmt.Sprintf("「%s」はSceneに存在しない。", prop)
		if fact, err := NewFactCard(content, SourceSession, 1, 1.0); err == nil {
			facts = append(facts, fact)
		}
	}
	return facts
}

// scenePropsFact 当前场景道具清单 -> priority 2
//
// 最多列3件，多出的用「など」收尾；列表仍超50字符上限时
// 退化为数量表述（confidence 0.8）。
func (ss *SessionSource) scenePropsFact() (FactCard, bool) {
	if ss.sceneContext == nil || len(ss.sceneContext.AvailableProps) == 0 {
		return FactCard{}, false
	}
	props := ss.sceneContext.AvailableProps

	quoted := make([]string, 0, 3)
	for i, p := range props {
		if i >= 3 {
			break
		}
		quoted = append(quoted, fmt.Sprintf("「%s」", p))
	}
	propsStr := strings.Join(quoted, "、")
	if len(props) > 3 {
		propsStr += "など"
	}

	content := fmt.Sprintf("Sceneにある物: %s。", propsStr)
	if fact, err := NewFactCard(content, SourceSession, 2, 1.0); err == nil {
		return fact, true
	}

	content = fmt.Sprintf("Sceneには%d個の小物がある。", len(props))
	fact, err := NewFactCard(content, SourceSession, 2, 0.8)
	if err != nil {
		return FactCard{}, false
	}
	return fact, true
}

// currentTopicFact 最新话题 -> priority 4
func (ss *SessionSource) currentTopicFact() (FactCard, bool) {
	if len(ss.recentTopics) == 0 {
		return FactCard{}, false
	}
	topic := ss.recentTopics[len(ss.recentTopics)-1]
	content := fmt.Sprintf("現在の話題: 「%s」。", topic)
	fact, err := NewFactCard(content, SourceSession, 4, 0.9)
	if err != nil {
		return FactCard{}, false
	}
	return fact, true
}

// AvailableProps 当前场景的道具清单副本
func (ss *SessionSource) AvailableProps() []string {
	if ss.sceneContext == nil {
		return nil
	}
	out := make([]string, len(ss.sceneContext.AvailableProps))
	copy(out, ss.sceneContext.AvailableProps)
	return out
}

// BlockedProps 已拦截道具清单副本
func (ss *SessionSource) BlockedProps() []string {
	out := make([]string, len(ss.blockedProps))
	copy(out, ss.blockedProps)
	return out
}

// Reset 新会话开始时清空全部会话记忆
func (ss *SessionSource) Reset() {
	ss.sceneContext = nil
	ss.blockedProps = nil
	ss.recentTopics = nil
}
