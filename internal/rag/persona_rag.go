// internal/rag/persona_rag.go
package rag

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Corphon/DuoTalkDirector/internal/errors"
	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// personaConfig persona_rules.yaml 的结构
type personaConfig struct {
	Characters map[string]characterRules `yaml:"characters"`
}

// characterRules 单个角色的规则
type characterRules struct {
	SpeechStyle speechStyle       `yaml:"speech_style"`
	Addressing  map[string]string `yaml:"addressing"`
}

// speechStyle 口调规则
type speechStyle struct {
	Tone       string   `yaml:"tone"`
	Prohibited []string `yaml:"prohibited"`
}

// PersonaSource 角色设定事实源
//
// 从 persona_rules.yaml 读取禁止用语、称呼规则和口调描述，
// 配置在构造时一次性加载，运行期只读。
type PersonaSource struct {
	config personaConfig
}

// NewPersonaSource 加载角色规则配置
func NewPersonaSource(configPath string) (*PersonaSource, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(
				fmt.Sprintf("persona config not found: %s", configPath), err)
		}
		return nil, apperrors.NewProcessingError(
			fmt.Sprintf("failed to read persona config: %s", configPath), err)
	}

	var cfg personaConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.NewProcessingError(
			fmt.Sprintf("failed to parse persona config: %s", configPath), err)
	}

	return &PersonaSource{config: cfg}, nil
}

// Search 基于说话者和候选文本检索角色事实
//
// 命中的禁止用语 -> priority 1；称呼规则和口调描述无论是否违规
// 都以 priority 3 提供（靠上层合并逻辑决定取舍）。
func (ps *PersonaSource) Search(speaker, responseText string, maxFacts int) []FactCard {
	var facts []FactCard

	char, ok := ps.config.Characters[speaker]
	if !ok {
		return facts
	}

	facts = append(facts, ps.prohibitedTermFacts(speaker, responseText, char)...)

	if fact, ok := ps.addressingFact(speaker, char); ok {
		facts = append(facts, fact)
	}
	if fact, ok := ps.speechStyleFact(speaker, char); ok {
		facts = append(facts, fact)
	}

	sortFacts(facts)
	if len(facts) > maxFacts {
		facts = facts[:maxFacts]
	}
	return facts
}

// prohibitedTermFacts 候选文本中实际出现的禁止用语
func (ps *PersonaSource) prohibitedTermFacts(speaker, responseText string, char characterRules) []FactCard {
	var facts []FactCard
	for _, term := range char.SpeechStyle.Prohibited {
		if term == "" || !strings.Contains(responseText, term) {
			continue
		}
		content := fmt.Sprintf("%sは「%s」を使わない。", speaker, term)
		if fact, err := NewFactCard(content, SourcePersona, 1, 1.0); err == nil {
			facts = append(facts, fact)
		}
	}
	return facts
}

// addressingFact 称呼规则事实
//
// 双方规则都有时合成一条（"やなは「あゆ」、あゆは「姉様」と呼ぶ。"），
// 超过50字符上限则退化为单向表述，再超则放弃。
func (ps *PersonaSource) addressingFact(speaker string, char characterRules) (FactCard, bool) {
	other := models.OtherSpeaker(speaker)
	addressTerm, ok := char.Addressing[other]
	if !ok || addressTerm == "" {
		return FactCard{}, false
	}

	var otherTerm string
	if otherChar, ok := ps.config.Characters[other]; ok {
		otherTerm = otherChar.Addressing[speaker]
	}

	if otherTerm != "" {
		content := fmt.Sprintf("%sは「%s」、%sは「%s」と呼ぶ。", speaker, addressTerm, other, otherTerm)
		if fact, err := NewFactCard(content, SourcePersona, 3, 1.0); err == nil {
			return fact, true
		}
	}

	content := fmt.Sprintf("%sは%sを「%s」と呼ぶ。", speaker, other, addressTerm)
	fact, err := NewFactCard(content, SourcePersona, 3, 1.0)
	if err != nil {
		return FactCard{}, false
	}
	return fact, true
}

// speechStyleFact 口调描述事实
func (ps *PersonaSource) speechStyleFact(speaker string, char characterRules) (FactCard, bool) {
	tone := char.SpeechStyle.Tone
	if tone == "" {
		return FactCard{}, false
	}
	content := fmt.Sprintf("%sの話し方: %s。", speaker, tone)
	fact, err := NewFactCard(content, SourcePersona, 3, 1.0)
	if err != nil {
		return FactCard{}, false
	}
	return fact, true
}

// ProhibitedTerms 返回说话者的全部禁止用语（生成前预检用）
func (ps *PersonaSource) ProhibitedTerms(speaker string) []string {
	char, ok := ps.config.Characters[speaker]
	if !ok {
		return nil
	}
	return char.SpeechStyle.Prohibited
}

// AddressingRules 返回说话者的称呼规则
func (ps *PersonaSource) AddressingRules(speaker string) map[string]string {
	char, ok := ps.config.Characters[speaker]
	if !ok {
		return nil
	}
	return char.Addressing
}
