// internal/llm/evaluator.go
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// 评估生成的 token 预算
const evaluationMaxTokens = 500

// JSON 提取: 优先找带 character_consistency 键的完整对象，
// 退而求其次匹配第一个花括号块
var (
	scoreJSONPattern    = regexp.MustCompile(`(?s)\{[^{}]*"character_consistency"[^{}]*\}`)
	fallbackJSONPattern = regexp.MustCompile(`(?s)\{[^}]+\}`)
)

// Scorer 基于 LLM 的五轴质量评分器
//
// 任何失败（后端异常、JSON 解析失败、字段缺失）都返回
// 0.5 中性分并在 Issues 里说明原因，绝不向上抛错——
// 评分失败不应该阻断对话流程。
type Scorer struct {
	client Client
}

// NewScorer 创建评分器
func NewScorer(client Client) *Scorer {
	return &Scorer{client: client}
}

// Available 探测底层生成后端是否可用
func (s *Scorer) Available(ctx context.Context) bool {
	return s.client.IsAvailable(ctx)
}

// EvaluateSingleTurn 评估单轮发言
func (s *Scorer) EvaluateSingleTurn(ctx context.Context, speaker, response string, history []models.Turn) models.Score {
	prompt := BuildEvaluationPrompt(speaker, response, history)

	raw, err := s.client.Generate(ctx, prompt, evaluationMaxTokens)
	if err != nil {
		return neutralScore(fmt.Sprintf("LLM evaluation error: %v", err))
	}

	return s.parseResponse(raw)
}

// rawScore LLM 输出的 JSON 结构
//
// 数值字段用 json.Number 承接，模型偶尔会输出字符串形式的数字。
// overall_score 用指针区分"没给"和"给了0.0"。
type rawScore struct {
	CharacterConsistency json.Number  `json:"character_consistency"`
	TopicNovelty         json.Number  `json:"topic_novelty"`
	RelationshipQuality  json.Number  `json:"relationship_quality"`
	Naturalness          json.Number  `json:"naturalness"`
	Concreteness         json.Number  `json:"concreteness"`
	Overall              *json.Number `json:"overall_score"`
	Issues               []string     `json:"issues"`
	Strengths            []string     `json:"strengths"`
}

// parseResponse 从 LLM 输出中提取并解析评分 JSON
func (s *Scorer) parseResponse(responseText string) models.Score {
	jsonText := scoreJSONPattern.FindString(responseText)
	if jsonText == "" {
		jsonText = fallbackJSONPattern.FindString(responseText)
	}
	if jsonText == "" {
		return neutralScore("JSON parse error: could not extract valid JSON")
	}

	var raw rawScore
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return neutralScore("JSON parse error: could not extract valid JSON")
	}

	score := models.Score{
		CharacterConsistency: clampNumber(raw.CharacterConsistency),
		TopicNovelty:         clampNumber(raw.TopicNovelty),
		RelationshipQuality:  clampNumber(raw.RelationshipQuality),
		Naturalness:          clampNumber(raw.Naturalness),
		Concreteness:         clampNumber(raw.Concreteness),
		Issues:               raw.Issues,
		Strengths:            raw.Strengths,
	}
	if raw.Overall != nil {
		overall := clampNumber(*raw.Overall)
		score.Overall = &overall
	}
	return score
}

// neutralScore 全轴0.5的保底分数
func neutralScore(issue string) models.Score {
	return models.Score{
		CharacterConsistency: 0.5,
		TopicNovelty:         0.5,
		RelationshipQuality:  0.5,
		Naturalness:          0.5,
		Concreteness:         0.5,
		Issues:               []string{issue},
	}
}

// clampNumber 解析并夹取到 [0,1]，解析失败回退0.5
func clampNumber(n json.Number) float64 {
	if n == "" {
		return 0.5
	}
	v, err := n.Float64()
	if err != nil {
		return 0.5
	}
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
