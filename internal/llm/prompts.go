// internal/llm/prompts.go
package llm

import (
	"fmt"
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// 单轮评估提示词模板
const singleTurnPromptTemplate = `あなたは対話品質の評価専門家です。
以下の「%[1]s」の発言を5つの観点から評価してください。

## キャラクター設定
やな（姉）: 一人称「私」、直感的、行動派、砕けた口調
あゆ（妹）: 一人称「私」、分析的、慎重、慇懃無礼

## 会話履歴
%[2]s

## 評価対象
%[1]s: %[3]s

## 評価観点（各0.0-1.0でスコア）
1. character_consistency: キャラクター設定との一貫性（一人称、口調、性格）
2. topic_novelty: 話題の新規性（直前のターンとの比較で重複がないか）
3. relationship_quality: 姉妹らしい関係性表現（からかい、心配、協調）
4. naturalness: 応答の自然さ（テンポ、話題転換）
5. concreteness: 情報の具体性（具体例、数値、固有名詞）

## 出力形式（必ずJSONのみ）
{
  "character_consistency": 0.0-1.0,
  "topic_novelty": 0.0-1.0,
  "relationship_quality": 0.0-1.0,
  "naturalness": 0.0-1.0,
  "concreteness": 0.0-1.0,
  "overall_score": 0.0-1.0,
  "issues": ["問題点があれば記載"],
  "strengths": ["良い点があれば記載"]
}
`

// FormatHistory 把会话历史格式化为提示词片段
//
// 空历史用固定占位「（会話開始）」表示。
func FormatHistory(history []models.Turn) string {
	if len(history) == 0 {
		return "（会話開始）"
	}

	lines := make([]string, 0, len(history))
	for _, turn := range history {
		speaker := turn.Speaker
		if speaker == "" {
			speaker = "?"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, turn.Content))
	}
	return strings.Join(lines, "\n")
}

// BuildEvaluationPrompt 组装完整的单轮评估提示词
func BuildEvaluationPrompt(speaker, response string, history []models.Turn) string {
	return fmt.Sprintf(singleTurnPromptTemplate, speaker, FormatHistory(history), response)
}
