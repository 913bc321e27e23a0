// internal/checks/praise_check.go
package checks

import (
	"fmt"
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// あゆ应避免的夸奖词（夸奖会破坏她"分析型、不奉承"的人设）
var praiseWordsForAyu = []string{
	"いい観点", "いい質問", "さすが", "鋭い",
	"おっしゃる通り", "その通り", "素晴らしい", "お見事",
	"よく気づ", "正解です", "大正解", "正解", "すごい", "完璧", "天才",
}

// 表明夸奖有明确对象的指示词
var recipientTokens = []string{
	"あなた", "きみ", "ユーザー",
	"その答え", "その考え", "その意見", "発言", "回答",
}

// PraiseChecker 检查不当夸奖用语（仅限あゆ）
type PraiseChecker struct {
	praiseWords     []string
	recipientTokens []string
}

// NewPraiseChecker 创建夸奖检查器
func NewPraiseChecker() *PraiseChecker {
	return &PraiseChecker{
		praiseWords:     praiseWordsForAyu,
		recipientTokens: recipientTokens,
	}
}

// Check 检查响应中的夸奖用语
//
// 只检查あゆ的发言，やな可以自由夸人。
// 夸奖词+对象指示词同句出现 -> RETRY；只有夸奖词 -> WARN；没有 -> PASS。
func (pc *PraiseChecker) Check(speaker, response string) models.CheckOutcome {
	if models.IsYana(speaker) {
		return models.CheckOutcome{
			Name:   "praise_check",
			Passed: true,
			Status: models.StatusPass,
			Reason: "Praise check only applies to Ayu",
		}
	}

	// 引号只去括号保留内容（台词里的夸奖同样要管），动作描写整体移除
	normalized := normalizeForChecks(response)
	sentences := splitSentences(normalized)

	for _, sentence := range sentences {
		for _, word := range pc.praiseWords {
			if !strings.Contains(sentence, word) {
				continue
			}

			for _, token := range pc.recipientTokens {
				if strings.Contains(sentence, token) {
					return models.CheckOutcome{
						Name:   "praise_check",
						Passed: false,
						Status: models.StatusRetry,
						Reason: fmt.Sprintf("あゆの褒め言葉使用: 「%s」", word),
						Details: map[string]any{
							"praise_word": word,
							"sentence":    sentence,
							"suggestion":  "評価・判定型の表現を避け、情報提供に徹してください",
						},
					}
				}
			}

			// 没有对象的评价语: 容忍但不鼓励
			return models.CheckOutcome{
				Name:   "praise_check",
				Passed: true,
				Status: models.StatusWarn,
				Reason: fmt.Sprintf("評価語の使用: 「%s」", word),
				Details: map[string]any{
					"praise_word": word,
					"suggestion":  "評価語は避け、説明に置き換えてください",
				},
			}
		}
	}

	return models.CheckOutcome{
		Name:   "praise_check",
		Passed: true,
		Status: models.StatusPass,
		Reason: "OK",
	}
}
