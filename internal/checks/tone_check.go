// internal/checks/tone_check.go
package checks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// 口調チェックは違反検出型: 不要求出现"正确"风格的标记，只拦截禁止形。
// 中立的发言（既无标记也无违规）一律 PASS。

// toneRules 单个角色的口调违规词表
type toneRules struct {
	// 句末禁止形: 只在句尾（后随标点或文本结尾）命中。
	// 必须长词在前（如「ございます」先于「ます」），否则长违规会被短子串掩盖。
	forbiddenEndings []string
	endingLabel      string // 违规说明（丁寧語 / タメ口）

	// 全文任意位置禁止的词
	forbiddenWords []string

	// 禁止的俗语
	forbiddenSlang []string

	// 按命中词给出的修正提示
	hints map[string]string
}

// やな（姉）: 口语角色，禁止敬体句尾
var yanaRules = toneRules{
	forbiddenEndings: []string{"ございます", "致します", "ました", "ません", "です", "ます"},
	endingLabel:      "丁寧語",
	forbiddenWords:   []string{"姉様"}, // あゆ对やな的称呼，やな自己不可用
	hints: map[string]string{
		"姉様": "「姉様」はあゆの呼び方です。やなは使いません。",
	},
}

// あゆ（妹）: 敬语角色，禁止タメ口句尾与俗语
var ayuRules = toneRules{
	forbiddenEndings: []string{"でしょ", "だね", "だよ", "じゃん"},
	endingLabel:      "タメ口",
	forbiddenWords:   []string{"姉上", "お姉ちゃん", "やなちゃん"},
	forbiddenSlang:   []string{"マジ", "ヤバい", "うける"},
	hints: map[string]string{
		"やなちゃん":  "やなは「姉様」と呼んでください。",
		"お姉ちゃん": "やなは「姉様」と呼んでください。",
		"姉上":     "やなは「姉様」と呼んでください。",
	},
}

// やな感叹号过多的 WARN 阈值
const yanaExclamationWarnThreshold = 3

// 归一化用正则
var (
	quoteBracketsPattern = regexp.MustCompile(`[「『」』]`)
	parenContentPattern  = regexp.MustCompile(`（[^）]*）`)
	repeatPunctPattern   = regexp.MustCompile(`[！？!?.]{2,}`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
	sentenceSplitPattern = regexp.MustCompile(`[。！？\n]+`)

	// 句末判定: 禁止形后随的标点
	sentenceFinalRunes = "。！？!?.、～\n"
)

// ToneChecker 角色口调一致性检查器
type ToneChecker struct {
	rules map[string]*toneRules
}

// NewToneChecker 创建口调检查器
func NewToneChecker() *ToneChecker {
	return &ToneChecker{
		rules: map[string]*toneRules{
			models.SpeakerYana: &yanaRules,
			models.SpeakerAyu:  &ayuRules,
		},
	}
}

// Check 检查响应中的口调违规
func (tc *ToneChecker) Check(speaker, response string) models.CheckOutcome {
	rules, ok := tc.rules[models.CanonicalSpeaker(speaker)]
	if !ok {
		return models.CheckOutcome{
			Name:   "tone_check",
			Passed: true,
			Status: models.StatusPass,
			Reason: "Unknown speaker, skipping check",
		}
	}

	normalized := normalizeForChecks(response)

	// 1. 句末禁止形（长词优先）
	for _, ending := range rules.forbiddenEndings {
		if matchesSentenceFinal(normalized, ending) {
			return models.CheckOutcome{
				Name:   "tone_check",
				Passed: false,
				Status: models.StatusRetry,
				Reason: fmt.Sprintf("口調違反: 文末の%s「%s」", rules.endingLabel, ending),
				Details: map[string]any{
					"forbidden_ending": ending,
					"suggestion":       tc.hintFor(rules, ending),
				},
			}
		}
	}

	// 2. 全文禁止词
	for _, word := range rules.forbiddenWords {
		if strings.Contains(normalized, word) {
			return models.CheckOutcome{
				Name:   "tone_check",
				Passed: false,
				Status: models.StatusRetry,
				Reason: fmt.Sprintf("禁止ワード「%s」を使用", word),
				Details: map[string]any{
					"forbidden_word": word,
					"suggestion":     tc.hintFor(rules, word),
				},
			}
		}
	}

	// 3. 俗语
	for _, slang := range rules.forbiddenSlang {
		if strings.Contains(normalized, slang) {
			return models.CheckOutcome{
				Name:   "tone_check",
				Passed: false,
				Status: models.StatusRetry,
				Reason: fmt.Sprintf("口調違反: 俗語「%s」", slang),
				Details: map[string]any{
					"forbidden_slang": slang,
					"suggestion":      tc.hintFor(rules, slang),
				},
			}
		}
	}

	// 4. やな限定: 感叹号过多（只警告）
	if models.IsYana(speaker) {
		count := strings.Count(normalized, "！") + strings.Count(normalized, "!")
		if count > yanaExclamationWarnThreshold {
			return models.CheckOutcome{
				Name:   "tone_check",
				Passed: true,
				Status: models.StatusWarn,
				Reason: fmt.Sprintf("感嘆符「！」が多すぎます（%d個）", count),
				Details: map[string]any{
					"exclamation_count": count,
					"suggestion":        "感嘆符を減らして落ち着いたトーンにしてください。",
				},
			}
		}
	}

	return models.CheckOutcome{
		Name:   "tone_check",
		Passed: true,
		Status: models.StatusPass,
		Reason: "OK",
	}
}

// hintFor 返回命中词对应的修正提示
func (tc *ToneChecker) hintFor(rules *toneRules, token string) string {
	if hint, ok := rules.hints[token]; ok {
		return hint
	}
	return fmt.Sprintf("「%s」を避けた言い回しに直してください。", token)
}

// matchesSentenceFinal 判断 token 是否以句末形式出现
// （命中位置后必须是句读标点或文本结尾）
func matchesSentenceFinal(text, token string) bool {
	searched := text
	offset := 0
	for {
		idx := strings.Index(searched, token)
		if idx < 0 {
			return false
		}
		after := offset + idx + len(token)
		if after >= len(text) {
			return true
		}
		rest := []rune(text[after:])
		if strings.ContainsRune(sentenceFinalRunes, rest[0]) {
			return true
		}
		offset = after
		searched = text[after:]
	}
}

// normalizeForChecks 归一化待检文本
//
// 引号括号 「」『』 只去括号保留内容（台词及其口调标记在引号内），
// 圆括号 （） 连内容一并去除（通常是动作描写）。
func normalizeForChecks(text string) string {
	normalized := quoteBracketsPattern.ReplaceAllString(text, "")
	normalized = parenContentPattern.ReplaceAllString(normalized, "")
	normalized = strings.ReplaceAll(normalized, "｡", "。")
	normalized = repeatPunctPattern.ReplaceAllStringFunc(normalized, collapsePunctRun)
	normalized = strings.TrimSpace(whitespacePattern.ReplaceAllString(normalized, " "))
	return normalized
}

// collapsePunctRun 压缩连续重复的句读标点（仅合并相同字符，「！？」保持原样）
func collapsePunctRun(run string) string {
	var b strings.Builder
	var prev rune
	for i, r := range run {
		if i == 0 || r != prev {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}

// splitSentences 按句读切分文本
func splitSentences(text string) []string {
	if text == "" {
		return nil
	}
	parts := sentenceSplitPattern.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
