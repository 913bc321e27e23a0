// internal/checks/action_sanitizer.go
package checks

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ActionSanitizer 道具幻觉的轻量消毒器
//
// 检测动作描写（（...） 或 *...* 两种记法）中出现、但当前 Scene
// 不存在的道具，替换为安全的代替动作或直接去掉动作段。
// 不会产生 RETRY: 这是一个可以自动修复的窄失败模式，
// 为它烧一次重新生成不值得。
type ActionSanitizer struct{}

// SanitizeResult 消毒结果
type SanitizeResult struct {
	SanitizedText  string   `json:"sanitized_text"`
	ActionRemoved  bool     `json:"action_removed"`
	ActionReplaced bool     `json:"action_replaced"`
	BlockedProps   []string `json:"blocked_props"`
	OriginalAction string   `json:"original_action,omitempty"`
}

// 动作段提取模式
var (
	actionParenPattern    = regexp.MustCompile(`^（([^）]+)）`)
	actionAsteriskPattern = regexp.MustCompile(`^\*([^*]+)\*`)

	actionParenReplace    = regexp.MustCompile(`^（[^）]+）`)
	actionAsteriskReplace = regexp.MustCompile(`^\*[^*]+\*`)
	actionParenRemove     = regexp.MustCompile(`^（[^）]+）\s*`)
	actionAsteriskRemove  = regexp.MustCompile(`^\*[^*]+\*\s*`)
)

// 需要 Scene 实际存在的道具辞典（顺序固定，保证结果可复现）
var propsNGList = []string{
	// 饮品
	"コーヒー", "珈琲", "カップ", "グラス", "ワイン", "ビール",
	"お茶", "紅茶", "ジュース", "水",
	// 眼镜饰品
	"眼鏡", "メガネ", "めがね", "サングラス",
	"指輪", "ネックレス", "イヤリング", "ピアス", "腕時計", "時計",
	// 电子产品
	"スマホ", "携帯", "パソコン", "PC", "タブレット", "リモコン",
	// 吸烟用具
	"タバコ", "煙草", "たばこ", "ライター",
	// 其他小物
	"本", "雑誌", "新聞", "ペン", "ノート", "バッグ", "傘",
	"ハンカチ", "ティッシュ",
}

// 被拦截道具对应的代替动作
var fallbackActions = map[string]string{
	// 饮品 -> 一息つく
	"コーヒー": "一息つく",
	"珈琲":   "一息つく",
	"お茶":   "一息つく",
	"紅茶":   "一息つく",
	// 眼镜 -> 目を細める
	"眼鏡":    "目を細める",
	"メガネ":   "目を細める",
	"めがね":   "目を細める",
	"サングラス": "目を細める",
	// 电子产品/读物 -> 考え込む
	"スマホ":   "考え込む",
	"携帯":    "考え込む",
	"パソコン":  "考え込む",
	"PC":    "考え込む",
	"タブレット": "考え込む",
	"本":     "考え込む",
	"雑誌":    "考え込む",
	"新聞":    "考え込む",
	// 吸烟用具 -> 一息つく
	"タバコ": "一息つく",
	"煙草":  "一息つく",
	"たばこ": "一息つく",
}

// 没有专属映射时的通用代替动作
const defaultFallbackAction = "小さく頷く"

// NewActionSanitizer 创建动作消毒器
func NewActionSanitizer() *ActionSanitizer {
	return &ActionSanitizer{}
}

// Sanitize 消毒输出文本中的动作段
//
// sceneItems 为当前 Scene 实际存在的道具（持有+附近+临时）。
func (as *ActionSanitizer) Sanitize(outputText string, sceneItems []string) SanitizeResult {
	if outputText == "" {
		return SanitizeResult{SanitizedText: ""}
	}

	normalizedScene := normalizeSceneItems(sceneItems)

	action, actionType := extractAction(outputText)
	if action == "" {
		return SanitizeResult{SanitizedText: outputText}
	}

	blocked := detectBlockedProps(action, normalizedScene)
	if len(blocked) == 0 {
		return SanitizeResult{
			SanitizedText:  outputText,
			OriginalAction: action,
		}
	}

	// 有被拦截道具 -> 替换或移除动作段，台词部分原样保留
	fallback := fallbackFor(blocked)
	if fallback != "" {
		return SanitizeResult{
			SanitizedText:  replaceAction(outputText, actionType, fallback),
			ActionReplaced: true,
			BlockedProps:   blocked,
			OriginalAction: action,
		}
	}

	return SanitizeResult{
		SanitizedText:  removeAction(outputText, actionType),
		ActionRemoved:  true,
		BlockedProps:   blocked,
		OriginalAction: action,
	}
}

// extractAction 提取开头的动作段，返回 (内容, 记法类型)
func extractAction(text string) (string, string) {
	if m := actionParenPattern.FindStringSubmatch(text); m != nil {
		return m[1], "parentheses"
	}
	if m := actionAsteriskPattern.FindStringSubmatch(text); m != nil {
		return m[1], "asterisk"
	}
	return "", ""
}

// normalizeSceneItems 归一化 Scene 道具名以便宽松匹配
// （原文 / 小写 / 去符号 各加入一份）
func normalizeSceneItems(items []string) map[string]struct{} {
	normalized := make(map[string]struct{}, len(items)*4)
	for _, item := range items {
		normalized[item] = struct{}{}
		normalized[strings.ToLower(item)] = struct{}{}
		clean := stripSymbols(item)
		normalized[clean] = struct{}{}
		normalized[strings.ToLower(clean)] = struct{}{}
	}
	return normalized
}

// stripSymbols 去掉符号字符，保留文字/数字/空白
func stripSymbols(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// detectBlockedProps 找出动作中提到、但 Scene 中不存在的道具
func detectBlockedProps(action string, normalizedScene map[string]struct{}) []string {
	var blocked []string
	for _, prop := range propsNGList {
		if strings.Contains(action, prop) && !propInScene(prop, normalizedScene) {
			blocked = append(blocked, prop)
		}
	}
	return blocked
}

// propInScene 宽松匹配道具是否在 Scene 中
// （精确 / 忽略大小写 / 双向子串）
func propInScene(prop string, normalizedScene map[string]struct{}) bool {
	if _, ok := normalizedScene[prop]; ok {
		return true
	}
	lower := strings.ToLower(prop)
	if _, ok := normalizedScene[lower]; ok {
		return true
	}
	for item := range normalizedScene {
		if strings.Contains(item, prop) || strings.Contains(prop, item) {
			return true
		}
		itemLower := strings.ToLower(item)
		if strings.Contains(itemLower, lower) || strings.Contains(lower, itemLower) {
			return true
		}
	}
	return false
}

// fallbackFor 返回第一个有专属映射的代替动作，否则用通用代替
func fallbackFor(blockedProps []string) string {
	for _, prop := range blockedProps {
		if fb, ok := fallbackActions[prop]; ok {
			return fb
		}
	}
	return defaultFallbackAction
}

// replaceAction 用代替动作替换动作段（asterisk 记法顺带转为圆括号记法）
func replaceAction(text, actionType, fallback string) string {
	replacement := fmt.Sprintf("（%s）", fallback)
	if actionType == "parentheses" {
		return actionParenReplace.ReplaceAllString(text, replacement)
	}
	return actionAsteriskReplace.ReplaceAllString(text, replacement)
}

// removeAction 去掉动作段，保留台词
func removeAction(text, actionType string) string {
	if actionType == "parentheses" {
		return actionParenRemove.ReplaceAllString(text, "")
	}
	return actionAsteriskRemove.ReplaceAllString(text, "")
}
