// internal/state/signals.go
package state

import "strings"

// 情绪信号辞典
// 同分并列时按优先级 AFFECTION > JOY > WORRY > ANNOYANCE 取胜
var emotionSignals = map[EmotionType][]string{
	EmotionJoy: {
		"嬉しい", "楽しい", "ワクワク", "最高", "素敵", "よかった",
		"面白い", "幸せ", "いいな", "好き", "笑顔", "やった",
	},
	EmotionWorry: {
		"心配", "不安", "大丈夫かな", "困る", "どうしよう",
		"気になる", "怖い", "不安定",
	},
	EmotionAnnoyance: {
		"また始まった", "いつも", "面倒", "うんざり", "やれやれ",
		"はぁ", "ため息", "仕方ない", "困った", "無神経",
	},
	EmotionAffection: {
		"可愛い", "大切", "守りたい", "愛おしい",
		"妹思い", "姉思い", "仲良し",
	},
}

// 关系基调信号辞典
var relationshipSignals = map[RelationshipTone][]string{
	ToneWarm: {
		"嬉しそう", "笑顔", "一緒に", "仲良し", "楽しそう",
		"元気そう", "ありがとう", "姉様",
	},
	ToneTeasing: {
		"からかう", "いじわる", "ツンツン", "素直じゃない",
		"相変わらず", "照れ",
	},
	ToneConcerned: {
		"心配", "大丈夫", "無理しないで", "体調", "気をつけて",
	},
	ToneDistant: {
		"距離", "冷たい", "無視", "そっけない", "避ける",
	},
}

// 关系基调的固定遍历顺序（并列时先到者胜，保证结果可复现）
var relationshipToneOrder = []RelationshipTone{
	ToneWarm, ToneTeasing, ToneConcerned, ToneDistant,
}

// 角色指称模式
var characterReferences = []struct {
	target   string
	patterns []string
}{
	{"あゆ", []string{"あゆ", "妹"}},
	{"姉様", []string{"姉様", "姉", "やな"}},
}

// 强度修饰词
var (
	intensityBoosters = []string{"！", "!", "すごく", "とても", "本当に", "めっちゃ", "超"}
	intensityReducers = []string{"ちょっと", "少し", "まあ", "一応"}
)

// 否定判定
//
// 前缀否定列表刻意留空:「全然」「まったく」在口语里经常作强调
// 使用（「全然最高！」），无法与否定区分，误杀多于正确拦截。
// 绝大多数真实否定由后缀形态（「嬉しくない」）覆盖。
var (
	negationPrefixTokens []string
	negationSuffixTokens = []string{"くない", "じゃない", "でもない", "ではない"}
)

// 否定判定窗口（字符数）
const negationWindow = 6

// countSignalMatches 带否定判定的信号计数
func countSignalMatches(text string, signals []string) int {
	count := 0
	for _, signal := range signals {
		if strings.Contains(text, signal) && !isNegated(text, signal) {
			count++
		}
	}
	return count
}

// isNegated 判断信号命中是否被否定
//
// 检查首个命中位置前后各 negationWindow 字符的窗口。
func isNegated(text, signal string) bool {
	idx := strings.Index(text, signal)
	if idx < 0 {
		return false
	}

	runes := []rune(text)
	pos := len([]rune(text[:idx]))
	signalLen := len([]rune(signal))

	prefixStart := pos - negationWindow
	if prefixStart < 0 {
		prefixStart = 0
	}
	prefixWindow := string(runes[prefixStart:pos])
	for _, token := range negationPrefixTokens {
		if strings.Contains(prefixWindow, token) {
			return true
		}
	}

	suffixStart := pos + signalLen
	suffixEnd := suffixStart + negationWindow
	if suffixEnd > len(runes) {
		suffixEnd = len(runes)
	}
	if suffixStart > len(runes) {
		suffixStart = len(runes)
	}
	suffixWindow := string(runes[suffixStart:suffixEnd])
	for _, token := range negationSuffixTokens {
		if strings.Contains(suffixWindow, token) {
			return true
		}
	}

	return false
}
