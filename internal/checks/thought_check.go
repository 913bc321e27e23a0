// internal/checks/thought_check.go
package checks

import (
	"regexp"
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// 响应应遵循 Thought（内心思考）+ Output（对外发言）的两段式结构。
// 按优先级检测四种失败形态: 内容为空 / 被截断 / 缺少Thought / 缺少Output。
var (
	// 提取 Thought 内容: 从 "Thought:" 到 "\nOutput:" 或文本结尾
	thoughtPattern = regexp.MustCompile(`(?is)thought:\s*(.+?)(?:\n\s*output:|$)`)

	// Output 标记
	outputPattern = regexp.MustCompile(`(?i)output:`)

	// Thought 标记存在但内容为空的形态
	thoughtEmptyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)thought:\s*\(?[ \t]*\n`),
		regexp.MustCompile(`(?i)thought:\s*$`),
	}

	// 说话者前缀后内容被截断的形态，如 "Thought: (やな:\n"
	thoughtTruncatedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)thought:\s*\([A-Za-zやなあゆ]+:\s*\n`),
		regexp.MustCompile(`(?i)thought:\s*\([A-Za-zやなあゆ]+:\s*$`),
	}

	// 清洗用: 去掉说话者前缀 "(やな:" / "(Yana:"
	speakerPrefixPattern = regexp.MustCompile(`^\s*\([A-Za-zやなあゆ姉妹様]+:\s*`)
	trailingParenPattern = regexp.MustCompile(`\)\s*$`)

	// 截断判定: 只有说话者前缀且后随字符不足5个
	truncatedShortPattern = regexp.MustCompile(`^\s*\([A-Za-zやなあゆ]+:\s*[^)]{0,5}$`)
)

// thoughtValidation Thought 结构分析的中间结果
type thoughtValidation struct {
	hasThought     bool
	hasOutput      bool
	thoughtContent string
	isEmpty        bool
	isTruncated    bool
}

// ThoughtChecker 校验响应中 Thought 的存在与有效性
type ThoughtChecker struct {
	// 有效 Thought 内容的最小字符数
	MinThoughtLength int

	// 严格模式下空/截断的 Thought 为 RETRY；宽松模式降级为 WARN
	// 完全缺失 Thought 标记始终为 RETRY（格式契约本身不可协商）
	Strict bool
}

// NewThoughtChecker 创建默认（严格模式）的 Thought 检查器
func NewThoughtChecker() *ThoughtChecker {
	return &ThoughtChecker{MinThoughtLength: 3, Strict: true}
}

// Check 检查响应中的 Thought 结构
func (tc *ThoughtChecker) Check(response string) models.CheckOutcome {
	v := tc.validate(response)

	degradedStatus := models.StatusRetry
	degradedPassed := false
	if !tc.Strict {
		degradedStatus = models.StatusWarn
		degradedPassed = true
	}

	// 形态1: 完全没有 Thought
	if !v.hasThought {
		return models.CheckOutcome{
			Name:   "thought_check",
			Passed: false,
			Status: models.StatusRetry,
			Reason: "Thoughtが見つかりません。思考（Thought）と発言（Output）の2段階で応答してください。",
			Details: map[string]any{
				"error_type": "missing_thought",
				"suggestion": "Thought: (内面の思考) の形式で思考を出力してください。",
			},
		}
	}

	// 形态2: Thought 内容为空
	if v.isEmpty {
		return models.CheckOutcome{
			Name:   "thought_check",
			Passed: degradedPassed,
			Status: degradedStatus,
			Reason: "Thoughtの内容が空です。キャラクターの内面の思考を記述してください。",
			Details: map[string]any{
				"error_type":      "empty_thought",
				"thought_content": v.thoughtContent,
				"suggestion":      "Thought: (内面の思考) の形式で思考を出力してください。",
			},
		}
	}

	// 形态3: Thought 被截断
	if v.isTruncated {
		return models.CheckOutcome{
			Name:   "thought_check",
			Passed: degradedPassed,
			Status: degradedStatus,
			Reason: "Thoughtが途中で切れています（incomplete）。完全な思考を出力してください。",
			Details: map[string]any{
				"error_type":      "truncated_thought",
				"thought_content": v.thoughtContent,
				"suggestion":      "Thoughtは完全な文で終わるようにしてください。",
			},
		}
	}

	// 形态4: 缺少 Output
	if !v.hasOutput {
		return models.CheckOutcome{
			Name:   "thought_check",
			Passed: false,
			Status: models.StatusRetry,
			Reason: "Outputが見つかりません。Thoughtの後にOutputを出力してください。",
			Details: map[string]any{
				"error_type":      "missing_output",
				"thought_content": v.thoughtContent,
				"suggestion":      "Output: (動作) 「発言」 の形式で発言を出力してください。",
			},
		}
	}

	// 形态5: Thought 过短（警告但通过）
	cleaned := cleanThoughtContent(v.thoughtContent)
	thoughtLen := len([]rune(cleaned))
	if thoughtLen < tc.MinThoughtLength {
		return models.CheckOutcome{
			Name:   "thought_check",
			Passed: true,
			Status: models.StatusWarn,
			Reason: "Thoughtが短すぎます",
			Details: map[string]any{
				"thought_content": v.thoughtContent,
				"thought_length":  thoughtLen,
				"min_length":      tc.MinThoughtLength,
			},
		}
	}

	// 形态6: 有效 Thought
	preview := v.thoughtContent
	if r := []rune(preview); len(r) > 50 {
		preview = string(r[:50]) + "..."
	}
	return models.CheckOutcome{
		Name:   "thought_check",
		Passed: true,
		Status: models.StatusPass,
		Reason: "OK",
		Details: map[string]any{
			"thought_content": preview,
			"thought_length":  thoughtLen,
		},
	}
}

// validate 分析 Thought 结构
func (tc *ThoughtChecker) validate(response string) thoughtValidation {
	var v thoughtValidation

	// 先检查"标记存在但内容为空"的形态
	for _, p := range thoughtEmptyPatterns {
		if p.MatchString(response) {
			v.hasThought = true
			v.isEmpty = true
			return v
		}
	}

	// 说话者前缀后被截断：同样按空内容处理
	for _, p := range thoughtTruncatedPatterns {
		if p.MatchString(response) {
			v.hasThought = true
			v.isEmpty = true
			return v
		}
	}

	if !strings.Contains(strings.ToLower(response), "thought:") {
		return v
	}
	v.hasThought = true

	if m := thoughtPattern.FindStringSubmatch(response); m != nil {
		content := strings.TrimSpace(m[1])
		v.thoughtContent = content

		cleaned := cleanThoughtContent(content)
		// 只剩标点或单个字符视为空
		switch cleaned {
		case "…", "...", "。", "、":
			v.isEmpty = true
		default:
			v.isEmpty = len([]rune(cleaned)) <= 1
		}

		if !v.isEmpty {
			v.isTruncated = isTruncatedThought(content)
		}
	} else {
		v.isEmpty = true
	}

	v.hasOutput = outputPattern.MatchString(response)
	return v
}

// ExtractThought 提取响应中的思考内容（说话者前缀已清洗）
// 没有 Thought 标记时返回空串
func ExtractThought(response string) string {
	m := thoughtPattern.FindStringSubmatch(response)
	if m == nil {
		return ""
	}
	return cleanThoughtContent(m[1])
}

// cleanThoughtContent 去掉说话者前缀、包裹括号和首尾空白
func cleanThoughtContent(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = speakerPrefixPattern.ReplaceAllString(cleaned, "")

	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = cleaned[1 : len(cleaned)-1]
	} else if strings.HasPrefix(cleaned, "(") {
		cleaned = cleaned[1:]
	}
	cleaned = trailingParenPattern.ReplaceAllString(cleaned, "")

	return strings.TrimSpace(cleaned)
}

// isTruncatedThought 判断 Thought 内容是否疑似被截断
func isTruncatedThought(content string) bool {
	if truncatedShortPattern.MatchString(content) {
		return true
	}

	// 括号未闭合且内容很短
	open := strings.Count(content, "(")
	closed := strings.Count(content, ")")
	if open > closed && len([]rune(content)) < 20 {
		return true
	}

	return false
}
