// internal/checks/format_check.go
package checks

import (
	"fmt"
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// FormatChecker 响应格式与长度检查器
type FormatChecker struct {
	// 非空行数达到该值 -> RETRY
	RetryLineThreshold int
	// 非空行数达到该值（且未达 Retry 阈值）-> WARN
	WarnLineThreshold int
}

// NewFormatChecker 创建默认阈值（8/6）的格式检查器
func NewFormatChecker() *FormatChecker {
	return &FormatChecker{RetryLineThreshold: 8, WarnLineThreshold: 6}
}

// Check 检查响应格式
func (fc *FormatChecker) Check(response string) models.CheckOutcome {
	lineCount := 0
	for _, line := range strings.Split(response, "\n") {
		if strings.TrimSpace(line) != "" {
			lineCount++
		}
	}

	if lineCount >= fc.RetryLineThreshold {
		return models.CheckOutcome{
			Name:   "format_check",
			Passed: false,
			Status: models.StatusRetry,
			Reason: fmt.Sprintf("発言が複数行に分かれすぎています（%d行）", lineCount),
			Details: map[string]any{
				"line_count": lineCount,
				"suggestion": "1つの連続した発言として、簡潔に出力してください。",
			},
		}
	}

	if lineCount >= fc.WarnLineThreshold {
		return models.CheckOutcome{
			Name:   "format_check",
			Passed: true,
			Status: models.StatusWarn,
			Reason: fmt.Sprintf("発言が複数行です（%d行）", lineCount),
			Details: map[string]any{
				"line_count": lineCount,
				"suggestion": "1つの連続した発言として、簡潔に出力してください。",
			},
		}
	}

	return models.CheckOutcome{
		Name:    "format_check",
		Passed:  true,
		Status:  models.StatusPass,
		Reason:  "OK",
		Details: map[string]any{"line_count": lineCount},
	}
}
