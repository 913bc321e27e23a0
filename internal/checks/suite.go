// internal/checks/suite.go
package checks

import (
	"fmt"
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// StaticCheckSuite 静态检查套件
//
// 按固定顺序执行六项决策检查: 思考结构 → 语气 → 褒め → 文脉 → 设定 → 格式。
// 第一个 RETRY 立即中断并返回，后续检查不再执行，
// 其名字也不会出现在 passed/failed 列表中。
// 没有 RETRY 时把所有 WARN 理由合并成一条 WARN 结论，否则 PASS。
type StaticCheckSuite struct {
	thought *ThoughtChecker
	tone    *ToneChecker
	praise  *PraiseChecker
	context *ContextChecker
	setting *SettingChecker
	format  *FormatChecker
}

// NewStaticCheckSuite 创建默认配置的检查套件
func NewStaticCheckSuite() *StaticCheckSuite {
	return &StaticCheckSuite{
		thought: NewThoughtChecker(),
		tone:    NewToneChecker(),
		praise:  NewPraiseChecker(),
		context: NewContextChecker(),
		setting: NewSettingChecker(),
		format:  NewFormatChecker(),
	}
}

// Evaluate 执行全部静态检查并汇总结论
func (s *StaticCheckSuite) Evaluate(speaker, response string, history []models.Turn) models.Evaluation {
	ordered := []func() models.CheckOutcome{
		func() models.CheckOutcome { return s.thought.Check(response) },
		func() models.CheckOutcome { return s.tone.Check(speaker, response) },
		func() models.CheckOutcome { return s.praise.Check(speaker, response) },
		func() models.CheckOutcome { return s.context.Check(speaker, response, history) },
		func() models.CheckOutcome { return s.setting.Check(response) },
		func() models.CheckOutcome { return s.format.Check(response) },
	}

	var (
		passed   []string
		warnings []string
	)
	for _, run := range ordered {
		outcome := run()
		if outcome.Status == models.StatusRetry {
			return models.Evaluation{
				Status:       models.StatusRetry,
				Reason:       outcome.Reason,
				Suggestion:   outcome.Suggestion(),
				ChecksPassed: passed,
				ChecksFailed: []string{outcome.Name},
			}
		}
		if outcome.Status == models.StatusWarn {
			warnings = append(warnings, outcome.Reason)
		}
		passed = append(passed, outcome.Name)
	}

	if len(warnings) > 0 {
		return models.Evaluation{
			Status:       models.StatusWarn,
			Reason:       fmt.Sprintf("警告: %s", strings.Join(warnings, ", ")),
			Suggestion:   "次のターンで改善してください",
			ChecksPassed: passed,
		}
	}

	return models.Evaluation{
		Status:       models.StatusPass,
		Reason:       "OK",
		ChecksPassed: passed,
	}
}
