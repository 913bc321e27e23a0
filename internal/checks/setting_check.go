// internal/checks/setting_check.go
package checks

import (
	"fmt"
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// 暗示姉妹分居的表达（两人同住是世界观设定，不可破坏）
var separationWords = []string{
	// 对方家的指称
	"姉様のお家", "姉様の家", "姉様の実家",
	"あゆのお家", "あゆの家", "あゆの実家",
	"やなのお家", "やなの家", "やなの実家",
	"姉の家", "妹の家", "姉の実家", "妹の実家",
	// 做客告别用语
	"また来てね", "また遊びに来て", "お邪魔しました",
	// 老家指称
	"実家では", "実家に", "実家の", "うちの実家",
}

// SettingChecker 世界观一致性检查器（姉妹同住设定）
type SettingChecker struct {
	separationWords []string
}

// NewSettingChecker 创建设定检查器
func NewSettingChecker() *SettingChecker {
	return &SettingChecker{separationWords: separationWords}
}

// Check 检查破坏设定的表达
func (sc *SettingChecker) Check(response string) models.CheckOutcome {
	for _, word := range sc.separationWords {
		if strings.Contains(response, word) {
			return models.CheckOutcome{
				Name:   "setting_check",
				Passed: false,
				Status: models.StatusRetry,
				Reason: fmt.Sprintf("設定破壊: 「%s」は姉妹が別居しているかのような表現です", word),
				Details: map[string]any{
					"matched_word": word,
					"suggestion":   "やなとあゆは同じ家に住んでいます。「うちに」「私たちの家」等を使ってください。",
				},
			}
		}
	}

	return models.CheckOutcome{
		Name:   "setting_check",
		Passed: true,
		Status: models.StatusPass,
		Reason: "OK",
	}
}
