// internal/checks/static_checks_test.go
package checks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// ----- PraiseChecker -----

func TestPraiseCheckerYanaExempt(t *testing.T) {
	checker := NewPraiseChecker()

	// やなは自由に褒めてよい
	result := checker.Check(models.SpeakerYana, "さすがあゆ！あなたの答えは完璧だね")
	assert.True(t, result.Passed)
	assert.Equal(t, models.StatusPass, result.Status)
}

func TestPraiseCheckerAyuDirectedPraise(t *testing.T) {
	checker := NewPraiseChecker()

	tests := []struct {
		name     string
		response string
	}{
		{"さすが+あなた", "さすがですね、あなたの分析は的確です。"},
		{"鋭い+その意見", "その意見、鋭いご指摘かと存じます。"},
		{"正解+回答", "その回答は正解です。"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.Check(models.SpeakerAyu, tt.response)
			assert.Equal(t, models.StatusRetry, result.Status)
			assert.Contains(t, result.Reason, "褒め言葉")
		})
	}
}

func TestPraiseCheckerAyuGeneralEvaluativeWarns(t *testing.T) {
	checker := NewPraiseChecker()

	// 対象のない評価語は警告どまり
	result := checker.Check(models.SpeakerAyu, "この景色は素晴らしいと思います。")
	assert.Equal(t, models.StatusWarn, result.Status)
	assert.Contains(t, result.Reason, "評価語")
}

func TestPraiseCheckerAyuNoPraisePasses(t *testing.T) {
	checker := NewPraiseChecker()

	result := checker.Check(models.SpeakerAyu, "そのアプローチにはリスクがあるかと存じます。")
	assert.True(t, result.Passed)
	assert.Equal(t, models.StatusPass, result.Status)
}

// 褒め言葉と指示語が別の文にあれば RETRY にはならない
func TestPraiseCheckerSentenceScoped(t *testing.T) {
	checker := NewPraiseChecker()

	result := checker.Check(models.SpeakerAyu, "素晴らしい朝ですね。あなたはもう起きていたのですか。")
	assert.Equal(t, models.StatusWarn, result.Status)
}

// ----- SettingChecker -----

func TestSettingCheckerNormalPasses(t *testing.T) {
	checker := NewSettingChecker()

	result := checker.Check("「ただいまー。あゆ、今日の晩ごはん何にする？」")
	assert.True(t, result.Passed)
}

func TestSettingCheckerSeparationPhrases(t *testing.T) {
	checker := NewSettingChecker()

	tests := []struct {
		name     string
		response string
	}{
		{"相手の家", "「そろそろ姉様のお家に伺いますね」"},
		{"来客の別れ際", "「じゃあね、また遊びに来てね」"},
		{"実家の言及", "「実家に帰ったときに持ってきたんだ」"},
		{"お邪魔しました", "「お邪魔しました、失礼いたします」"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.Check(tt.response)
			assert.Equal(t, models.StatusRetry, result.Status)
			assert.Contains(t, result.Reason, "設定破壊")
		})
	}
}

// ----- FormatChecker -----

func TestFormatCheckerLineThresholds(t *testing.T) {
	checker := NewFormatChecker()

	lines := func(n int) string {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = "これはテスト用の行です"
		}
		return strings.Join(parts, "\n")
	}

	t.Run("5行はPASS", func(t *testing.T) {
		result := checker.Check(lines(5))
		assert.Equal(t, models.StatusPass, result.Status)
	})
	t.Run("6行はWARN", func(t *testing.T) {
		result := checker.Check(lines(6))
		assert.Equal(t, models.StatusWarn, result.Status)
	})
	t.Run("7行はWARN", func(t *testing.T) {
		result := checker.Check(lines(7))
		assert.Equal(t, models.StatusWarn, result.Status)
	})
	t.Run("8行はRETRY", func(t *testing.T) {
		result := checker.Check(lines(8))
		assert.Equal(t, models.StatusRetry, result.Status)
	})
}

// 空行は数えない
func TestFormatCheckerBlankLinesIgnored(t *testing.T) {
	checker := NewFormatChecker()

	result := checker.Check("一行目\n\n\n二行目\n\n三行目")
	assert.Equal(t, models.StatusPass, result.Status)
	assert.Equal(t, 3, result.Details["line_count"])
}

func TestFormatCheckerCustomThresholds(t *testing.T) {
	checker := &FormatChecker{RetryLineThreshold: 4, WarnLineThreshold: 2}

	result := checker.Check("一\n二\n三")
	assert.Equal(t, models.StatusWarn, result.Status)

	result = checker.Check("一\n二\n三\n四")
	assert.Equal(t, models.StatusRetry, result.Status)
}

// ----- ContextChecker -----

func TestContextCheckerHallucinatedToxicity(t *testing.T) {
	checker := NewContextChecker()

	history := []models.Turn{
		{Speaker: models.SpeakerYana, Content: "「あゆ、今日の予定どうする？」"},
		{Speaker: models.SpeakerAyu, Content: "「映画を観に行くのはいかがでしょうか」"},
	}
	result := checker.Check(models.SpeakerYana, "「もう、毒舌なんだから」", history)
	assert.Equal(t, models.StatusRetry, result.Status)
	assert.Contains(t, result.Reason, "文脈エラー")
}

func TestContextCheckerJustifiedReaction(t *testing.T) {
	checker := NewContextChecker()

	history := []models.Turn{
		{Speaker: models.SpeakerAyu, Content: "「その計画は非効率ですし、コストも無駄かと」"},
	}
	result := checker.Check(models.SpeakerYana, "「相変わらず手厳しいなあ」", history)
	assert.True(t, result.Passed)
}

// 直前がやな自身の発言なら、古い発言への反応とみなして放行
func TestContextCheckerOnlyImmediatePreviousTurn(t *testing.T) {
	checker := NewContextChecker()

	history := []models.Turn{
		{Speaker: models.SpeakerAyu, Content: "「映画を観に行くのはいかがでしょうか」"},
		{Speaker: models.SpeakerYana, Content: "「いいね、そうしよう」"},
	}
	result := checker.Check(models.SpeakerYana, "「さっきのあゆ、ちょっときつい言い方だったな」", history)
	assert.True(t, result.Passed)
}

func TestContextCheckerAyuNotChecked(t *testing.T) {
	checker := NewContextChecker()

	result := checker.Check(models.SpeakerAyu, "「姉様は厳しいですね」", nil)
	assert.True(t, result.Passed)
}

func TestContextCheckerNoTriggerPasses(t *testing.T) {
	checker := NewContextChecker()

	history := []models.Turn{
		{Speaker: models.SpeakerAyu, Content: "「映画を観に行くのはいかがでしょうか」"},
	}
	result := checker.Check(models.SpeakerYana, "「映画いいね！」", history)
	assert.True(t, result.Passed)
}
