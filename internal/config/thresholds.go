// internal/config/thresholds.go
package config

import (
	"fmt"
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/models"
)

// 默认阈值
const (
	defaultRetryOverall      = 0.4
	defaultRetryCharacter    = 0.3
	defaultRetryRelationship = 0.3
	defaultWarnOverall       = 0.6
)

// ThresholdConfig 五轴评分到裁定结果的阈值配置
//
// 各阈值均为"更差结果"的开区间下界: 分数恰好等于阈值时归入更好的一档。
type ThresholdConfig struct {
	RetryOverall      float64 `json:"retry_overall"`
	RetryCharacter    float64 `json:"retry_character"`
	RetryRelationship float64 `json:"retry_relationship"`
	WarnOverall       float64 `json:"warn_overall"`
}

// DefaultThresholds 返回默认阈值配置
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		RetryOverall:      defaultRetryOverall,
		RetryCharacter:    defaultRetryCharacter,
		RetryRelationship: defaultRetryRelationship,
		WarnOverall:       defaultWarnOverall,
	}
}

// DetermineStatus 根据评分和阈值决定裁定结果
//
// 判定顺序（单项关键指标优先于总分）:
//  1. character_consistency 低于下限 -> RETRY
//  2. relationship_quality 低于下限 -> RETRY
//  3. 总分低于 RETRY 下限 -> RETRY
//  4. 总分低于 WARN 下限 -> WARN
//  5. 其余 -> PASS
func DetermineStatus(score models.Score, cfg ThresholdConfig) models.Status {
	if score.CharacterConsistency < cfg.RetryCharacter {
		return models.StatusRetry
	}
	if score.RelationshipQuality < cfg.RetryRelationship {
		return models.StatusRetry
	}

	overall := score.OverallScore()
	if overall < cfg.RetryOverall {
		return models.StatusRetry
	}
	if overall < cfg.WarnOverall {
		return models.StatusWarn
	}
	return models.StatusPass
}

// BuildReason 生成带状态标签的逐项评分说明（展示用，不参与判定）
func BuildReason(score models.Score, status models.Status) string {
	parts := []string{
		fmt.Sprintf("[%s]", status),
		fmt.Sprintf("LLM evaluation: overall=%.2f", score.OverallScore()),
		fmt.Sprintf("(char=%.2f, novelty=%.2f, rel=%.2f, nat=%.2f, conc=%.2f)",
			score.CharacterConsistency,
			score.TopicNovelty,
			score.RelationshipQuality,
			score.Naturalness,
			score.Concreteness,
		),
	}

	if len(score.Issues) > 0 {
		issues := score.Issues
		if len(issues) > 3 {
			issues = issues[:3]
		}
		parts = append(parts, "Issues: "+strings.Join(issues, "; "))
	}

	return strings.Join(parts, " ")
}
