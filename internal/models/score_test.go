// internal/models/score_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 五轴取不同值时加权平均必须严格按固定权重计算
func TestWeightedAverageDistinctAxes(t *testing.T) {
	score := Score{
		CharacterConsistency: 0.9,
		TopicNovelty:         0.1,
		RelationshipQuality:  0.8,
		Naturalness:          0.5,
		Concreteness:         0.3,
	}

	expected := 0.25*0.9 + 0.20*0.1 + 0.25*0.8 + 0.15*0.5 + 0.15*0.3
	assert.InDelta(t, expected, score.WeightedAverage(), 1e-12)
	assert.InDelta(t, 0.565, score.WeightedAverage(), 1e-12)
}

func TestOverallScore(t *testing.T) {
	score := Score{
		CharacterConsistency: 0.9,
		TopicNovelty:         0.1,
		RelationshipQuality:  0.8,
		Naturalness:          0.5,
		Concreteness:         0.3,
	}

	t.Run("未提供时回退到加权平均", func(t *testing.T) {
		assert.InDelta(t, score.WeightedAverage(), score.OverallScore(), 1e-12)
	})

	t.Run("显式总分优先", func(t *testing.T) {
		assert.InDelta(t, 0.42, score.WithOverall(0.42).OverallScore(), 1e-12)
	})

	t.Run("显式 0.0 不被当作未提供", func(t *testing.T) {
		assert.Equal(t, 0.0, score.WithOverall(0).OverallScore())
	})
}
