// internal/models/score.go
package models

// 五轴加权平均的固定权重
const (
	weightCharacter    = 0.25
	weightNovelty      = 0.20
	weightRelationship = 0.25
	weightNaturalness  = 0.15
	weightConcreteness = 0.15
)

// Score LLM 五轴评估分数，各项取值 [0,1]
//
// Overall 为 nil 时表示"未提供"，读取时按固定权重计算加权平均。
// 用显式指针代替 0.0 哨兵值，评估器给出的真实 0.0 总分会被原样保留。
type Score struct {
	CharacterConsistency float64  `json:"character_consistency"`
	TopicNovelty         float64  `json:"topic_novelty"`
	RelationshipQuality  float64  `json:"relationship_quality"`
	Naturalness          float64  `json:"naturalness"`
	Concreteness         float64  `json:"concreteness"`
	Overall              *float64 `json:"overall_score,omitempty"`
	Issues               []string `json:"issues,omitempty"`
	Strengths            []string `json:"strengths,omitempty"`
}

// WeightedAverage 按固定权重计算五轴加权平均
func (s Score) WeightedAverage() float64 {
	return s.CharacterConsistency*weightCharacter +
		s.TopicNovelty*weightNovelty +
		s.RelationshipQuality*weightRelationship +
		s.Naturalness*weightNaturalness +
		s.Concreteness*weightConcreteness
}

// OverallScore 返回总分：优先使用显式提供的 Overall，否则计算加权平均
func (s Score) OverallScore() float64 {
	if s.Overall != nil {
		return *s.Overall
	}
	return s.WeightedAverage()
}

// WithOverall 设置显式总分（便于构造测试数据）
func (s Score) WithOverall(v float64) Score {
	s.Overall = &v
	return s
}
