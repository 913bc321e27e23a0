// internal/models/status.go
package models

// Status 表示一次发言评估的裁定结果
type Status string

const (
	StatusPass   Status = "PASS"   // 质量合格，无需干预
	StatusWarn   Status = "WARN"   // 有小问题，但可以接受
	StatusRetry  Status = "RETRY"  // 需要重新生成
	StatusModify Status = "MODIFY" // 严重问题，可能需要中止（当前检查器不会产生，合并逻辑必须保留）
)

// 状态严重度排序: PASS < WARN < RETRY < MODIFY
var statusSeverity = map[Status]int{
	StatusPass:   0,
	StatusWarn:   1,
	StatusRetry:  2,
	StatusModify: 3,
}

// Severity 返回状态的严重度数值
func (s Status) Severity() int {
	return statusSeverity[s]
}

// WorseOf 返回两个状态中更严重的一个
func WorseOf(a, b Status) Status {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// IsPassing 判断该状态是否允许调用方继续（PASS 与 WARN 均视为通过）
func (s Status) IsPassing() bool {
	return s == StatusPass || s == StatusWarn
}
