// internal/models/status_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorseOf(t *testing.T) {
	tests := []struct {
		name string
		a, b Status
		want Status
	}{
		{"PASS vs WARN", StatusPass, StatusWarn, StatusWarn},
		{"WARN vs RETRY", StatusWarn, StatusRetry, StatusRetry},
		{"RETRY vs MODIFY", StatusRetry, StatusModify, StatusModify},
		{"MODIFY vs PASS", StatusModify, StatusPass, StatusModify},
		{"同值返回原状态", StatusWarn, StatusWarn, StatusWarn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WorseOf(tt.a, tt.b))
			assert.Equal(t, tt.want, WorseOf(tt.b, tt.a))
		})
	}
}

// MODIFY 严格重于 RETRY
func TestSeverityOrdering(t *testing.T) {
	assert.Less(t, StatusPass.Severity(), StatusWarn.Severity())
	assert.Less(t, StatusWarn.Severity(), StatusRetry.Severity())
	assert.Less(t, StatusRetry.Severity(), StatusModify.Severity())
}

func TestIsPassing(t *testing.T) {
	assert.True(t, StatusPass.IsPassing())
	assert.True(t, StatusWarn.IsPassing())
	assert.False(t, StatusRetry.IsPassing())
	assert.False(t, StatusModify.IsPassing())
}
