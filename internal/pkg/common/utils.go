package common

import (
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// Float64Ptr 返回 float64 指標（輸出欄位需顯式 null）
func Float64Ptr(v float64) *float64 {
	return &v
}

// StringPtr 返回字串指標
func StringPtr(s string) *string {
	return &s
}
