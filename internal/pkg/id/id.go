package id

import (
	"strconv"

	"github.com/google/uuid"
)

// Generator ID 生成函数，便于在测试中替换
type Generator func() string

// New 生成新的UUID（string格式）
func New() string {
	return uuid.New().String()
}

// Sequence 返回按 prefix-1、prefix-2 … 递增的生成器，仅用于测试
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

