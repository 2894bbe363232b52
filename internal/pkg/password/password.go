package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Hash 计算管理码的 bcrypt 哈希
func Hash(code string) (string, error) {
	return HashWithCost(code, bcrypt.DefaultCost)
}

// HashWithCost 指定 cost 计算哈希（测试中使用 bcrypt.MinCost）
func HashWithCost(code string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify 校验管理码，哈希为空时一律失败
func Verify(code, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
