package idgen

import "strconv"

// Generator 全局唯一 ID 生成器
type Generator interface {
	// NextID 生成下一个唯一 ID
	NextID() (int64, error)
}

// NextString 生成十进制字符串形式的 ID（抽卡记录）
func NextString(g Generator) (string, error) {
	id, err := g.NextID()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}
