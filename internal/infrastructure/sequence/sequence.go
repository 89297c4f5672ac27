package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Generator sinh product code dạng "PE000123" từ một named counter.
// Redis INCR là atomic nên code không bao giờ trùng dưới concurrent callers.
type Generator struct {
	client *redis.Client
}

func NewGenerator(client *redis.Client) *Generator {
	return &Generator{client: client}
}

// counterKey thống nhất key name cho mỗi prefix
func counterKey(prefix string) string {
	return fmt.Sprintf("storefront:seq:%s", prefix)
}

// GenerateCode increment counter của prefix và trả về code zero-padded.
// minPadLength là độ dài tối thiểu của phần số (vd: 6 → "PE000123").
func (g *Generator) GenerateCode(ctx context.Context, prefix string, minPadLength int) (string, error) {
	next, err := g.client.Incr(ctx, counterKey(prefix)).Result()
	if err != nil {
		return "", fmt.Errorf("increment sequence %s: %w", prefix, err)
	}
	return fmt.Sprintf("%s%0*d", prefix, minPadLength, next), nil
}
