package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestT(t *testing.T) {
	assert.Equal(t, "Promotion not found", T("en", "promotion.not_found"))
	assert.Equal(t, T("vi", "promotion.not_found"), T("", "promotion.not_found"), "lang rỗng fallback về vi")
	assert.Equal(t, T("vi", "promotion.not_found"), T("fr", "promotion.not_found"), "lang không có catalog fallback về vi")
	assert.Equal(t, "some.unknown.key", T("en", "some.unknown.key"), "key không tồn tại trả về chính key")
}

func TestTf(t *testing.T) {
	assert.Equal(t,
		"Requested amount exceeds remaining promotion stock (5)",
		Tf("en", "promotion.stock_exceeded", int64(5)),
	)
}
