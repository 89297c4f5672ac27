package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"vietnamese diacritics", "Nguyễn Nhật Ánh", "nguyen-nhat-anh"},
		{"consonant d", "Đà Nẵng", "da-nang"},
		{"special characters stripped", "Ghế xoay (mẫu 2024)!", "ghe-xoay-mau-2024"},
		{"consecutive spaces collapse", "a   b", "a-b"},
		{"already clean", "simple-slug", "simple-slug"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlug(tt.input))
		})
	}
}

func TestBuildProductSlug(t *testing.T) {
	tests := []struct {
		name  string
		pname string
		title string
		want  string
	}{
		{"both segments", "Ghế xoay", "Màu đen", "ghe-xoay-mau-den"},
		{"empty title", "Ghế xoay", "", "ghe-xoay"},
		{"empty name", "", "Màu đen", "mau-den"},
		{"both empty", "", "", ""},
		{"whitespace-only title", "Ghế xoay", "   ", "ghe-xoay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildProductSlug(tt.pname, tt.title))
		})
	}
}

func TestRemoveDiacritics(t *testing.T) {
	assert.Equal(t, "Truong Dai hoc", RemoveDiacritics("Trường Đại học"))
	assert.Equal(t, "khong dau", RemoveDiacritics("khong dau"))
}
