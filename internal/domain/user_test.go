package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNickname(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"plain", "juan_dc", "juan_dc", nil},
		{"hyphenated", "anon-42", "anon-42", nil},
		{"trimmed", "  lurker  ", "lurker", nil},
		{"min length", "abc", "abc", nil},
		{"max length", strings.Repeat("a", 20), strings.Repeat("a", 20), nil},
		{"empty", "", "", ErrNicknameRequired},
		{"whitespace only", "   ", "", ErrNicknameRequired},
		{"too short", "ab", "", ErrNicknameLength},
		{"too long", strings.Repeat("a", 21), "", ErrNicknameLength},
		{"inner space", "juan dc", "", ErrNicknameCharset},
		{"html", "<script>", "", ErrNicknameCharset},
		{"emoji", "anon😀ymous", "", ErrNicknameCharset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeNickname(tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, got)
		})
	}
}
