// Package domain contains entities without logic, just meta-data and
// the validation rules that go with them.
package domain

import (
	"errors"
	"regexp"
	"strings"
)

const (
	MinNicknameLen = 3
	MaxNicknameLen = 20
)

var (
	ErrNicknameRequired = errors.New("nickname is required")
	ErrNicknameLength   = errors.New("nickname must be 3-20 characters")
	ErrNicknameCharset  = errors.New("nickname can only contain letters, numbers, underscore, and hyphen")
)

var nicknameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// NormalizeNickname trims and validates a display nickname. Nicknames
// are NOT unique: two live sessions may share one. They are display
// and search keys only, never authorization keys.
func NormalizeNickname(raw string) (string, error) {
	nickname := strings.TrimSpace(raw)
	if nickname == "" {
		return "", ErrNicknameRequired
	}
	if len(nickname) < MinNicknameLen || len(nickname) > MaxNicknameLen {
		return "", ErrNicknameLength
	}
	if !nicknameRe.MatchString(nickname) {
		return "", ErrNicknameCharset
	}
	return nickname, nil
}
