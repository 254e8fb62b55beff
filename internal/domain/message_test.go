package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	m := NewMessage("sid-1", "juan_dc", CampusBulan, "hello", "", []string{"maria"})

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "sid-1", m.AuthorSID)
	assert.Equal(t, "juan_dc", m.Nickname)
	assert.Equal(t, CampusBulan, m.Campus)
	assert.False(t, m.Timestamp.IsZero())
	assert.False(t, m.Deleted)
	assert.NotNil(t, m.Reactions)
}

func TestMessageIDsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewMessageID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestReactionCounts(t *testing.T) {
	m := NewMessage("sid-1", "juan_dc", CampusBulan, "hello", "", nil)
	m.Reactions["👍"] = map[string]struct{}{"a": {}, "b": {}}
	m.Reactions["❤️"] = map[string]struct{}{"a": {}}

	counts := m.ReactionCounts()
	assert.Equal(t, 2, counts["👍"])
	assert.Equal(t, 1, counts["❤️"])
}

func TestViewHidesAuthorSID(t *testing.T) {
	m := NewMessage("secret-sid", "juan_dc", CampusBulan, "hello", "msg_1", []string{"maria"})
	v := m.View()

	assert.Equal(t, m.ID, v.ID)
	assert.Equal(t, "juan_dc", v.Nickname)
	assert.Equal(t, "hello", v.Content)
	assert.Equal(t, "msg_1", v.ReplyTo)
	assert.Equal(t, []string{"maria"}, v.Mentions)
	assert.NotNil(t, v.Reactions)
}
