package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorsu/tiktalk/internal/domain"
)

func appendMessage(r *Rooms, sid, content string) *domain.Message {
	m := domain.NewMessage(sid, "juan_dc", domain.CampusBulan, content, "", nil)
	r.Append(m)
	return m
}

func TestRoomsAppendAndHistory(t *testing.T) {
	r := NewRooms()
	appendMessage(r, "sid-1", "first")
	appendMessage(r, "sid-1", "second")

	history := r.History(domain.CampusBulan)
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.Empty(t, r.History(domain.CampusCastilla))
}

func TestRoomsEvictsOldestPastCap(t *testing.T) {
	r := NewRooms()
	for i := 0; i < MaxMessagesPerCampus+10; i++ {
		appendMessage(r, "sid-1", fmt.Sprintf("msg %d", i))
	}

	history := r.History(domain.CampusBulan)
	require.Len(t, history, MaxMessagesPerCampus)
	assert.Equal(t, "msg 10", history[0].Content)
	assert.Equal(t, fmt.Sprintf("msg %d", MaxMessagesPerCampus+9), history[len(history)-1].Content)
}

func TestRoomsEdit(t *testing.T) {
	r := NewRooms()
	m := appendMessage(r, "sid-1", "original")

	view, err := r.Edit(domain.CampusBulan, m.ID, "sid-1", "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", view.Content)
	assert.True(t, view.Edited)
	assert.NotNil(t, view.EditedAt)
}

func TestRoomsEditRejectsOtherAuthors(t *testing.T) {
	r := NewRooms()
	m := appendMessage(r, "sid-1", "original")

	_, err := r.Edit(domain.CampusBulan, m.ID, "sid-2", "hijacked")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestRoomsEditWindowExpires(t *testing.T) {
	r := NewRooms()
	m := domain.NewMessage("sid-1", "juan_dc", domain.CampusBulan, "old", "", nil)
	m.Timestamp = time.Now().Add(-domain.EditWindow - time.Second)
	r.Append(m)

	_, err := r.Edit(domain.CampusBulan, m.ID, "sid-1", "too late")
	assert.ErrorIs(t, err, ErrEditWindowExpired)
}

func TestRoomsDeleteIsTerminal(t *testing.T) {
	r := NewRooms()
	m := appendMessage(r, "sid-1", "doomed")

	require.NoError(t, r.Delete(domain.CampusBulan, m.ID, "sid-1"))

	history := r.History(domain.CampusBulan)
	require.Len(t, history, 1)
	assert.True(t, history[0].Deleted)
	assert.Equal(t, domain.DeletedPlaceholder, history[0].Content)

	// Deleted messages cannot be edited back to life.
	_, err := r.Edit(domain.CampusBulan, m.ID, "sid-1", "resurrect")
	assert.ErrorIs(t, err, ErrMessageNotFound)

	// A second delete is a no-op, not an error.
	assert.NoError(t, r.Delete(domain.CampusBulan, m.ID, "sid-1"))
}

func TestRoomsDeleteRejectsOtherAuthors(t *testing.T) {
	r := NewRooms()
	m := appendMessage(r, "sid-1", "mine")

	assert.ErrorIs(t, r.Delete(domain.CampusBulan, m.ID, "sid-2"), ErrMessageNotFound)
}

func TestRoomsToggleReaction(t *testing.T) {
	r := NewRooms()
	m := appendMessage(r, "sid-1", "react to me")

	counts, ok := r.ToggleReaction(domain.CampusBulan, m.ID, "👍", "sid-2")
	require.True(t, ok)
	assert.Equal(t, 1, counts["👍"])

	counts, ok = r.ToggleReaction(domain.CampusBulan, m.ID, "👍", "sid-3")
	require.True(t, ok)
	assert.Equal(t, 2, counts["👍"])

	// Toggling again removes sid-2's reaction.
	counts, ok = r.ToggleReaction(domain.CampusBulan, m.ID, "👍", "sid-2")
	require.True(t, ok)
	assert.Equal(t, 1, counts["👍"])

	// Last reactor out clears the emoji entirely.
	counts, ok = r.ToggleReaction(domain.CampusBulan, m.ID, "👍", "sid-3")
	require.True(t, ok)
	assert.NotContains(t, counts, "👍")
}

func TestRoomsToggleReactionMissingOrDeleted(t *testing.T) {
	r := NewRooms()
	_, ok := r.ToggleReaction(domain.CampusBulan, "msg_nope", "👍", "sid-2")
	assert.False(t, ok)

	m := appendMessage(r, "sid-1", "gone soon")
	require.NoError(t, r.Delete(domain.CampusBulan, m.ID, "sid-1"))
	_, ok = r.ToggleReaction(domain.CampusBulan, m.ID, "👍", "sid-2")
	assert.False(t, ok)
}

func TestRoomsAuthorOf(t *testing.T) {
	r := NewRooms()
	m := appendMessage(r, "sid-1", "whodunit")

	author, found := r.AuthorOf(domain.CampusBulan, m.ID)
	require.True(t, found)
	assert.Equal(t, "sid-1", author)

	_, found = r.AuthorOf(domain.CampusBulan, "msg_nope")
	assert.False(t, found)
}
