package notice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_DrainOrder(t *testing.T) {
	q := NewQueue(10)
	q.Success("Note created")
	q.Error("Unknown error")
	q.Success("")

	got := q.Drain()

	if assert.Len(t, got, 2) {
		assert.Equal(t, LevelSuccess, got[0].Level)
		assert.Equal(t, "Note created", got[0].Message)
		assert.Equal(t, LevelError, got[1].Level)
	}
	assert.Empty(t, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_DropsOldest(t *testing.T) {
	q := NewQueue(2)
	q.Success("a")
	q.Success("b")
	q.Success("c")

	got := q.Drain()
	if assert.Len(t, got, 2) {
		assert.Equal(t, "b", got[0].Message)
		assert.Equal(t, "c", got[1].Message)
	}
}
