package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "12", ToString(12))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 11.33, Round2(34.0/3))
	assert.Equal(t, 259.5, Round2(259.5))
	assert.Equal(t, 0.01, Round2(0.005))
	assert.Equal(t, 2.0, Round2(2))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 3.0, Mean([]int{2, 1, 6}))
}

func TestMinMaxTime(t *testing.T) {
	a := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.Add(time.Hour)

	assert.Equal(t, a, MinTime(a, b))
	assert.Equal(t, a, MinTime(b, a))
	assert.Equal(t, b, MaxTime(a, b))
	assert.Equal(t, a, MinTime(time.Time{}, a))
	assert.Equal(t, a, MaxTime(a, time.Time{}))
}

func TestChunk(t *testing.T) {
	chunks := Chunk([]int{1, 2, 3, 4, 5}, 2)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunks)
	assert.Empty(t, Chunk([]int{}, 3))
	assert.Len(t, Chunk([]int{1, 2}, 0), 2)
}
