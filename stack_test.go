package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPushPopPick(t *testing.T) {
	s := newStack(dataStackKind, 4)
	s.push(1)
	s.push(2)
	s.push(3)
	assert.Equal(t, 3, s.length())
	assert.Equal(t, Cell(3), s.pick(0))
	assert.Equal(t, Cell(2), s.pick(1))
	assert.Equal(t, Cell(1), s.pick(2))
	assert.Equal(t, Cell(3), s.pop())
	assert.Equal(t, 2, s.length())
	s.checkSentinel()
}

func TestStackOverflowPanics(t *testing.T) {
	s := newStack(dataStackKind, 2)
	s.push(1)
	s.push(2)
	assert.Panics(t, func() { s.push(3) })
}

func TestStackUnderflowPanics(t *testing.T) {
	s := newStack(dataStackKind, 2)
	assert.Panics(t, func() { s.pop() })
}

func TestStackResetClearsDepthNotSentinel(t *testing.T) {
	s := newStack(dataStackKind, 3)
	s.push(1)
	s.push(2)
	s.reset()
	assert.Equal(t, 0, s.length())
	s.checkSentinel()
}

func TestStackDropRemovesTopN(t *testing.T) {
	s := newStack(dataStackKind, 4)
	s.push(1)
	s.push(2)
	s.push(3)
	s.drop(2)
	assert.Equal(t, 1, s.length())
	assert.Equal(t, Cell(1), s.top1())
}

func TestStackMarkRestoreRoundTrip(t *testing.T) {
	c := packLengths(5, 7)
	rs, ds := unpackLengths(c)
	require.Equal(t, 5, rs)
	require.Equal(t, 7, ds)
}
