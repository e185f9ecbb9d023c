package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindNameCaseInsensitiveAndShadowing(t *testing.T) {
	vm := New()
	defer vm.Close()

	vm.defineWord("FOO", codeExit, nil)
	first := vm.dictHead
	vm.defineWord("foo", codeExit, nil)
	second := vm.dictHead

	got := vm.findName("Foo")
	require.NotNil(t, got)
	assert.Same(t, second, got, "newest definition shadows the older one with the same name")
	_ = first
}

func TestFindNameSkipsHiddenAndEmpty(t *testing.T) {
	vm := New()
	defer vm.Close()

	w := vm.defineWord("BAR", codeExit, nil)
	w.setHidden(true)

	assert.Nil(t, vm.findName("BAR"), "a HIDDEN word must not be found")
	assert.Nil(t, vm.findName(""))
}

func TestUnlinkHeadRestoresPreviousHead(t *testing.T) {
	vm := New()
	defer vm.Close()

	before := vm.dictHead
	vm.defineWord("BAZ", codeExit, nil)
	removed := vm.unlinkHead()

	assert.Equal(t, "BAZ", removed.name)
	assert.Same(t, before, vm.dictHead)
}
