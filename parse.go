package main

import "unicode"

// escapeTable implements the backslash-escape translation of spec.md S4.6
// for S\"-style strings: a→BEL, b→BS, e→ESC, f→FF, n→LF, r→CR, s→SPACE,
// t→TAB, v→VT, z→NUL, 0→NUL, ?→DEL; anything else passes through unchanged.
var escapeTable = map[byte]byte{
	'a': 0x07, 'b': 0x08, 'e': 0x1b, 'f': 0x0c,
	'n': 0x0a, 'r': 0x0d, 's': 0x20, 't': 0x09,
	'v': 0x0b, 'z': 0x00, '0': 0x00, '?': 0x7f,
}

func isParseSpace(b byte) bool {
	return unicode.IsSpace(rune(b)) || b < 0x20
}

// parse scans the current source's buffer from its offset until it sees
// delim, or, when delim is a space, any control character (spec.md S4.6).
// It returns the slice up to (not including) the delimiter, leaving the
// offset advanced past it. With escape set, a backslash is removed
// in-place and the following byte is translated via escapeTable -- this
// rewrites the buffer, so S\"-style callers must own a writable copy.
func (vm *VM) parse(delim byte, escape bool) []byte {
	s := vm.curSource()
	if s == nil {
		return nil
	}
	buf := s.buf
	start := s.off
	isDelim := func(b byte) bool {
		if delim == ' ' {
			return isParseSpace(b)
		}
		return b == delim
	}

	if !escape {
		i := start
		for i < len(buf) && !isDelim(buf[i]) {
			i++
		}
		tok := buf[start:i]
		if i < len(buf) {
			i++ // consume the delimiter
		}
		s.off = i
		return tok
	}

	out := buf[:start] // write head; we compact escapes in place
	i := start
	w := start
	for i < len(buf) {
		b := buf[i]
		if isDelim(b) {
			i++
			break
		}
		if b == '\\' && i+1 < len(buf) {
			i++
			e := buf[i]
			if tr, ok := escapeTable[e]; ok {
				b = tr
			} else {
				b = e
			}
		}
		out = append(out[:w], b)
		w++
		i++
	}
	s.off = i
	return buf[start:w]
}

// parseName skips leading whitespace, then parses a space-delimited token.
// The returned slice never contains whitespace (spec.md S8 invariant).
func (vm *VM) parseName() []byte {
	s := vm.curSource()
	if s == nil {
		return nil
	}
	for s.off < len(s.buf) && isParseSpace(s.buf[s.off]) {
		s.off++
	}
	return vm.parse(' ', false)
}
