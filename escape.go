package main

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// escapeBytes converts a possibly non-UTF-8 byte slice into a printable
// string without losing information.
//
// Valid UTF-8 runs are copied as is, except that every '%' is doubled. Each
// byte that cannot start a valid UTF-8 sequence is written as '%' followed by
// its two lowercase hex digits. Only the first byte of an invalid sequence is
// escaped at a time, so valid text that resumes right after it is kept.
func escapeBytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))

	start := 0
	for i := 0; i < len(b); {
		c := b[i]
		if c < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		if r != utf8.RuneError || size > 1 {
			i += size
			continue
		}

		writeLiteral(&sb, b[start:i])
		sb.WriteByte('%')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
		i++
		start = i
	}
	writeLiteral(&sb, b[start:])
	return sb.String()
}

// writeLiteral writes a valid UTF-8 run, doubling '%'.
func writeLiteral(sb *strings.Builder, run []byte) {
	for len(run) > 0 {
		i := bytes.IndexByte(run, '%')
		if i < 0 {
			sb.Write(run)
			return
		}
		sb.Write(run[:i+1])
		sb.WriteByte('%')
		run = run[i+1:]
	}
}
