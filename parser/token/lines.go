// Copyright © 2024 The ELPS authors

package token

import (
	"sort"
	"unicode/utf8"
)

// LineIndex converts byte offsets into line/column locations. Columns are
// counted in runes starting at 1, matching the way editors display them.
type LineIndex struct {
	src    []byte
	starts []int // byte offset of the first byte of each line
}

// NewLineIndex scans src once and records the start of every line. "\r\n",
// "\r", "\n", U+2028 and U+2029 all terminate a line.
func NewLineIndex(src []byte) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case 0xE2:
			// U+2028 and U+2029 encode as E2 80 A8 / E2 80 A9
			if i+2 < len(src) && src[i+1] == 0x80 && (src[i+2] == 0xA8 || src[i+2] == 0xA9) {
				i += 2
				starts = append(starts, i+1)
			}
		}
	}
	return &LineIndex{src: src, starts: starts}
}

// LineCount returns the number of lines in the source.
func (idx *LineIndex) LineCount() int {
	return len(idx.starts)
}

// Position returns the 1-based line and rune column of offset.
func (idx *LineIndex) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(idx.src) {
		offset = len(idx.src)
	}
	i := sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > offset }) - 1
	col = utf8.RuneCount(idx.src[idx.starts[i]:offset]) + 1
	return i + 1, col
}

// Location builds a Location for offset within file.
func (idx *LineIndex) Location(file string, offset int) *Location {
	line, col := idx.Position(offset)
	return &Location{File: file, Pos: offset, Line: line, Col: col}
}

// Offset is the inverse of Position. Out of range lines clamp to the end of
// the source and out of range columns clamp to the end of the line.
func (idx *LineIndex) Offset(line, col int) int {
	if line < 1 {
		return 0
	}
	if line > len(idx.starts) {
		return len(idx.src)
	}
	start := idx.starts[line-1]
	end := len(idx.src)
	if line < len(idx.starts) {
		end = idx.starts[line]
	}
	off := start
	for c := 1; c < col && off < end; c++ {
		r, size := utf8.DecodeRune(idx.src[off:end])
		if r == '\n' || r == '\r' {
			break
		}
		off += size
	}
	return off
}

// LineText returns the text of a 1-based line without its terminator.
func (idx *LineIndex) LineText(line int) string {
	if line < 1 || line > len(idx.starts) {
		return ""
	}
	start := idx.starts[line-1]
	end := len(idx.src)
	if line < len(idx.starts) {
		end = idx.starts[line]
	}
	for end > start && (idx.src[end-1] == '\n' || idx.src[end-1] == '\r') {
		end--
	}
	return string(idx.src[start:end])
}
