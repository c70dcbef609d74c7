package tally

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const chunkSize = 32 * 1024

// CountLines streams r and returns the number of newline-delimited lines.
// A final line without a trailing newline still counts, and an empty input
// has zero lines. Content that is not valid UTF-8 yields errInvalidUTF8.
func CountLines(r io.Reader) (int, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	// The head of buf holds the start of a rune split across two reads
	const head = utf8.UTFMax - 1
	buf := make([]byte, head+chunkSize)

	var (
		lines   int
		pending int
		last    byte = '\n'
	)
	for {
		n, err := br.Read(buf[head:])
		if n > 0 {
			chunk := buf[head : head+n]
			lines += bytes.Count(chunk, []byte{'\n'})
			last = chunk[n-1]

			data := buf[head-pending : head+n]
			split := partialRune(data)
			if !utf8.Valid(data[:len(data)-split]) {
				return 0, errInvalidUTF8
			}
			pending = copy(buf[head-split:head], data[len(data)-split:])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if pending > 0 {
		return 0, errInvalidUTF8
	}
	if last != '\n' {
		lines++
	}
	return lines, nil
}

// partialRune returns the length of an incomplete rune at the end of p
func partialRune(p []byte) int {
	for i := len(p) - 1; i >= 0 && i > len(p)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(p[i]) {
			continue
		}
		if utf8.FullRune(p[i:]) {
			return 0
		}
		return len(p) - i
	}
	return 0
}
