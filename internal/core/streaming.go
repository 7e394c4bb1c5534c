package core

// streaming.go cleans uploaded bytes before the CSV parser sees them:
// a leading UTF-8 BOM (added by Excel on Windows) is dropped and invalid
// UTF-8 bytes are replaced with U+FFFD. Memory use is bounded by the
// bufio buffer regardless of file size.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WrapImportReader returns a reader that skips a UTF-8 BOM and sanitizes
// invalid UTF-8 on the fly.
func WrapImportReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return &utf8Sanitizer{br: br}
}

type utf8Sanitizer struct {
	br      *bufio.Reader
	pending []byte // encoded rune that did not fit in the caller's buffer
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) > 0 {
			c := copy(p[n:], s.pending)
			s.pending = s.pending[c:]
			n += c
			continue
		}
		// Do not block for more input once something is ready to return.
		if n > 0 && s.br.Buffered() == 0 {
			break
		}

		r, _, err := s.br.ReadRune()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}

		if r < utf8.RuneSelf {
			p[n] = byte(r)
			n++
			continue
		}
		// ReadRune reports each invalid byte as RuneError with size 1,
		// so re-encoding r writes U+FFFD in its place.
		if len(p)-n >= utf8.UTFMax {
			n += utf8.EncodeRune(p[n:], r)
			continue
		}
		s.pending = utf8.AppendRune(s.pending[:0], r)
	}
	return n, nil
}
