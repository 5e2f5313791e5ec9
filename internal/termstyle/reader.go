// Package termstyle decodes raw process output containing ANSI SGR escape
// sequences into discrete styled text fragments. The decoder is stateful: a
// control sequence split across two reads is reassembled, and the active
// style persists until changed or reset.
package termstyle

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	esc = 0x1b

	// maxSequenceLen bounds a buffered partial sequence. Anything longer is
	// treated as malformed and dropped.
	maxSequenceLen = 64
)

// Fragment is a run of text sharing one style.
type Fragment struct {
	Text       string
	Color      string
	Background string
	Styles     []string
}

// Text style names.
const (
	StyleBold       = "bold"
	StyleDim        = "dim"
	StyleItalic     = "italic"
	StyleUnderlined = "underlined"
)

var colorNames = map[int]string{
	0: "black",
	1: "red",
	2: "green",
	3: "yellow",
	4: "blue",
	5: "magenta",
	6: "cyan",
	7: "white",
}

type style struct {
	color      string
	background string
	bold       bool
	dim        bool
	italic     bool
	underlined bool
}

func (s style) names() []string {
	var names []string
	if s.bold {
		names = append(names, StyleBold)
	}
	if s.dim {
		names = append(names, StyleDim)
	}
	if s.italic {
		names = append(names, StyleItalic)
	}
	if s.underlined {
		names = append(names, StyleUnderlined)
	}
	return names
}

// Reader is a stateful decoder. One Reader serves one output stream; it is
// not safe for concurrent use.
type Reader struct {
	pending []byte
	current style
}

// NewReader creates a Reader with default (unstyled) state.
func NewReader() *Reader {
	return &Reader{}
}

// Read decodes the next chunk of raw output and returns the styled fragments
// it completes. A trailing partial escape sequence or multibyte rune is
// buffered for the next call. Malformed or unrecognized sequences are
// dropped; surrounding plain text is preserved.
func (r *Reader) Read(chunk string) []Fragment {
	data := chunk
	if len(r.pending) > 0 {
		data = string(r.pending) + chunk
		r.pending = nil
	}

	// Hold back an incomplete trailing rune so fragment text is always
	// valid UTF-8.
	var tail string
	if n := incompleteRuneLen(data); n > 0 {
		tail = data[len(data)-n:]
		data = data[:len(data)-n]
	}

	var fragments []Fragment
	var text strings.Builder

	flush := func() {
		if text.Len() == 0 {
			return
		}
		fragments = append(fragments, Fragment{
			Text:       text.String(),
			Color:      r.current.color,
			Background: r.current.background,
			Styles:     r.current.names(),
		})
		text.Reset()
	}

	for i := 0; i < len(data); {
		if data[i] != esc {
			text.WriteByte(data[i])
			i++
			continue
		}

		seq, isSGR, consumed, complete := scanSequence(data[i:])
		if !complete {
			r.pending = []byte(data[i:])
			break
		}

		if isSGR {
			flush()
			r.apply(seq)
		}
		i += consumed
	}

	if tail != "" {
		r.pending = append(r.pending, tail...)
	}

	flush()
	return fragments
}

// incompleteRuneLen returns the length of an incomplete UTF-8 rune at the end
// of s, or 0 if s ends on a rune boundary. Invalid sequences count as
// complete; they pass through like any other byte.
func incompleteRuneLen(s string) int {
	for i := 1; i <= utf8.UTFMax && i <= len(s); i++ {
		b := s[len(s)-i]
		if b < 0x80 {
			return 0
		}
		if b >= 0xc0 {
			if runeLen(b) > i {
				return i
			}
			return 0
		}
	}
	return 0
}

// runeLen returns the encoded length implied by a UTF-8 start byte.
func runeLen(b byte) int {
	switch {
	case b >= 0xf0:
		return 4
	case b >= 0xe0:
		return 3
	default:
		return 2
	}
}

// scanSequence examines data starting at an ESC byte. It returns the SGR
// parameter string and whether the sequence was an SGR one (non-SGR and
// malformed sequences are dropped), the number of bytes consumed, and
// whether the sequence was complete within data.
func scanSequence(data string) (params string, isSGR bool, consumed int, complete bool) {
	if len(data) == 1 {
		return "", false, 0, false // lone ESC at end of chunk
	}
	if data[1] != '[' {
		// Not a CSI sequence. Drop the ESC and its introducer byte.
		return "", false, 2, true
	}

	for i := 2; i < len(data); i++ {
		c := data[i]
		switch {
		case c >= '0' && c <= '9' || c == ';':
			if i >= maxSequenceLen {
				return "", false, i + 1, true // runaway sequence, drop it
			}
		case c == 'm':
			return data[2:i], true, i + 1, true
		case c >= 0x40 && c <= 0x7e:
			// Complete CSI sequence with a non-SGR final byte (cursor
			// movement etc.). Dropped.
			return "", false, i + 1, true
		default:
			// Byte that cannot appear in a CSI sequence: malformed.
			return "", false, i + 1, true
		}
	}
	return "", false, 0, false
}

// apply updates the active style from an SGR parameter string.
func (r *Reader) apply(params string) {
	if params == "" {
		r.current = style{}
		return
	}

	for _, field := range strings.Split(params, ";") {
		code, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		switch {
		case code == 0:
			r.current = style{}
		case code == 1:
			r.current.bold = true
		case code == 2:
			r.current.dim = true
		case code == 3:
			r.current.italic = true
		case code == 4:
			r.current.underlined = true
		case code == 21 || code == 22:
			r.current.bold = false
			r.current.dim = false
		case code == 23:
			r.current.italic = false
		case code == 24:
			r.current.underlined = false
		case code >= 30 && code <= 37:
			r.current.color = colorNames[code-30]
		case code == 39:
			r.current.color = ""
		case code >= 40 && code <= 47:
			r.current.background = colorNames[code-40]
		case code == 49:
			r.current.background = ""
		}
		// Unknown codes are ignored.
	}
}
