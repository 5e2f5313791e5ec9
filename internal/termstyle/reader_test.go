package termstyle

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_PlainText(t *testing.T) {
	r := NewReader()

	fragments := r.Read("hello world\n")

	require.Len(t, fragments, 1)
	assert.Equal(t, "hello world\n", fragments[0].Text)
	assert.Empty(t, fragments[0].Color)
	assert.Empty(t, fragments[0].Styles)
}

func TestReader_ColorSequence(t *testing.T) {
	r := NewReader()

	fragments := r.Read("\x1b[31merror\x1b[0m done")

	require.Len(t, fragments, 2)
	assert.Equal(t, "error", fragments[0].Text)
	assert.Equal(t, "red", fragments[0].Color)
	assert.Equal(t, " done", fragments[1].Text)
	assert.Empty(t, fragments[1].Color)
}

func TestReader_CombinedStyles(t *testing.T) {
	r := NewReader()

	fragments := r.Read("\x1b[1;4;32mok\x1b[0m")

	require.Len(t, fragments, 1)
	assert.Equal(t, "ok", fragments[0].Text)
	assert.Equal(t, "green", fragments[0].Color)
	assert.Equal(t, []string{StyleBold, StyleUnderlined}, fragments[0].Styles)
}

func TestReader_Background(t *testing.T) {
	r := NewReader()

	fragments := r.Read("\x1b[44mblue bg\x1b[49mplain bg")

	require.Len(t, fragments, 2)
	assert.Equal(t, "blue", fragments[0].Background)
	assert.Empty(t, fragments[1].Background)
}

func TestReader_SequenceSplitAcrossReads(t *testing.T) {
	whole := NewReader()
	want := whole.Read("\x1b[31mred text\x1b[0m")

	split := NewReader()
	var got []Fragment
	got = append(got, split.Read("\x1b[3")...)
	got = append(got, split.Read("1mred text\x1b[0m")...)

	assert.Equal(t, want, got)
}

// merge joins adjacent fragments that share a style, so fragment boundaries
// introduced by chunking don't affect comparison.
func merge(fragments []Fragment) []Fragment {
	var out []Fragment
	for _, f := range fragments {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.Color == f.Color && last.Background == f.Background &&
				assert.ObjectsAreEqual(last.Styles, f.Styles) {
				last.Text += f.Text
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

func TestReader_SplitAtEveryPosition(t *testing.T) {
	const input = "before \x1b[1;33mwarn\x1b[0m after"

	whole := NewReader()
	want := merge(whole.Read(input))

	for cut := 1; cut < len(input); cut++ {
		r := NewReader()
		var got []Fragment
		got = append(got, r.Read(input[:cut])...)
		got = append(got, r.Read(input[cut:])...)
		assert.Equal(t, want, merge(got), "split at byte %d", cut)
	}
}

func TestReader_RuneSplitAcrossReads(t *testing.T) {
	const input = "caf\xc3\xa9 au lait" // "café au lait"

	for cut := 1; cut < len(input); cut++ {
		r := NewReader()
		var got []Fragment
		got = append(got, r.Read(input[:cut])...)
		got = append(got, r.Read(input[cut:])...)

		var text string
		for _, f := range got {
			assert.True(t, utf8.ValidString(f.Text), "split at byte %d: fragment %q", cut, f.Text)
			text += f.Text
		}
		assert.Equal(t, "café au lait", text, "split at byte %d", cut)
	}
}

func TestReader_IncompleteRuneHeldUntilCompleted(t *testing.T) {
	r := NewReader()

	assert.Empty(t, r.Read("\xe4\xbd")) // first two bytes of a three-byte rune

	fragments := r.Read("\xa0 ok")
	require.Len(t, fragments, 1)
	assert.Equal(t, "\xe4\xbd\xa0 ok", fragments[0].Text)
	assert.True(t, utf8.ValidString(fragments[0].Text))
}

func TestReader_InvalidBytesPassThrough(t *testing.T) {
	r := NewReader()

	fragments := r.Read("a\xffb")
	require.Len(t, fragments, 1)
	assert.Equal(t, "a\xffb", fragments[0].Text)
}

func TestReader_StatePersistsAcrossReads(t *testing.T) {
	r := NewReader()

	first := r.Read("\x1b[36mcyan")
	second := r.Read(" still cyan")

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "cyan", first[0].Color)
	assert.Equal(t, "cyan", second[0].Color)
}

func TestReader_NonSGRSequencesDropped(t *testing.T) {
	r := NewReader()

	// Cursor-home and clear-screen sequences must disappear, text stays.
	fragments := r.Read("\x1b[H\x1b[2Jfresh screen")

	require.Len(t, fragments, 1)
	assert.Equal(t, "fresh screen", fragments[0].Text)
}

func TestReader_MalformedSequenceDropped(t *testing.T) {
	r := NewReader()

	fragments := r.Read("a\x1b[31\x01b")

	require.Len(t, fragments, 1)
	assert.Equal(t, "ab", fragments[0].Text)
}

func TestReader_UnknownCodesIgnored(t *testing.T) {
	r := NewReader()

	fragments := r.Read("\x1b[95mtext")

	require.Len(t, fragments, 1)
	assert.Equal(t, "text", fragments[0].Text)
	assert.Empty(t, fragments[0].Color)
}

func TestReader_EmptySGRResets(t *testing.T) {
	r := NewReader()

	r.Read("\x1b[31m")
	fragments := r.Read("\x1b[mplain")

	require.Len(t, fragments, 1)
	assert.Empty(t, fragments[0].Color)
}

func TestReader_EmptyChunk(t *testing.T) {
	r := NewReader()
	assert.Empty(t, r.Read(""))
}
