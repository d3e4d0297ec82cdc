package mpd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeBareWords(t *testing.T) {
	got, err := Tokenize("play 3")
	require.NoError(t, err)
	assert.Equal(t, []string{"play", "3"}, got)
}

func TestTokenizeQuotedArgument(t *testing.T) {
	got, err := Tokenize(`add "Music/Boards of Canada/01.flac"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"add", "Music/Boards of Canada/01.flac"}, got)
}

func TestTokenizeEscapedQuoteAndBackslash(t *testing.T) {
	got, err := Tokenize(`find artist "Guns \"N\" Roses" path "C:\\Music"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"find", "artist", `Guns "N" Roses`, "path", `C:\Music`}, got)
}

func TestTokenizeUnterminatedQuoteErrors(t *testing.T) {
	_, err := Tokenize(`add "unterminated`)
	assert.Error(t, err)
}

func TestTokenizeEmptyLine(t *testing.T) {
	got, err := Tokenize("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
