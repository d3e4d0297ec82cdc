package filter

import (
	"testing"

	"github.com/rmpd-project/rmpd/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSong() *core.Song {
	return &core.Song{
		URI:    "Music/Boards of Canada/Geogaddi/01 - Ready Lets Go.flac",
		Artist: "Boards of Canada",
		Album:  "Geogaddi",
		Title:  "Ready Lets Go",
		Genre:  "IDM",
	}
}

func TestParseAtomEquals(t *testing.T) {
	e, err := Parse(`(artist == "Boards of Canada")`)
	require.NoError(t, err)

	ok, err := Match(e, testSong(), true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match(e, testSong(), false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseAtomEqualsCaseSensitivity(t *testing.T) {
	e, err := Parse(`(artist == "boards of canada")`)
	require.NoError(t, err)

	ok, err := Match(e, testSong(), true)
	require.NoError(t, err)
	assert.False(t, ok, "find is case sensitive")

	ok, err = Match(e, testSong(), false)
	require.NoError(t, err)
	assert.True(t, ok, "search is case insensitive")
}

func TestParseAnd(t *testing.T) {
	e, err := Parse(`((artist == "Boards of Canada") AND (album == "Geogaddi"))`)
	require.NoError(t, err)

	ok, err := Match(e, testSong(), true)
	require.NoError(t, err)
	assert.True(t, ok)

	e2, err := Parse(`((artist == "Boards of Canada") AND (album == "Music Has the Right to Children"))`)
	require.NoError(t, err)
	ok, err = Match(e2, testSong(), true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseNegation(t *testing.T) {
	e, err := Parse(`(!(genre == "Techno"))`)
	require.NoError(t, err)

	ok, err := Match(e, testSong(), true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseContainsAndStartsWith(t *testing.T) {
	e, err := Parse(`(title contains "Lets")`)
	require.NoError(t, err)
	ok, err := Match(e, testSong(), true)
	require.NoError(t, err)
	assert.True(t, ok)

	e, err = Parse(`(title starts_with "Ready")`)
	require.NoError(t, err)
	ok, err = Match(e, testSong(), true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseRegex(t *testing.T) {
	e, err := Parse(`(title =~ "^Ready.*Go$")`)
	require.NoError(t, err)
	ok, err := Match(e, testSong(), true)
	require.NoError(t, err)
	assert.True(t, ok)

	e, err = Parse(`(title !~ "^Ready.*Go$")`)
	require.NoError(t, err)
	ok, err = Match(e, testSong(), true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseBasePrefix(t *testing.T) {
	e, err := Parse(`(base == "Music/Boards of Canada")`)
	require.NoError(t, err)
	ok, err := Match(e, testSong(), true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseLegacyPositionalForm(t *testing.T) {
	e, err := ParseLegacyArgs([]string{"artist", "Boards of Canada", "album", "Geogaddi"})
	require.NoError(t, err)
	ok, err := Match(e, testSong(), true)
	require.NoError(t, err)
	assert.True(t, ok)

	_, isAnd := e.(*And)
	assert.True(t, isAnd)
}

func TestParseUnterminatedExpressionIsError(t *testing.T) {
	_, err := Parse(`(artist == "Boards of Canada"`)
	assert.Error(t, err)
}

func TestParseUnknownOperatorIsError(t *testing.T) {
	_, err := Parse(`(artist <> "Boards of Canada")`)
	assert.Error(t, err)
}

func TestMatchNilExprAlwaysTrue(t *testing.T) {
	ok, err := Match(nil, testSong(), true)
	require.NoError(t, err)
	assert.True(t, ok)
}
