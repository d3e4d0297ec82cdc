// Package filter parses and evaluates the MPD filter mini-language used by
// find/search/count/searchcount/findadd/searchadd (SPEC_FULL.md §4.2). The
// tokenizer style (quote handling, escape rules) mirrors the command
// parser in internal/mpd/parser.go, since the filter grammar is itself
// quoted-argument based.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rmpd-project/rmpd/internal/core"
)

// Op is a filter atom's comparison operator.
type Op int

const (
	OpEquals Op = iota
	OpNotEquals
	OpContains
	OpRegexMatch
	OpRegexNotMatch
	OpStartsWith
)

// Expr is the filter AST: an atom, a conjunction, or a negation.
type Expr interface {
	eval(song *core.Song, caseSensitive bool) (bool, error)
}

// Atom is a single `(TAG OP VALUE)` comparison.
type Atom struct {
	Tag   string
	Op    Op
	Value string

	compiledRegex *regexp.Regexp // for =~ / !~, compiled once at parse time
}

// And is a conjunction of sub-expressions: `(EXPR AND EXPR ...)`.
type And struct {
	Terms []Expr
}

// Not negates a sub-expression: `(!EXPR)`.
type Not struct {
	Term Expr
}

// specialTag identifies the non-song-tag atoms the evaluator handles
// separately from core.Song.Tag lookups.
const (
	tagFile           = "file"
	tagBase           = "base"
	tagModifiedSince  = "modified-since"
	tagAddedSince     = "added-since"
	tagAudioFormat    = "AudioFormat"
)

// songTagNames are the tag spellings core.Song.Tag recognizes.
var songTagNames = []string{"Artist", "ArtistSort", "Album", "AlbumArtist", "AlbumArtistSort",
	"Title", "Track", "Disc", "Date", "OriginalDate", "Genre", "Composer", "Performer", "Comment",
	"Label", "MUSICBRAINZ_TRACKID", "MUSICBRAINZ_ALBUMID", "MUSICBRAINZ_ARTISTID", "MUSICBRAINZ_ALBUMARTISTID"}

// canonicalTag maps a tag name given in any letter case ("artist") to the
// spelling core.Song.Tag expects ("Artist").
func canonicalTag(name string) string {
	for _, t := range songTagNames {
		if strings.EqualFold(name, t) {
			return t
		}
	}
	return name
}

func (a *Atom) eval(song *core.Song, caseSensitive bool) (bool, error) {
	var actual string
	switch a.Tag {
	case tagFile, "Filename":
		actual = song.URI
	case tagBase:
		actual = song.URI
		return strings.HasPrefix(normalize(actual, caseSensitive), normalize(a.Value, caseSensitive)), nil
	case tagModifiedSince:
		return song.LastModified >= parseEpoch(a.Value), nil
	case tagAddedSince:
		return song.AddedAt >= parseEpoch(a.Value), nil
	case tagAudioFormat:
		if song.Audio == nil {
			return false, nil
		}
		actual = fmt.Sprintf("%d:%d:%d", song.Audio.SampleRate, song.Audio.BitsPerSample, song.Audio.Channels)
	default:
		v, ok := song.Tag(canonicalTag(a.Tag))
		if !ok {
			return false, nil
		}
		actual = v
	}

	switch a.Op {
	case OpEquals:
		return normalize(actual, caseSensitive) == normalize(a.Value, caseSensitive), nil
	case OpNotEquals:
		return normalize(actual, caseSensitive) != normalize(a.Value, caseSensitive), nil
	case OpContains:
		return strings.Contains(normalize(actual, caseSensitive), normalize(a.Value, caseSensitive)), nil
	case OpStartsWith:
		return strings.HasPrefix(normalize(actual, caseSensitive), normalize(a.Value, caseSensitive)), nil
	case OpRegexMatch:
		return a.compiledRegex.MatchString(actual), nil
	case OpRegexNotMatch:
		return !a.compiledRegex.MatchString(actual), nil
	default:
		return false, fmt.Errorf("unsupported filter operator")
	}
}

func (n *And) eval(song *core.Song, caseSensitive bool) (bool, error) {
	for _, t := range n.Terms {
		ok, err := t.eval(song, caseSensitive)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (n *Not) eval(song *core.Song, caseSensitive bool) (bool, error) {
	ok, err := n.Term.eval(song, caseSensitive)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func normalize(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

func parseEpoch(s string) int64 {
	var v int64
	fmt.Sscanf(s, "%d", &v)
	return v
}

// Match evaluates the filter against a song. caseSensitive=true for find,
// false for search, per SPEC_FULL.md §4.2.
func Match(e Expr, song *core.Song, caseSensitive bool) (bool, error) {
	if e == nil {
		return true, nil
	}
	return e.eval(song, caseSensitive)
}
