// Package core holds the data types shared by every collaborator: songs,
// audio format descriptors, and the event/subsystem vocabulary the idle
// coordinator watches.
package core

import "time"

// Song is an immutable catalog entry, keyed by a non-negative integer id
// assigned by the library on first index and stable across rescans as long
// as the URI does not change.
type Song struct {
	ID  uint32
	URI string // filesystem-relative, UTF-8

	Duration *time.Duration

	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Track       string
	Disc        string
	Date        string
	Genre       string
	Composer    string
	Performer   string
	Comment     string

	MusicBrainzTrackID       string
	MusicBrainzAlbumID       string
	MusicBrainzArtistID      string
	MusicBrainzAlbumArtistID string
	MusicBrainzReleaseGroup  string
	MusicBrainzReleaseTrack  string

	ArtistSort      string
	AlbumArtistSort string
	OriginalDate    string
	Label           string

	Audio *AudioFormat

	ReplayGainTrackGain *float32
	ReplayGainTrackPeak *float32
	ReplayGainAlbumGain *float32
	ReplayGainAlbumPeak *float32

	AddedAt      int64 // seconds since epoch
	LastModified int64 // seconds since epoch
}

// AudioFormat describes the decoded stream properties of a Song, as
// reported by the metadata extractor or, failing that, the decoder.
type AudioFormat struct {
	SampleRate    uint32
	Channels      uint8
	BitsPerSample uint8
	Bitrate       uint32 // kbps, 0 if unknown
}

// DisplayTitle returns Title, falling back to a caller-supplied default
// (typically the URI's base name) when no tag is present.
func (s *Song) DisplayTitle(fallback string) string {
	if s.Title != "" {
		return s.Title
	}
	return fallback
}

// Tag returns the value of a standard tag by its MPD field name (case as
// used on the wire: "Artist", "AlbumArtist", ...), and whether it is set.
// Used by the filter expression evaluator and by tagtypes-gated rendering.
func (s *Song) Tag(name string) (string, bool) {
	var v string
	switch name {
	case "Artist":
		v = s.Artist
	case "ArtistSort":
		v = s.ArtistSort
	case "Album":
		v = s.Album
	case "AlbumArtist":
		v = s.AlbumArtist
	case "AlbumArtistSort":
		v = s.AlbumArtistSort
	case "Title":
		v = s.Title
	case "Track":
		v = s.Track
	case "Disc":
		v = s.Disc
	case "Date":
		v = s.Date
	case "OriginalDate":
		v = s.OriginalDate
	case "Genre":
		v = s.Genre
	case "Composer":
		v = s.Composer
	case "Performer":
		v = s.Performer
	case "Comment":
		v = s.Comment
	case "Label":
		v = s.Label
	case "MUSICBRAINZ_TRACKID":
		v = s.MusicBrainzTrackID
	case "MUSICBRAINZ_ALBUMID":
		v = s.MusicBrainzAlbumID
	case "MUSICBRAINZ_ARTISTID":
		v = s.MusicBrainzArtistID
	case "MUSICBRAINZ_ALBUMARTISTID":
		v = s.MusicBrainzAlbumArtistID
	case "file":
		v = s.URI
	default:
		return "", false
	}
	return v, v != ""
}
