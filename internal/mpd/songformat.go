package mpd

import (
	"fmt"
	"time"

	"github.com/rmpd-project/rmpd/internal/core"
)

// formatSong appends a song's fields to rb, honoring the connection's tag
// mask ("tagtypes disable ..."). file, Last-Modified, Time and duration
// aren't gated by the tag mask since they aren't tag-type fields; file is
// always emitted, the others only when the song has a value for them.
func formatSong(rb *ResponseBuilder, s core.Song, tags *tagMask) {
	rb.Field("file", s.URI)
	if s.LastModified != 0 {
		rb.Field("Last-Modified", time.Unix(s.LastModified, 0).UTC().Format(time.RFC3339))
	}
	if s.Duration != nil {
		rb.Field("Time", int64(s.Duration.Seconds()))
		rb.Field("duration", fmt.Sprintf("%.3f", s.Duration.Seconds()))
	}

	add := func(tag, value string) {
		if value == "" || (tags != nil && !tags.enabled(tag)) {
			return
		}
		rb.Field(tag, value)
	}

	add("Artist", s.Artist)
	add("ArtistSort", s.ArtistSort)
	add("Album", s.Album)
	add("AlbumArtist", s.AlbumArtist)
	add("AlbumArtistSort", s.AlbumArtistSort)
	add("Title", s.Title)
	add("Track", s.Track)
	add("Disc", s.Disc)
	add("Date", s.Date)
	add("OriginalDate", s.OriginalDate)
	add("Genre", s.Genre)
	add("Composer", s.Composer)
	add("Performer", s.Performer)
	add("Comment", s.Comment)
	add("Label", s.Label)
	add("MUSICBRAINZ_TRACKID", s.MusicBrainzTrackID)
	add("MUSICBRAINZ_ALBUMID", s.MusicBrainzAlbumID)
	add("MUSICBRAINZ_ARTISTID", s.MusicBrainzArtistID)
	add("MUSICBRAINZ_ALBUMARTISTID", s.MusicBrainzAlbumArtistID)
}
