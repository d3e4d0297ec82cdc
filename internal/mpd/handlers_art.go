package mpd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dhowden/tag"
)

// handleAlbumArt and handleReadPicture both serve a song's embedded
// picture in binarylimit-sized chunks; this daemon has no separate
// sibling-cover-file lookup, so the two commands share one implementation.
func handleAlbumArt(d *Dispatcher, cs *connState, args []string) (string, error) {
	return serveArt(d, cs, args)
}

func handleReadPicture(d *Dispatcher, cs *connState, args []string) (string, error) {
	return serveArt(d, cs, args)
}

func serveArt(d *Dispatcher, cs *connState, args []string) (string, error) {
	uri := args[0]
	offset, err := strconv.Atoi(args[1])
	if err != nil || offset < 0 {
		return "", NewAckError(AckArg, "invalid offset")
	}
	if d.ArtCache == nil {
		return "", NewAckError(AckNoExist, "no art cache configured")
	}
	if _, ok := d.Library.SongByURI(uri); !ok {
		return "", NewAckError(AckNoExist, "no such song")
	}

	data, mime, ok := d.ArtCache.Get(uri)
	if !ok {
		data, mime, err = extractArt(d.MusicDir, uri)
		if err != nil {
			return "", NewAckError(AckNoExist, "no art found")
		}
		_ = d.ArtCache.Put(uri, data, mime)
	}

	if len(data) == 0 {
		return "", NewAckError(AckNoExist, "no art found")
	}
	if offset >= len(data) {
		return "", NewAckError(AckArg, "offset beyond art size")
	}
	end := offset + cs.binaryLimit
	if end > len(data) {
		end = len(data)
	}
	chunk := data[offset:end]

	rb := NewResponseBuilder()
	rb.Field("size", len(data))
	rb.Field("type", mime)
	rb.Field("binary", len(chunk))
	rb.Raw(string(chunk))
	rb.Raw("\n")
	return rb.String(), nil
}

func extractArt(musicDir, uri string) (data []byte, mime string, err error) {
	f, err := os.Open(filepath.Join(musicDir, uri))
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, "", err
	}
	pic := m.Picture()
	if pic == nil {
		return nil, "", fmt.Errorf("no embedded picture in %s", uri)
	}
	return pic.Data, pic.MIMEType, nil
}
