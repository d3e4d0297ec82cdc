// Package scanner walks the configured music directory, extracts tags with
// dhowden/tag, and feeds discovered songs to the library catalog. It also
// watches the tree with fsnotify so update/rescan can be followed by
// incremental picks-up of editor-style writes (temp file + rename) without
// a full rescan. Grounded on the teacher's internal/decoder (format
// probing) and cmd/direttampd/main.go's startup directory walk, generalized
// from ffmpeg-probed PCM format to tag-derived metadata only; songs are
// reported without an audio format (PCM probing is the decoder's job, out
// of scope here, see DESIGN.md).
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/dhowden/tag"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/rmpd-project/rmpd/internal/core"
)

// audioExtensions lists the file extensions the scanner attempts to tag.
// Anything else is skipped as non-audio.
var audioExtensions = map[string]bool{
	".flac": true, ".mp3": true, ".m4a": true, ".mp4": true,
	".ogg": true, ".oga": true, ".wav": true,
}

// Scanner walks a music root directory and reports songs it discovers.
type Scanner struct {
	root string
	log  *logrus.Entry

	// seen is a probabilistic membership filter used to skip re-tagging
	// files unchanged since the previous scan, trading a small false-
	// positive rate (occasionally skipping a new or changed file) for O(1)
	// memory instead of keeping every prior (path, mtime) pair.
	seen *bloom.BloomFilter
}

// New returns a Scanner rooted at root. expectedFiles sizes the bloom
// filter's bit array; pass a rough upper bound on library size.
func New(root string, expectedFiles uint, log *logrus.Entry) *Scanner {
	return &Scanner{
		root: root,
		log:  log,
		seen: bloom.NewWithEstimates(expectedFiles, 0.01),
	}
}

// Scan walks the whole tree and returns every song found. uri is
// music-root-relative with forward slashes, matching the queue/library's
// URI convention.
func (s *Scanner) Scan() ([]core.Song, error) {
	var songs []core.Song
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !audioExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.log.WithError(err).WithField("path", path).Warn("stat failed during scan")
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		uri := filepath.ToSlash(rel)

		fingerprint := uri + "|" + strconv.FormatInt(info.ModTime().Unix(), 10)
		if s.seen.TestString(fingerprint) {
			return nil
		}
		s.seen.AddString(fingerprint)

		song, err := s.tagFile(path, uri, info)
		if err != nil {
			s.log.WithError(err).WithField("path", path).Debug("tag extraction failed, indexing bare")
			song = core.Song{URI: uri, LastModified: info.ModTime().Unix(), AddedAt: time.Now().Unix()}
		}
		songs = append(songs, song)
		return nil
	})
	return songs, err
}

func (s *Scanner) tagFile(path, uri string, info os.FileInfo) (core.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Song{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return core.Song{}, err
	}

	track, _ := m.Track()
	disc, _ := m.Disc()
	mb := tag.MusicBrainz(&m)

	song := core.Song{
		URI:                uri,
		Title:              m.Title(),
		Artist:             m.Artist(),
		Album:              m.Album(),
		AlbumArtist:        m.AlbumArtist(),
		Composer:           m.Composer(),
		Genre:              m.Genre(),
		Date:               yearString(m.Year()),
		LastModified:       info.ModTime().Unix(),
		AddedAt:            time.Now().Unix(),
		MusicBrainzTrackID: mb.Track,
		MusicBrainzAlbumID: mb.Album,
	}
	if track > 0 {
		song.Track = strconv.Itoa(track)
	}
	if disc > 0 {
		song.Disc = strconv.Itoa(disc)
	}
	return song, nil
}

func yearString(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}

// Watch starts an fsnotify watcher over the whole tree and calls onChange
// with the relative URI whenever a file is created, written, or renamed
// into place. The watcher is non-recursive per fsnotify's own limitation,
// so every directory is added explicitly.
func (s *Scanner) Watch(onChange func(uri string)) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if !audioExtensions[strings.ToLower(filepath.Ext(event.Name))] {
					continue
				}
				rel, err := filepath.Rel(s.root, event.Name)
				if err != nil {
					continue
				}
				onChange(filepath.ToSlash(rel))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.WithError(err).Warn("watcher error")
			}
		}
	}()

	return w, nil
}
