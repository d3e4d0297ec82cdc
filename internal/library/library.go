// Package library is the song catalog collaborator: find/search/count,
// directory listing, and the update/rescan job lifecycle (SPEC_FULL.md
// §4.9). The in-memory index is a plain map guarded by an RWMutex, mirroring
// the lock discipline of internal/queue; modernc.org/sqlite persists the
// catalog across restarts so a daemon restart doesn't force a full rescan
// before it can answer queries, grounded on the teacher's disk-persistent
// cache design in internal/cache.DiskCache (persistence across sessions)
// generalized from audio bytes to song metadata rows.
package library

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rmpd-project/rmpd/internal/core"
	"github.com/rmpd-project/rmpd/internal/filter"
)

// Library is the in-memory song catalog, optionally backed by a sqlite
// database for cross-restart persistence.
type Library struct {
	mu    sync.RWMutex
	songs map[string]core.Song // keyed by URI
	nextID uint32

	db *sql.DB

	lastUpdate int64
	jobCounter uint32
	activeJob  atomic.Value // holds *uint32, nil when idle
}

// Open opens (creating if necessary) the sqlite database at dbPath and
// loads any previously persisted catalog. dbPath may be empty, in which
// case the library is memory-only (tests, or music-directory-less setups).
func Open(dbPath string) (*Library, error) {
	l := &Library{songs: make(map[string]core.Song)}
	l.activeJob.Store((*uint32)(nil))

	if dbPath == "" {
		return l, nil
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("library: open sqlite: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("library: apply schema: %w", err)
	}
	l.db = db

	if err := l.loadFromDB(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS songs (
	uri TEXT PRIMARY KEY,
	id INTEGER NOT NULL,
	title TEXT, artist TEXT, album TEXT, album_artist TEXT,
	track TEXT, disc TEXT, date TEXT, genre TEXT, composer TEXT,
	duration_seconds REAL,
	added_at INTEGER, last_modified INTEGER
);
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT
);
`

func (l *Library) loadFromDB() error {
	rows, err := l.db.Query(`SELECT uri, id, title, artist, album, album_artist, track, disc, date, genre, composer, duration_seconds, added_at, last_modified FROM songs`)
	if err != nil {
		return fmt.Errorf("library: load songs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s core.Song
		var durationSeconds sql.NullFloat64
		if err := rows.Scan(&s.URI, &s.ID, &s.Title, &s.Artist, &s.Album, &s.AlbumArtist,
			&s.Track, &s.Disc, &s.Date, &s.Genre, &s.Composer, &durationSeconds,
			&s.AddedAt, &s.LastModified); err != nil {
			return fmt.Errorf("library: scan song row: %w", err)
		}
		if durationSeconds.Valid {
			d := time.Duration(durationSeconds.Float64 * float64(time.Second))
			s.Duration = &d
		}
		l.songs[s.URI] = s
		if s.ID >= l.nextID {
			l.nextID = s.ID + 1
		}
	}

	row := l.db.QueryRow(`SELECT value FROM meta WHERE key = 'last_update'`)
	var v string
	if err := row.Scan(&v); err == nil {
		fmt.Sscanf(v, "%d", &l.lastUpdate)
	}
	return rows.Err()
}

func (l *Library) persist(s core.Song) {
	if l.db == nil {
		return
	}
	var durationSeconds any
	if s.Duration != nil {
		durationSeconds = s.Duration.Seconds()
	}
	_, _ = l.db.Exec(`INSERT INTO songs (uri, id, title, artist, album, album_artist, track, disc, date, genre, composer, duration_seconds, added_at, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET id=excluded.id, title=excluded.title, artist=excluded.artist,
			album=excluded.album, album_artist=excluded.album_artist, track=excluded.track,
			disc=excluded.disc, date=excluded.date, genre=excluded.genre, composer=excluded.composer,
			duration_seconds=excluded.duration_seconds, added_at=excluded.added_at, last_modified=excluded.last_modified`,
		s.URI, s.ID, s.Title, s.Artist, s.Album, s.AlbumArtist, s.Track, s.Disc, s.Date, s.Genre, s.Composer,
		durationSeconds, s.AddedAt, s.LastModified)
}

// Index upserts a song discovered by the scanner, assigning it a stable id
// if it's new (first scan) or keeping its existing id (rescan of an
// already-known URI).
func (l *Library) Index(song core.Song) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.songs[song.URI]; ok {
		song.ID = existing.ID
		if song.AddedAt == 0 {
			song.AddedAt = existing.AddedAt
		}
	} else {
		song.ID = l.nextID
		l.nextID++
	}
	l.songs[song.URI] = song
	l.persist(song)
}

// Remove drops a URI from the catalog, e.g. when a rescan no longer finds
// the file.
func (l *Library) Remove(uri string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.songs, uri)
	if l.db != nil {
		_, _ = l.db.Exec(`DELETE FROM songs WHERE uri = ?`, uri)
	}
}

// SongByURI returns the catalog entry for uri, if present.
func (l *Library) SongByURI(uri string) (core.Song, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.songs[uri]
	return s, ok
}

// CountResult is the aggregate returned by Count/stats.
type CountResult struct {
	Songs       int
	Artists     int
	Albums      int
	PlaytimeSec float64
}

// Count returns the catalog-wide song/artist/album counts and total
// playtime, used by both "stats" and bare "count".
func (l *Library) Count() CountResult {
	l.mu.RLock()
	defer l.mu.RUnlock()

	artists := map[string]bool{}
	albums := map[string]bool{}
	var playtime float64
	for _, s := range l.songs {
		if s.Artist != "" {
			artists[s.Artist] = true
		}
		if s.Album != "" {
			albums[s.AlbumArtist+"\x00"+s.Album] = true
		}
		if s.Duration != nil {
			playtime += s.Duration.Seconds()
		}
	}
	return CountResult{
		Songs:       len(l.songs),
		Artists:     len(artists),
		Albums:      len(albums),
		PlaytimeSec: playtime,
	}
}

// LastUpdateEpoch returns the epoch seconds of the last completed update.
func (l *Library) LastUpdateEpoch() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastUpdate
}

// markUpdated records the completion time of an update job and persists it.
func (l *Library) markUpdated(at int64) {
	l.mu.Lock()
	l.lastUpdate = at
	l.mu.Unlock()
	if l.db != nil {
		_, _ = l.db.Exec(`INSERT INTO meta (key, value) VALUES ('last_update', ?)
			ON CONFLICT(key) DO UPDATE SET value=excluded.value`, fmt.Sprintf("%d", at))
	}
}

// ListAllSongs returns every song in the catalog, sorted by URI for a
// stable listallinfo/listall traversal order.
func (l *Library) ListAllSongs() []core.Song {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]core.Song, 0, len(l.songs))
	for _, s := range l.songs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// DirEntry is a single lsinfo row: either a subdirectory or a song.
type DirEntry struct {
	IsDirectory bool
	Name        string // directory-relative basename
	Song        core.Song
}

// ListDirectory lists the immediate children of uri (empty string for the
// music root): subdirectories first, then songs, both sorted by name.
func (l *Library) ListDirectory(uri string) []DirEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	prefix := strings.Trim(uri, "/")
	dirs := map[string]bool{}
	var songs []core.Song

	for p, s := range l.songs {
		rel := p
		if prefix != "" {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = strings.TrimPrefix(p, prefix+"/")
		}
		if idx := strings.Index(rel, "/"); idx >= 0 {
			dirs[rel[:idx]] = true
			continue
		}
		songs = append(songs, s)
	}

	out := make([]DirEntry, 0, len(dirs)+len(songs))
	dirNames := make([]string, 0, len(dirs))
	for d := range dirs {
		dirNames = append(dirNames, d)
	}
	sort.Strings(dirNames)
	for _, d := range dirNames {
		out = append(out, DirEntry{IsDirectory: true, Name: d})
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].URI < songs[j].URI })
	for _, s := range songs {
		out = append(out, DirEntry{Name: path.Base(s.URI), Song: s})
	}
	return out
}

// Find evaluates expr against every catalog entry case-sensitively (the
// "find" command's semantics).
func (l *Library) Find(expr filter.Expr) ([]core.Song, error) {
	return l.query(expr, true)
}

// Search evaluates expr case-insensitively (the "search" command).
func (l *Library) Search(expr filter.Expr) ([]core.Song, error) {
	return l.query(expr, false)
}

func (l *Library) query(expr filter.Expr, caseSensitive bool) ([]core.Song, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []core.Song
	for _, s := range l.songs {
		song := s
		ok, err := filter.Match(expr, &song, caseSensitive)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out, nil
}

// CountFiltered evaluates expr case-insensitively and returns the matching
// song count and summed playtime ("count EXPR").
func (l *Library) CountFiltered(expr filter.Expr) (songs int, playtimeSec float64, err error) {
	matches, err := l.Search(expr)
	if err != nil {
		return 0, 0, err
	}
	for _, s := range matches {
		if s.Duration != nil {
			playtimeSec += s.Duration.Seconds()
		}
	}
	return len(matches), playtimeSec, nil
}

// List returns the distinct values of tag across songs matching expr
// (nil expr matches everything), for the "list TAG [EXPR]" command.
func (l *Library) List(tag string, expr filter.Expr) ([]string, error) {
	matches, err := l.query(expr, false)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, s := range matches {
		v, ok := s.Tag(tag)
		if !ok {
			continue
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}

// UpdateJob tracks a single in-flight update/rescan.
type UpdateJob struct {
	ID        uint32
	URI       string
	Rescan    bool
	StartedAt int64
}

// StartUpdate records a new update job and returns its id, or an error if
// one is already running (ACK UpdateAlready per SPEC_FULL.md §7).
func (l *Library) StartUpdate(ctx context.Context, uri string, rescan bool, scan func(ctx context.Context) ([]core.Song, error)) (uint32, error) {
	if l.activeJob.Load().(*uint32) != nil {
		return 0, errUpdateAlready
	}

	l.mu.Lock()
	l.jobCounter++
	id := l.jobCounter
	l.mu.Unlock()
	l.activeJob.Store(&id)

	go func() {
		defer l.activeJob.Store((*uint32)(nil))
		songs, err := scan(ctx)
		if err != nil {
			return
		}
		for _, s := range songs {
			l.Index(s)
		}
		l.markUpdated(time.Now().Unix())
	}()

	return id, nil
}

// ActiveUpdateJobID returns the id of the in-flight update job, or nil if
// idle (surfaced as status's updating_db field).
func (l *Library) ActiveUpdateJobID() *uint32 {
	return l.activeJob.Load().(*uint32)
}

var errUpdateAlready = fmt.Errorf("update already in progress")

// ErrUpdateAlready is the sentinel the dispatcher maps to ACK UpdateAlready.
func ErrUpdateAlready() error { return errUpdateAlready }

// Close releases the sqlite handle, if any.
func (l *Library) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}
