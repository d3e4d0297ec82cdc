package mpd

import (
	"sort"
)

// commandNames lists every command this daemon knows, used by
// commands/notcommands. No command is restricted by authentication, so
// notcommands is always empty.
func commandNames() []string {
	names := make([]string, 0, len(commandTable))
	for name := range commandTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func handleCommands(d *Dispatcher, cs *connState, args []string) (string, error) {
	rb := NewResponseBuilder()
	for _, name := range commandNames() {
		rb.Field("command", name)
	}
	return rb.String(), nil
}

func handleNotCommands(d *Dispatcher, cs *connState, args []string) (string, error) {
	return "", nil
}

// allTagNames lists the tag names tagtypes can enable/disable. It is a
// fixed list and does not match core.Song's fields one for one.
var allTagNames = []string{
	"Artist", "ArtistSort", "Album", "AlbumSort", "AlbumArtist", "AlbumArtistSort",
	"Title", "Track", "Name", "Genre", "Date", "Composer", "Performer",
	"Disc", "Label", "MUSICBRAINZ_ARTISTID", "MUSICBRAINZ_ALBUMID",
}

func handleTagTypes(d *Dispatcher, cs *connState, args []string) (string, error) {
	if len(args) == 0 {
		rb := NewResponseBuilder()
		for _, t := range allTagNames {
			if cs.tags.enabled(t) {
				rb.Field("tagtype", t)
			}
		}
		return rb.String(), nil
	}

	sub := args[0]
	rest := args[1:]
	switch sub {
	case "disable":
		cs.tags.set(rest, false)
	case "enable":
		cs.tags.set(rest, true)
	case "clear":
		cs.tags.clear(allTagNames)
	case "all":
		cs.tags.setAll(allTagNames, true)
	case "available":
		rb := NewResponseBuilder()
		for _, t := range allTagNames {
			rb.Field("tagtype", t)
		}
		return rb.String(), nil
	default:
		return "", NewAckError(AckArg, "unknown tagtypes subcommand")
	}
	return "", nil
}

func handleURLHandlers(d *Dispatcher, cs *connState, args []string) (string, error) {
	rb := NewResponseBuilder()
	rb.Field("handler", "file://")
	return rb.String(), nil
}

func handleDecoders(d *Dispatcher, cs *connState, args []string) (string, error) {
	return "", nil
}

func handleConfig(d *Dispatcher, cs *connState, args []string) (string, error) {
	rb := NewResponseBuilder()
	rb.Field("music_directory", d.MusicDir)
	return rb.String(), nil
}

func handleProtocol(d *Dispatcher, cs *connState, args []string) (string, error) {
	return "", nil
}
