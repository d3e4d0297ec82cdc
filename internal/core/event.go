package core

// Subsystem is a closed enumeration of MPD idle subsystems. StoredPlaylist
// and Sticker are reserved: no event producer emits them yet (stored
// playlists and stickers are non-goals here, see SPEC_FULL.md §11), but
// they remain valid idle/filter tokens so a client asking to watch them
// does not get an unknown-subsystem error — it just never wakes for them.
type Subsystem string

const (
	SubsystemDatabase       Subsystem = "database"
	SubsystemUpdate         Subsystem = "update"
	SubsystemStoredPlaylist Subsystem = "stored_playlist"
	SubsystemPlaylist       Subsystem = "playlist"
	SubsystemPlayer         Subsystem = "player"
	SubsystemMixer          Subsystem = "mixer"
	SubsystemOutput         Subsystem = "output"
	SubsystemOptions        Subsystem = "options"
	SubsystemPartition      Subsystem = "partition"
	SubsystemSticker        Subsystem = "sticker"
	SubsystemSubscription   Subsystem = "subscription"
	SubsystemMessage        Subsystem = "message"
	SubsystemNeighbor       Subsystem = "neighbor"
	SubsystemMount          Subsystem = "mount"
)

// AllSubsystems lists every subsystem name recognized by idle/tagtypes-like
// validation, in wire order.
var AllSubsystems = []Subsystem{
	SubsystemDatabase, SubsystemUpdate, SubsystemStoredPlaylist, SubsystemPlaylist,
	SubsystemPlayer, SubsystemMixer, SubsystemOutput, SubsystemOptions,
	SubsystemPartition, SubsystemSticker, SubsystemSubscription, SubsystemMessage,
	SubsystemNeighbor, SubsystemMount,
}

// EventKind tags the variant carried by an Event.
type EventKind int

const (
	EventPlayerStateChanged EventKind = iota
	EventSongChanged
	EventPositionChanged
	EventVolumeChanged
	EventSongFinished
	EventQueueChanged
	EventQueueOptionsChanged
	EventDatabaseUpdateStarted
	EventDatabaseUpdateProgress
	EventDatabaseUpdateFinished
	EventOutputsChanged
	EventPartitionChanged
	EventSubscriptionChanged
	EventMessageReceived
	EventMountChanged
)

// Event is a tagged notification broadcast on the event bus. Payload is
// kind-dependent and may be nil for events that carry no data.
type Event struct {
	Kind    EventKind
	Payload any
}

// Subsystems returns the static mapping of an event kind to the idle
// subsystems it belongs to (SPEC_FULL.md §4.6 table). Events with no
// subsystem mapping return nil and never wake an idle client.
func (e Event) Subsystems() []Subsystem {
	switch e.Kind {
	case EventPlayerStateChanged, EventSongChanged, EventPositionChanged:
		return []Subsystem{SubsystemPlayer}
	case EventVolumeChanged:
		return []Subsystem{SubsystemMixer}
	case EventQueueChanged:
		return []Subsystem{SubsystemPlaylist}
	case EventQueueOptionsChanged:
		return []Subsystem{SubsystemOptions}
	case EventDatabaseUpdateStarted, EventDatabaseUpdateProgress:
		return []Subsystem{SubsystemUpdate}
	case EventDatabaseUpdateFinished:
		return []Subsystem{SubsystemDatabase, SubsystemUpdate}
	case EventOutputsChanged:
		return []Subsystem{SubsystemOutput}
	case EventPartitionChanged:
		return []Subsystem{SubsystemPartition}
	case EventSubscriptionChanged:
		return []Subsystem{SubsystemSubscription}
	case EventMessageReceived:
		return []Subsystem{SubsystemMessage}
	case EventMountChanged:
		return []Subsystem{SubsystemMount}
	default:
		return nil
	}
}
