package mpd

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rmpd-project/rmpd/internal/artcache"
	"github.com/rmpd-project/rmpd/internal/broker"
	"github.com/rmpd-project/rmpd/internal/core"
	"github.com/rmpd-project/rmpd/internal/library"
	"github.com/rmpd-project/rmpd/internal/mount"
	"github.com/rmpd-project/rmpd/internal/outputs"
	"github.com/rmpd-project/rmpd/internal/player"
	"github.com/rmpd-project/rmpd/internal/queue"
)

// handlerFunc executes one command. It returns the response body without
// a trailing "OK\n" terminator — Dispatch and runBatch add that uniformly
// so individual handlers don't need to know whether they're running
// standalone or inside a command list.
type handlerFunc func(d *Dispatcher, cs *connState, args []string) (string, error)

// commandSpec declares a command's argument arity and whether it needs a
// configured music directory to run.
type commandSpec struct {
	minArgs, maxArgs int // maxArgs -1 means unbounded
	requiresLibrary  bool
	handler          handlerFunc
}

// Dispatcher holds every collaborator a handler might need and routes
// tokenized command lines to them. One Dispatcher is shared by every
// connection; all the state it touches is already synchronized by its own
// collaborators (queue, player, library, ...).
type Dispatcher struct {
	Log       *logrus.Entry
	Bus       *core.EventBus
	Broker    *broker.Broker
	Queue     *queue.Queue
	Player    *player.Player
	Library   *library.Library
	Outputs   *outputs.Registry
	Mounts    *mount.Registry
	ArtCache  *artcache.Cache // nil disables albumart/readpicture
	MusicDir  string
	Password  string
	StartedAt time.Time

	// ScanFunc performs a filesystem scan, wired by cmd/rmpd at startup.
	// nil means "update"/"rescan" always fail with ACK 52.
	ScanFunc func(ctx context.Context, rescan bool) ([]core.Song, error)

	// Shutdown is closed when "kill" is received, the accept loop's signal
	// for a graceful stop (SPEC_FULL.md §11 "kill triggers the same
	// graceful shutdown path as SIGTERM").
	Shutdown chan struct{}
}

// NewDispatcher wires a Dispatcher from its collaborators.
func NewDispatcher(log *logrus.Entry, bus *core.EventBus, br *broker.Broker, q *queue.Queue, p *player.Player, lib *library.Library, out *outputs.Registry, mnt *mount.Registry, musicDir, password string) *Dispatcher {
	return &Dispatcher{
		Log:       log,
		Bus:       bus,
		Broker:    br,
		Queue:     q,
		Player:    p,
		Library:   lib,
		Outputs:   out,
		Mounts:    mnt,
		MusicDir:  musicDir,
		Password:  password,
		StartedAt: time.Now(),
		Shutdown:  make(chan struct{}),
	}
}

// NewConnState builds a fresh per-connection state bound to this
// dispatcher's broker.
func (d *Dispatcher) NewConnState() *connState {
	return newConnState(d.Broker)
}

// Dispatch handles one line of input from a connection already past the
// idle special-case (server.go intercepts "idle ..." before calling this).
// It returns the full response text (terminator included) and whether the
// connection should close after writing it.
func (d *Dispatcher) Dispatch(cs *connState, line string) (resp string, closeConn bool) {
	args, err := Tokenize(line)
	if err != nil {
		return NewAckError(AckArg, err.Error()).format(0), false
	}
	if len(args) == 0 {
		return NewAckError(AckUnknown, "unknown command").format(0), false
	}
	name := args[0]
	rest := args[1:]

	// A nested command_list_begin/ok_begin is checked before anything else
	// so its ACK index reflects how many commands were already queued in
	// the outer batch, not a hardcoded 0.
	if cs.inBatch {
		switch name {
		case "command_list_begin", "command_list_ok_begin":
			idx := len(cs.batchCmds)
			cs.inBatch, cs.batchCmds = false, nil
			return (&AckError{Code: AckUnknown, Command: name, Message: "nested command list"}).format(idx), false
		case "command_list_end":
			cmds, ok := cs.batchCmds, cs.batchOK
			cs.inBatch, cs.batchOK, cs.batchCmds = false, false, nil
			return d.runBatch(cs, cmds, ok), false
		case "close":
			return "", true
		default:
			cs.batchCmds = append(cs.batchCmds, args)
			return "", false
		}
	}

	switch name {
	case "command_list_begin":
		cs.inBatch, cs.batchOK, cs.batchCmds = true, false, nil
		return "", false
	case "command_list_ok_begin":
		cs.inBatch, cs.batchOK, cs.batchCmds = true, true, nil
		return "", false
	case "command_list_end":
		return NewAckError(AckNotList, "command_list_end without command_list_begin").format(0), false
	case "close":
		return "", true
	}

	body, err := d.dispatchOne(cs, name, rest)
	if err != nil {
		return formatError(err, name, 0), false
	}
	return body + "OK\n", name == "kill"
}

func (d *Dispatcher) runBatch(cs *connState, cmds [][]string, okMode bool) string {
	if len(cmds) == 0 {
		return "OK\n"
	}
	var b strings.Builder
	for i, args := range cmds {
		name := args[0]
		body, err := d.dispatchOne(cs, name, args[1:])
		if err != nil {
			return formatError(err, name, i)
		}
		b.WriteString(body)
		if okMode {
			b.WriteString("list_OK\n")
		}
	}
	b.WriteString("OK\n")
	return b.String()
}

func (d *Dispatcher) dispatchOne(cs *connState, name string, args []string) (string, error) {
	spec, ok := commandTable[name]
	if !ok {
		return "", NewAckError(AckUnknown, "unknown command")
	}
	if len(args) < spec.minArgs || (spec.maxArgs >= 0 && len(args) > spec.maxArgs) {
		return "", NewAckError(AckArg, "wrong number of arguments")
	}
	if spec.requiresLibrary && d.MusicDir == "" {
		return "", NewAckError(AckNoExist, "no music directory configured")
	}
	return spec.handler(d, cs, args)
}

func formatError(err error, name string, index int) string {
	if ae, ok := err.(*AckError); ok {
		ae.Command = name
		return ae.format(index)
	}
	return (&AckError{Code: AckSystem, Command: name, Message: err.Error()}).format(index)
}

// commandTable is the static dispatch table (SPEC_FULL.md §4.7). Handlers
// live alongside their concern in handlers_*.go; this map is the single
// place that wires a wire command name to its spec.
var commandTable = map[string]commandSpec{
	"ping": {0, 0, false, handlePing},

	"status":      {0, 0, false, handleStatus},
	"stats":       {0, 0, false, handleStats},
	"currentsong": {0, 0, false, handleCurrentSong},
	"clearerror":  {0, 0, false, handleClearError},
	"password":    {0, 1, false, handlePassword},
	"kill":        {0, 0, false, handleKill},
	"binarylimit": {1, 1, false, handleBinaryLimit},

	"setvol":    {1, 1, false, handleSetVol},
	"pause":     {0, 1, false, handlePause},
	"play":      {0, 1, false, handlePlay},
	"playid":    {0, 1, false, handlePlayID},
	"stop":      {0, 0, false, handleStop},
	"next":      {0, 0, false, handleNext},
	"previous":  {0, 0, false, handlePrevious},
	"seekcur":   {1, 1, false, handleSeekCur},
	"repeat":    {1, 1, false, handleRepeat},
	"random":    {1, 1, false, handleRandom},
	"single":    {1, 1, false, handleSingle},
	"consume":   {1, 1, false, handleConsume},
	"crossfade": {1, 1, false, handleCrossfade},
	"mixrampdb":    {1, 1, false, handleMixrampDB},
	"mixrampdelay": {1, 1, false, handleMixrampDelay},

	"add":          {1, 2, false, handleAdd},
	"addid":        {1, 2, false, handleAddID},
	"delete":       {1, 1, false, handleDelete},
	"deleteid":     {1, 1, false, handleDeleteID},
	"move":         {2, 2, false, handleMove},
	"moveid":       {2, 2, false, handleMoveID},
	"swap":         {2, 2, false, handleSwap},
	"swapid":       {2, 2, false, handleSwapID},
	"shuffle":      {0, 0, false, handleShuffle},
	"clear":        {0, 0, false, handleClear},
	"playlistinfo": {0, 1, false, handlePlaylistInfo},
	"playlistid":   {0, 1, false, handlePlaylistID},

	"outputs":       {0, 0, false, handleOutputs},
	"enableoutput":  {1, 1, false, handleEnableOutput},
	"disableoutput": {1, 1, false, handleDisableOutput},
	"toggleoutput":  {1, 1, false, handleToggleOutput},
	"outputset":     {3, 3, false, handleOutputSet},

	"find":         {1, -1, true, handleFind},
	"search":       {1, -1, true, handleSearch},
	"count":        {1, -1, true, handleCount},
	"list":         {1, -1, true, handleList},
	"lsinfo":       {0, 1, true, handleLsInfo},
	"listall":      {0, 1, true, handleListAll},
	"listallinfo":  {0, 1, true, handleListAllInfo},
	"listfiles":    {0, 1, true, handleListFiles},
	"update":       {0, 1, true, handleUpdate},
	"rescan":       {0, 1, true, handleRescan},
	"getfingerprint": {1, 1, true, handleGetFingerprint},
	"albumart":       {2, 2, true, handleAlbumArt},
	"readpicture":    {2, 2, true, handleReadPicture},

	"subscribe":    {1, 1, false, handleSubscribe},
	"unsubscribe":  {1, 1, false, handleUnsubscribe},
	"channels":     {0, 0, false, handleChannels},
	"readmessages": {0, 0, false, handleReadMessages},
	"sendmessage":  {2, 2, false, handleSendMessage},

	"commands":    {0, 0, false, handleCommands},
	"notcommands": {0, 0, false, handleNotCommands},
	"tagtypes":    {0, -1, false, handleTagTypes},
	"urlhandlers": {0, 0, false, handleURLHandlers},
	"decoders":    {0, 0, false, handleDecoders},
	"config":      {0, 0, false, handleConfig},
	"protocol":    {0, -1, false, handleProtocol},

	"partition":      {1, 1, false, handlePartition},
	"listpartitions": {0, 0, false, handleListPartitions},
	"newpartition":   {1, 1, false, handleNewPartition},
	"delpartition":   {1, 1, false, handleDelPartition},
	"moveoutput":     {1, 1, false, handleMoveOutput},

	"mount":         {2, 2, false, handleMount},
	"unmount":       {1, 1, false, handleUnmount},
	"listmounts":    {0, 0, false, handleListMounts},
	"listneighbors": {0, 0, false, handleListNeighbors},

	"sticker": {2, -1, false, handleSticker},
}
