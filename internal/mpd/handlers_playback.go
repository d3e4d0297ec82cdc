package mpd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rmpd-project/rmpd/internal/player"
	"github.com/rmpd-project/rmpd/internal/status"
)

func handlePing(d *Dispatcher, cs *connState, args []string) (string, error) {
	return "", nil
}

func handleStatus(d *Dispatcher, cs *connState, args []string) (string, error) {
	st := d.Player.Status()
	rb := NewResponseBuilder()
	rb.Field("volume", st.Volume)
	rb.Field("repeat", boolToBit(st.Repeat))
	rb.Field("random", boolToBit(st.Random))
	rb.Field("single", st.Single.String())
	rb.Field("consume", st.Consume.String())
	rb.Field("partition", "default")
	rb.Field("playlist", st.PlaylistVersion)
	rb.Field("playlistlength", st.PlaylistLength)
	rb.Field("mixrampdb", st.MixrampDB)
	rb.Field("mixrampdelay", st.MixrampDelay)
	rb.Field("state", st.State.String())

	if st.CurrentSong != nil {
		rb.Field("song", st.CurrentSong.Position)
		rb.Field("songid", st.CurrentSong.ID)
		if st.Duration >= 0 {
			elapsed := st.Elapsed
			if elapsed < 0 {
				elapsed = 0
			}
			rb.Field("time", fmt.Sprintf("%d:%d", int64(elapsed), int64(st.Duration)))
			rb.Field("duration", fmt.Sprintf("%.3f", st.Duration))
		}
		if st.Elapsed >= 0 {
			rb.Field("elapsed", fmt.Sprintf("%.3f", st.Elapsed))
		}
		if st.Bitrate > 0 {
			rb.Field("bitrate", st.Bitrate)
		}
		if st.Audio != nil {
			rb.Field("audio", fmt.Sprintf("%d:%d:%d", st.Audio.SampleRate, st.Audio.BitsPerSample, st.Audio.Channels))
		}
	}
	if st.NextSong != nil {
		rb.Field("nextsong", st.NextSong.Position)
		rb.Field("nextsongid", st.NextSong.ID)
	}
	if id := d.Library.ActiveUpdateJobID(); id != nil {
		rb.Field("updating_db", *id)
	}
	if st.LastError != "" {
		rb.Field("error", st.LastError)
	}
	return rb.String(), nil
}

func handleStats(d *Dispatcher, cs *connState, args []string) (string, error) {
	c := d.Library.Count()
	st := d.Player.Status()
	playtime := int64(0)
	if st.Elapsed > 0 {
		playtime = int64(st.Elapsed)
	}

	rb := NewResponseBuilder()
	rb.Field("artists", c.Artists)
	rb.Field("albums", c.Albums)
	rb.Field("songs", c.Songs)
	rb.Field("uptime", int64(time.Since(d.StartedAt).Seconds()))
	rb.Field("db_playtime", int64(c.PlaytimeSec))
	rb.Field("db_update", d.Library.LastUpdateEpoch())
	rb.Field("playtime", playtime)
	return rb.String(), nil
}

func handleCurrentSong(d *Dispatcher, cs *connState, args []string) (string, error) {
	item, ok := d.Queue.Current()
	if !ok {
		return "", nil
	}
	rb := NewResponseBuilder()
	formatSong(rb, item.Song, cs.tags)
	rb.Field("Pos", item.Position)
	rb.Field("Id", item.ID)
	return rb.String(), nil
}

func handleClearError(d *Dispatcher, cs *connState, args []string) (string, error) {
	d.Player.ClearError()
	return "", nil
}

func handlePassword(d *Dispatcher, cs *connState, args []string) (string, error) {
	if d.Password == "" {
		return "", nil
	}
	if len(args) == 0 || args[0] != d.Password {
		return "", NewAckError(AckPassword, "incorrect password")
	}
	return "", nil
}

func handleKill(d *Dispatcher, cs *connState, args []string) (string, error) {
	select {
	case <-d.Shutdown:
	default:
		close(d.Shutdown)
	}
	return "", nil
}

func handleBinaryLimit(d *Dispatcher, cs *connState, args []string) (string, error) {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return "", NewAckError(AckArg, "invalid binary limit")
	}
	cs.binaryLimit = n
	return "", nil
}

func boolToBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseBoolArg(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, NewAckError(AckArg, "boolean argument must be 0 or 1")
	}
}

func parseTriState(s string) (status.TriState, error) {
	switch s {
	case "0":
		return status.Off, nil
	case "1":
		return status.On, nil
	case "oneshot":
		return status.Oneshot, nil
	default:
		return status.Off, NewAckError(AckArg, "tristate argument must be 0, 1, or oneshot")
	}
}

// mapPlayerErr translates playback-engine errors into protocol ACKs,
// leaving already-typed AckErrors untouched.
func mapPlayerErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, player.ErrNoSuchSong) {
		return NewAckError(AckNoExist, "no such song")
	}
	return err
}

func handleSetVol(d *Dispatcher, cs *connState, args []string) (string, error) {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n > 100 {
		return "", NewAckError(AckArg, "volume must be between 0 and 100")
	}
	d.Player.SetVolume(n)
	return "", nil
}

func handlePause(d *Dispatcher, cs *connState, args []string) (string, error) {
	ctx := context.Background()
	st := d.Player.Status()

	force := ""
	if len(args) == 1 {
		force = args[0]
		if force != "0" && force != "1" {
			return "", NewAckError(AckArg, "pause argument must be 0 or 1")
		}
	}

	switch {
	case force == "1":
		if st.State == status.Play {
			return "", d.Player.Pause(ctx)
		}
		return "", nil
	case force == "0":
		if st.State == status.Pause {
			return "", mapPlayerErr(d.Player.PlayCurrent(ctx))
		}
		return "", nil
	case st.State == status.Play:
		return "", d.Player.Pause(ctx)
	case st.State == status.Pause:
		return "", mapPlayerErr(d.Player.PlayCurrent(ctx))
	default:
		return "", nil
	}
}

func handlePlay(d *Dispatcher, cs *connState, args []string) (string, error) {
	ctx := context.Background()
	if len(args) == 0 {
		return "", mapPlayerErr(d.Player.PlayCurrent(ctx))
	}
	pos, err := strconv.Atoi(args[0])
	if err != nil || pos < 0 {
		return "", NewAckError(AckArg, "invalid position")
	}
	return "", mapPlayerErr(d.Player.PlayAt(ctx, pos))
}

func handlePlayID(d *Dispatcher, cs *connState, args []string) (string, error) {
	ctx := context.Background()
	if len(args) == 0 {
		return "", mapPlayerErr(d.Player.PlayCurrent(ctx))
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return "", NewAckError(AckArg, "invalid id")
	}
	item, ok := d.Queue.ByID(uint32(id))
	if !ok {
		return "", NewAckError(AckNoExist, "no such song")
	}
	return "", mapPlayerErr(d.Player.PlayAt(ctx, int(item.Position)))
}

func handleStop(d *Dispatcher, cs *connState, args []string) (string, error) {
	return "", d.Player.Stop(context.Background())
}

func handleNext(d *Dispatcher, cs *connState, args []string) (string, error) {
	return "", mapPlayerErr(d.Player.Next(context.Background()))
}

func handlePrevious(d *Dispatcher, cs *connState, args []string) (string, error) {
	err := d.Player.Previous(context.Background())
	if errors.Is(err, player.ErrNoSuchSong) {
		// Already at the first song: reply OK and leave playback as it is.
		return "", nil
	}
	return "", err
}

func handleSeekCur(d *Dispatcher, cs *connState, args []string) (string, error) {
	raw := args[0]
	relative := strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-")
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", NewAckError(AckArg, "invalid seek time")
	}

	st := d.Player.Status()
	if st.CurrentSong == nil {
		return "", NewAckError(AckPlayerSync, "no current song")
	}

	target := seconds
	if relative {
		target = st.Elapsed + seconds
	}
	if target < 0 {
		target = 0
	}
	return "", d.Player.Seek(context.Background(), time.Duration(target*float64(time.Second)))
}

func handleRepeat(d *Dispatcher, cs *connState, args []string) (string, error) {
	on, err := parseBoolArg(args[0])
	if err != nil {
		return "", err
	}
	d.Player.SetRepeat(on)
	return "", nil
}

func handleRandom(d *Dispatcher, cs *connState, args []string) (string, error) {
	on, err := parseBoolArg(args[0])
	if err != nil {
		return "", err
	}
	d.Player.SetRandom(on)
	return "", nil
}

func handleSingle(d *Dispatcher, cs *connState, args []string) (string, error) {
	v, err := parseTriState(args[0])
	if err != nil {
		return "", err
	}
	d.Player.SetSingle(v)
	return "", nil
}

func handleConsume(d *Dispatcher, cs *connState, args []string) (string, error) {
	v, err := parseTriState(args[0])
	if err != nil {
		return "", err
	}
	d.Player.SetConsume(v)
	return "", nil
}

func handleCrossfade(d *Dispatcher, cs *connState, args []string) (string, error) {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return "", NewAckError(AckArg, "crossfade must be a non-negative integer")
	}
	d.Player.SetCrossfade(n)
	return "", nil
}

func handleMixrampDB(d *Dispatcher, cs *connState, args []string) (string, error) {
	v, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return "", NewAckError(AckArg, "invalid mixrampdb value")
	}
	st := d.Player.Status()
	d.Player.SetMixramp(float32(v), st.MixrampDelay)
	return "", nil
}

func handleMixrampDelay(d *Dispatcher, cs *connState, args []string) (string, error) {
	v, err := strconv.ParseFloat(args[0], 32)
	if err != nil || v < 0 {
		return "", NewAckError(AckArg, "invalid mixrampdelay value")
	}
	st := d.Player.Status()
	d.Player.SetMixramp(st.MixrampDB, float32(v))
	return "", nil
}
