package mpd

import (
	"regexp"
	"sort"

	"github.com/rmpd-project/rmpd/internal/core"
)

var channelNameRe = regexp.MustCompile(`^[A-Za-z0-9_:./-]+$`)

func handleSubscribe(d *Dispatcher, cs *connState, args []string) (string, error) {
	channel := args[0]
	if !channelNameRe.MatchString(channel) {
		return "", NewAckError(AckArg, "invalid channel name")
	}
	cs.mailbox.Subscribe(channel)
	d.Bus.Emit(core.Event{Kind: core.EventSubscriptionChanged})
	return "", nil
}

func handleUnsubscribe(d *Dispatcher, cs *connState, args []string) (string, error) {
	if !cs.mailbox.Unsubscribe(args[0]) {
		return "", NewAckError(AckNoExist, "not subscribed to that channel")
	}
	d.Bus.Emit(core.Event{Kind: core.EventSubscriptionChanged})
	return "", nil
}

func handleChannels(d *Dispatcher, cs *connState, args []string) (string, error) {
	channels := d.Broker.Channels()
	sort.Strings(channels)
	rb := NewResponseBuilder()
	for _, c := range channels {
		rb.Field("channel", c)
	}
	return rb.String(), nil
}

func handleReadMessages(d *Dispatcher, cs *connState, args []string) (string, error) {
	msgs := cs.mailbox.Read()
	rb := NewResponseBuilder()
	for _, m := range msgs {
		rb.Field("channel", m.Channel)
		rb.Field("message", m.Text)
	}
	return rb.String(), nil
}

func handleSendMessage(d *Dispatcher, cs *connState, args []string) (string, error) {
	channel, text := args[0], args[1]
	if !channelNameRe.MatchString(channel) {
		return "", NewAckError(AckArg, "invalid channel name")
	}
	d.Broker.Send(channel, text)
	return "", nil
}
