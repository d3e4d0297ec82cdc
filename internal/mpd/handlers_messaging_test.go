package mpd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSubscribeRejectsInvalidChannelName(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	_, err := handleSubscribe(d, cs, []string{"bad channel!"})
	ackErr, ok := err.(*AckError)
	require.True(t, ok)
	assert.Equal(t, AckArg, ackErr.Code)
}

func TestHandleChannelsListsSubscribedChannels(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	_, err := handleSubscribe(d, cs, []string{"news"})
	require.NoError(t, err)

	resp, err := handleChannels(d, cs, nil)
	require.NoError(t, err)
	assert.Contains(t, resp, "channel: news")
}

func TestHandleSendMessageThenReadMessagesRoundTrips(t *testing.T) {
	d := newTestDispatcher(t)
	sender := d.NewConnState()
	receiver := d.NewConnState()

	_, err := handleSubscribe(d, receiver, []string{"news"})
	require.NoError(t, err)

	_, err = handleSendMessage(d, sender, []string{"news", "hello"})
	require.NoError(t, err)

	resp, err := handleReadMessages(d, receiver, nil)
	require.NoError(t, err)
	assert.Contains(t, resp, "channel: news")
	assert.Contains(t, resp, "message: hello")

	// a second read drains nothing new
	resp, err = handleReadMessages(d, receiver, nil)
	require.NoError(t, err)
	assert.Empty(t, resp)
}

func TestHandleSendMessageDoesNotDeliverToUnsubscribed(t *testing.T) {
	d := newTestDispatcher(t)
	sender := d.NewConnState()
	bystander := d.NewConnState()
	_, _ = handleSubscribe(d, bystander, []string{"other"})

	_, err := handleSendMessage(d, sender, []string{"news", "hello"})
	require.NoError(t, err)

	resp, err := handleReadMessages(d, bystander, nil)
	require.NoError(t, err)
	assert.Empty(t, resp)
}

func TestHandleUnsubscribeStopsDelivery(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()
	_, _ = handleSubscribe(d, cs, []string{"news"})
	_, err := handleUnsubscribe(d, cs, []string{"news"})
	require.NoError(t, err)

	resp, err := handleChannels(d, cs, nil)
	require.NoError(t, err)
	assert.NotContains(t, resp, "news")
}

func TestHandleUnsubscribeWithoutSubscriptionReturnsNoExist(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	_, err := handleUnsubscribe(d, cs, []string{"news"})
	ackErr, ok := err.(*AckError)
	require.True(t, ok)
	assert.Equal(t, AckNoExist, ackErr.Code)
}
