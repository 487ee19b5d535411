package slack

import (
	"context"
	"errors"
	"testing"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/stationmaster/internal/telegraph"
)

type mockClient struct {
	channelID string
	options   []slackapi.MsgOption
	err       error
	calls     int
}

func (m *mockClient) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.calls++
	m.channelID = channelID
	m.options = options
	return channelID, "1234.5678", m.err
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{ChannelID: "C123"}); err == nil {
		t.Error("missing token accepted")
	}
	if _, err := New(Opts{BotToken: "xoxb-test"}); err == nil {
		t.Error("missing channel accepted")
	}
	if _, err := New(Opts{Client: &mockClient{}, ChannelID: "C123"}); err != nil {
		t.Errorf("mock client rejected: %v", err)
	}
}

func TestAnnounce(t *testing.T) {
	mock := &mockClient{}
	a, err := New(Opts{Client: mock, ChannelID: "C123"})
	if err != nil {
		t.Fatal(err)
	}

	ev := telegraph.Event{
		Title:    "Train Local 123 completed",
		Body:     "All setouts done",
		Severity: telegraph.SeveritySuccess,
		Fields:   []telegraph.Field{{Name: "Cars moved", Value: "4"}},
	}
	if err := a.Announce(context.Background(), ev); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("calls = %d, want 1", mock.calls)
	}
	if mock.channelID != "C123" {
		t.Errorf("channel = %q, want C123", mock.channelID)
	}
	if len(mock.options) != 1 {
		t.Errorf("message options = %d, want 1 attachment option", len(mock.options))
	}
}

func TestAnnounce_APIFailure(t *testing.T) {
	mock := &mockClient{err: errors.New("channel_not_found")}
	a, err := New(Opts{Client: mock, ChannelID: "C123"})
	if err != nil {
		t.Fatal(err)
	}

	err = a.Announce(context.Background(), telegraph.Event{Title: "x"})
	if err == nil {
		t.Fatal("API failure swallowed")
	}
	if !errors.Is(err, mock.err) {
		t.Errorf("error = %v, want wrapped %v", err, mock.err)
	}
}

func TestClose(t *testing.T) {
	a, err := New(Opts{Client: &mockClient{}, ChannelID: "C123"})
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
