package slack

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/akaliyev/sponso/internal/bot"
)

// --- Mock Slack client ---

type mockSlackClient struct {
	mu        sync.Mutex
	authResp  *slackapi.AuthTestResponse
	authErr   error
	posted    []postedMessage
	postErr   error
	updated   []updatedMessage
	updateErr error
	users     map[string]*slackapi.User
}

type postedMessage struct {
	channelID string
	options   []slackapi.MsgOption
}

type updatedMessage struct {
	channelID string
	timestamp string
	options   []slackapi.MsgOption
}

func newMockSlackClient() *mockSlackClient {
	return &mockSlackClient{
		authResp: &slackapi.AuthTestResponse{UserID: "U_BOT_123"},
		users:    make(map[string]*slackapi.User),
	}
}

func (m *mockSlackClient) AuthTest() (*slackapi.AuthTestResponse, error) {
	return m.authResp, m.authErr
}

func (m *mockSlackClient) PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return "", "", m.postErr
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, options: options})
	return channelID, "1234567890.123456", nil
}

func (m *mockSlackClient) UpdateMessage(channelID, timestamp string, options ...slackapi.MsgOption) (string, string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return "", "", "", m.updateErr
	}
	m.updated = append(m.updated, updatedMessage{channelID: channelID, timestamp: timestamp, options: options})
	return channelID, timestamp, "", nil
}

func (m *mockSlackClient) GetUserInfo(userID string) (*slackapi.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found: %s", userID)
}

func (m *mockSlackClient) postedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posted)
}

func (m *mockSlackClient) lastPosted() postedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.posted[len(m.posted)-1]
}

// --- Mock Socket Mode client ---

type mockSocketClient struct {
	events  chan socketmode.Event
	acked   []socketmode.Request
	mu      sync.Mutex
	running bool
	done    chan struct{}
}

func newMockSocketClient() *mockSocketClient {
	return &mockSocketClient{
		events: make(chan socketmode.Event, 100),
		done:   make(chan struct{}),
	}
}

func (m *mockSocketClient) Run() error {
	m.mu.Lock()
	m.running = true
	m.mu.Unlock()
	// Block until done is closed (don't consume from events).
	<-m.done
	return nil
}

func (m *mockSocketClient) EventsChan() chan socketmode.Event {
	return m.events
}

func (m *mockSocketClient) Ack(req socketmode.Request, payload ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, req)
}

func (m *mockSocketClient) ackCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.acked)
}

// --- Helper to create a connected adapter ---

func newTestAdapter(t *testing.T) (*Adapter, *mockSlackClient, *mockSocketClient) {
	t.Helper()
	client := newMockSlackClient()
	socket := newMockSocketClient()

	a, err := New(AdapterOpts{
		Client:    client,
		Socket:    socket,
		ChannelID: "C_DEFAULT",
	})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		close(socket.done)
	})
	return a, client, socket
}

// --- New tests ---

func TestNew_RequiresBotToken(t *testing.T) {
	_, err := New(AdapterOpts{AppToken: "xapp-1"})
	if err == nil {
		t.Fatal("expected error for missing bot token")
	}
	if !strings.Contains(err.Error(), "bot token") {
		t.Errorf("error = %q, want to mention bot token", err.Error())
	}
}

func TestNew_RequiresAppToken(t *testing.T) {
	_, err := New(AdapterOpts{Client: newMockSlackClient()})
	if err == nil {
		t.Fatal("expected error for missing app token")
	}
	if !strings.Contains(err.Error(), "app token") {
		t.Errorf("error = %q, want to mention app token", err.Error())
	}
}

// --- Connect tests ---

func TestConnect_SetsBotUserID(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	if a.BotUserID() != "U_BOT_123" {
		t.Errorf("bot user ID = %q, want U_BOT_123", a.BotUserID())
	}
}

func TestConnect_AuthError(t *testing.T) {
	client := newMockSlackClient()
	client.authErr = fmt.Errorf("invalid token")

	a, _ := New(AdapterOpts{Client: client, Socket: newMockSocketClient()})
	err := a.Connect(context.Background())
	if err == nil {
		t.Fatal("expected auth error")
	}
	if !strings.Contains(err.Error(), "auth test") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestConnect_AlreadyClosed(t *testing.T) {
	a, _ := New(AdapterOpts{Client: newMockSlackClient(), Socket: newMockSocketClient()})
	a.Close()
	if err := a.Connect(context.Background()); err == nil {
		t.Fatal("expected error for closed adapter")
	}
}

// --- Listen / event tests ---

func TestListen_NotConnected(t *testing.T) {
	a, _ := New(AdapterOpts{Client: newMockSlackClient(), Socket: newMockSocketClient()})
	if _, err := a.Listen(context.Background()); err == nil {
		t.Fatal("expected error for not connected")
	}
}

func TestListen_ReceivesMessages(t *testing.T) {
	a, client, socket := newTestAdapter(t)
	client.users["U_ALICE"] = &slackapi.User{
		Profile: slackapi.UserProfile{DisplayName: "alice"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := a.Listen(ctx)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	socket.events <- socketmode.Event{
		Type:    socketmode.EventTypeEventsAPI,
		Request: &socketmode.Request{EnvelopeID: "env-1"},
		Data: slackevents.EventsAPIEvent{
			Type: slackevents.CallbackEvent,
			InnerEvent: slackevents.EventsAPIInnerEvent{
				Data: &slackevents.MessageEvent{
					Channel:   "C1",
					User:      "U_ALICE",
					Text:      "hello",
					TimeStamp: "1700000000.000100",
				},
			},
		},
	}

	select {
	case msg := <-ch:
		if msg.Platform != "slack" {
			t.Errorf("platform = %q, want slack", msg.Platform)
		}
		if msg.ChatID != "C1" || msg.MessageID != "1700000000.000100" {
			t.Errorf("chat = %q message = %q", msg.ChatID, msg.MessageID)
		}
		if msg.UserName != "alice" {
			t.Errorf("username = %q, want alice", msg.UserName)
		}
		if msg.Text != "hello" || msg.Action != "" {
			t.Errorf("text = %q action = %q", msg.Text, msg.Action)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for inbound message")
	}

	if socket.ackCount() != 1 {
		t.Errorf("ack count = %d, want 1", socket.ackCount())
	}
}

func TestListen_ReceivesBlockActions(t *testing.T) {
	a, _, socket := newTestAdapter(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, _ := a.Listen(ctx)

	socket.events <- socketmode.Event{
		Type:    socketmode.EventTypeInteractive,
		Request: &socketmode.Request{EnvelopeID: "env-2"},
		Data: slackapi.InteractionCallback{
			Type:    slackapi.InteractionTypeBlockActions,
			User:    slackapi.User{ID: "U_ALICE"},
			Channel: slackapi.Channel{GroupConversation: slackapi.GroupConversation{Conversation: slackapi.Conversation{ID: "C1"}}},
			Container: slackapi.Container{
				MessageTs: "1700000000.000200",
			},
			ActionCallback: slackapi.ActionCallbacks{
				BlockActions: []*slackapi.BlockAction{
					{ActionID: "lead:7:gen", Value: "lead:7:gen"},
				},
			},
		},
	}

	select {
	case msg := <-ch:
		if msg.Action != "lead:7:gen" {
			t.Errorf("action = %q, want lead:7:gen", msg.Action)
		}
		if msg.ChatID != "C1" || msg.MessageID != "1700000000.000200" {
			t.Errorf("chat = %q message = %q", msg.ChatID, msg.MessageID)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for interaction")
	}
}

func TestHandleMessage_FiltersSelfAndBots(t *testing.T) {
	a, _, socket := newTestAdapter(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, _ := a.Listen(ctx)

	events := []*slackevents.MessageEvent{
		{Channel: "C1", User: "U_BOT_123", Text: "self", TimeStamp: "1.0"},
		{Channel: "C1", User: "U_OTHER", BotID: "B1", Text: "bot", TimeStamp: "2.0"},
		{Channel: "C1", User: "U_OTHER", SubType: "message_changed", Text: "edit", TimeStamp: "3.0"},
		{Channel: "C1", User: "U_OTHER", Text: "real", TimeStamp: "4.0"},
	}
	for _, ev := range events {
		socket.events <- socketmode.Event{
			Type:    socketmode.EventTypeEventsAPI,
			Request: &socketmode.Request{},
			Data: slackevents.EventsAPIEvent{
				Type:       slackevents.CallbackEvent,
				InnerEvent: slackevents.EventsAPIInnerEvent{Data: ev},
			},
		}
	}

	select {
	case msg := <-ch:
		if msg.Text != "real" {
			t.Errorf("expected real message, got %q", msg.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

// --- Send tests ---

func TestSend_SimpleText(t *testing.T) {
	a, client, _ := newTestAdapter(t)

	err := a.Send(context.Background(), bot.OutboundMessage{
		ChatID: "C1",
		Text:   "hello world",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.postedCount() != 1 {
		t.Fatalf("expected 1 posted message, got %d", client.postedCount())
	}
	if last := client.lastPosted(); last.channelID != "C1" {
		t.Errorf("channel = %q, want C1", last.channelID)
	}
}

func TestSend_DefaultChannel(t *testing.T) {
	a, client, _ := newTestAdapter(t)

	if err := a.Send(context.Background(), bot.OutboundMessage{Text: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last := client.lastPosted(); last.channelID != "C_DEFAULT" {
		t.Errorf("channel = %q, want C_DEFAULT", last.channelID)
	}
}

func TestSend_NoChannel(t *testing.T) {
	client := newMockSlackClient()
	a, _ := New(AdapterOpts{Client: client, Socket: newMockSocketClient()})
	a.Connect(context.Background())

	if err := a.Send(context.Background(), bot.OutboundMessage{Text: "no channel"}); err == nil {
		t.Fatal("expected error for no channel")
	}
}

func TestSend_UpdateInPlace(t *testing.T) {
	a, client, _ := newTestAdapter(t)

	err := a.Send(context.Background(), bot.OutboundMessage{
		ChatID:           "C1",
		ReplaceMessageID: "1700000000.000300",
		Text:             "updated card",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.postedCount() != 0 {
		t.Errorf("update should not post, posted %d", client.postedCount())
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.updated) != 1 {
		t.Fatalf("expected 1 update, got %d", len(client.updated))
	}
	up := client.updated[0]
	if up.channelID != "C1" || up.timestamp != "1700000000.000300" {
		t.Errorf("update target = %q/%q", up.channelID, up.timestamp)
	}
}

func TestSend_UpdateError(t *testing.T) {
	a, client, _ := newTestAdapter(t)
	client.updateErr = fmt.Errorf("message_not_found")

	err := a.Send(context.Background(), bot.OutboundMessage{
		ChatID:           "C1",
		ReplaceMessageID: "gone",
		Text:             "updated",
	})
	if err == nil {
		t.Fatal("expected update error")
	}
}

func TestSend_NotConnected(t *testing.T) {
	a, _ := New(AdapterOpts{Client: newMockSlackClient(), Socket: newMockSocketClient()})
	if err := a.Send(context.Background(), bot.OutboundMessage{ChatID: "C1", Text: "x"}); err == nil {
		t.Fatal("expected error for not connected")
	}
}

func TestSend_PostError(t *testing.T) {
	a, client, _ := newTestAdapter(t)
	client.postErr = fmt.Errorf("channel_not_found")

	if err := a.Send(context.Background(), bot.OutboundMessage{ChatID: "C1", Text: "x"}); err == nil {
		t.Fatal("expected post error")
	}
}

// --- Close tests ---

func TestClose_Idempotent(t *testing.T) {
	a, _ := New(AdapterOpts{Client: newMockSlackClient(), Socket: newMockSocketClient()})
	a.Connect(context.Background())
	a.Close()
	if err := a.Close(); err != nil {
		t.Fatalf("second close should not error: %v", err)
	}
}

// --- resolveUserName tests ---

func TestResolveUserName(t *testing.T) {
	a, client, _ := newTestAdapter(t)

	client.users["U1"] = &slackapi.User{
		Profile:  slackapi.UserProfile{DisplayName: "alice"},
		RealName: "Alice A.",
	}
	client.users["U2"] = &slackapi.User{RealName: "Bob B."}

	if got := a.resolveUserName("U1"); got != "alice" {
		t.Errorf("U1 = %q, want display name", got)
	}
	if got := a.resolveUserName("U2"); got != "Bob B." {
		t.Errorf("U2 = %q, want real name fallback", got)
	}
	if got := a.resolveUserName("U_UNKNOWN"); got != "U_UNKNOWN" {
		t.Errorf("unknown = %q, want user ID fallback", got)
	}
	if got := a.resolveUserName(""); got != "" {
		t.Errorf("empty = %q, want empty", got)
	}
}

// --- parseSlackTimestamp tests ---

func TestParseSlackTimestamp(t *testing.T) {
	ts := parseSlackTimestamp("1700000000.000100")
	if ts.Unix() != 1700000000 {
		t.Errorf("unix = %d, want 1700000000", ts.Unix())
	}
	if !parseSlackTimestamp("garbage").IsZero() {
		t.Error("garbage timestamp should parse to zero time")
	}
}

// --- Verify Adapter interface compliance ---

var _ bot.Adapter = (*Adapter)(nil)
var _ bot.BotUserIDer = (*Adapter)(nil)
