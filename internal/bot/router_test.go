package bot

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/akaliyev/sponso/internal/config"
	"github.com/akaliyev/sponso/internal/db"
	"github.com/akaliyev/sponso/internal/draft"
	"github.com/akaliyev/sponso/internal/models"
	"github.com/akaliyev/sponso/internal/outreach"
	"github.com/akaliyev/sponso/internal/store"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func newTestController(t *testing.T, gdb *gorm.DB) *outreach.Controller {
	t.Helper()
	ctrl, err := outreach.NewController(outreach.ControllerOpts{
		DB:      gdb,
		Drafter: &draft.MockDrafter{},
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return ctrl
}

type routerFixture struct {
	router  *Router
	adapter *MockAdapter
	drafter *draft.MockDrafter
	db      *gorm.DB
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gdb := openTestDB(t)
	drafter := &draft.MockDrafter{
		Result: draft.Draft{Subject: "Hello Acme", Body: "Let's partner.", Source: draft.SourceStructured},
	}
	ctrl, err := outreach.NewController(outreach.ControllerOpts{
		DB:      gdb,
		Drafter: drafter,
		Pitch:   config.PitchConfig{Project: "DemoConf", Language: "en"},
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	adapter := NewMockAdapter()
	if err := adapter.Connect(context.Background()); err != nil {
		t.Fatalf("connect mock adapter: %v", err)
	}
	router, err := NewRouter(RouterOpts{
		DB:         gdb,
		Sessions:   NewSessionStore(),
		Controller: ctrl,
		Adapter:    adapter,
		BotUserID:  "bot-self",
		Out:        io.Discard,
	})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return &routerFixture{router: router, adapter: adapter, drafter: drafter, db: gdb}
}

func (f *routerFixture) text(ctx context.Context, chatID, text string) {
	f.router.Handle(ctx, InboundMessage{ChatID: chatID, UserID: "u1", Text: text})
}

func (f *routerFixture) action(ctx context.Context, chatID, data string) {
	f.router.Handle(ctx, InboundMessage{ChatID: chatID, UserID: "u1", MessageID: "m1", Action: data})
}

func TestNewRouterValidation(t *testing.T) {
	gdb := openTestDB(t)
	ctrl, _ := outreach.NewController(outreach.ControllerOpts{DB: gdb, Drafter: &draft.MockDrafter{}})
	adapter := NewMockAdapter()
	sessions := NewSessionStore()

	cases := []struct {
		name string
		opts RouterOpts
	}{
		{"missing db", RouterOpts{Sessions: sessions, Controller: ctrl, Adapter: adapter}},
		{"missing sessions", RouterOpts{DB: gdb, Controller: ctrl, Adapter: adapter}},
		{"missing controller", RouterOpts{DB: gdb, Sessions: sessions, Adapter: adapter}},
		{"missing adapter", RouterOpts{DB: gdb, Sessions: sessions, Controller: ctrl}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRouter(tc.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRouterDialogCreatesLead(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	f.text(ctx, "chat-1", "add")
	for _, input := range []string{"Acme", "Jane", "email", "-"} {
		f.text(ctx, "chat-1", input)
	}

	leads, err := store.ListLeads(f.db, 10)
	if err != nil {
		t.Fatalf("list leads: %v", err)
	}
	if len(leads) != 1 {
		t.Fatalf("leads = %d, want 1", len(leads))
	}
	lead := leads[0]
	if lead.Company != "Acme" || lead.Contact != "Jane" || lead.Channel != "email" {
		t.Errorf("unexpected lead: %+v", lead)
	}
	if lead.Note != "" {
		t.Errorf("note = %q, want empty for '-'", lead.Note)
	}
	if lead.Status != models.StatusNew {
		t.Errorf("status = %q, want NEW", lead.Status)
	}

	last, ok := f.adapter.LastSent()
	if !ok || !strings.Contains(last.Text, "Lead created.") {
		t.Errorf("last message = %+v, want lead card", last)
	}
	if len(last.Buttons) == 0 {
		t.Error("lead card should carry action buttons")
	}
}

func TestRouterDialogKeepsRealNote(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	f.text(ctx, "chat-1", "add")
	for _, input := range []string{"Globex", "Sales team", "linkedin", "Budget Q3"} {
		f.text(ctx, "chat-1", input)
	}

	leads, _ := store.ListLeads(f.db, 10)
	if len(leads) != 1 || leads[0].Note != "Budget Q3" {
		t.Fatalf("leads = %+v, want one with the note kept", leads)
	}
}

func TestRouterDialogRepromptsOnBlank(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	f.text(ctx, "chat-1", "add")
	f.text(ctx, "chat-1", "   ")

	last, _ := f.adapter.LastSent()
	if !strings.Contains(last.Text, "Empty value.") {
		t.Errorf("last = %q, want reprompt notice", last.Text)
	}

	// The dialog is still on the company step.
	f.text(ctx, "chat-1", "Acme")
	last, _ = f.adapter.LastSent()
	if !strings.Contains(last.Text, "Contact") {
		t.Errorf("last = %q, want contact prompt", last.Text)
	}
}

func TestRouterIgnoresSelfMessages(t *testing.T) {
	f := newRouterFixture(t)
	f.router.Handle(context.Background(), InboundMessage{ChatID: "c", UserID: "bot-self", Text: "leads"})
	if n := f.adapter.SentCount(); n != 0 {
		t.Errorf("sent %d messages for a self-message, want 0", n)
	}
}

func TestRouterIgnoresFreeTextWithoutDialog(t *testing.T) {
	f := newRouterFixture(t)
	f.text(context.Background(), "chat-1", "what is this")
	if n := f.adapter.SentCount(); n != 0 {
		t.Errorf("sent %d messages, want 0", n)
	}
}

func TestRouterMenuVariants(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	cases := []struct {
		input string
		want  string
	}{
		{"/start", "Sponso is up."},
		{"help", "Commands/buttons:"},
		{"📋 Leads", "No leads yet."},
		{"stats", "Pipeline (0 total):"},
	}
	for _, tc := range cases {
		f.text(ctx, "chat-1", tc.input)
		last, ok := f.adapter.LastSent()
		if !ok || !strings.Contains(last.Text, tc.want) {
			t.Errorf("input %q: last = %q, want substring %q", tc.input, last.Text, tc.want)
		}
	}
}

func TestRouterLeadsListAndOpen(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	lead, err := store.CreateLead(f.db, "Acme", "Jane", "email", "")
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	f.text(ctx, "chat-1", "leads")
	last, _ := f.adapter.LastSent()
	if len(last.Buttons) != 1 || last.Buttons[0][0].Action != LeadActionData(lead.ID, ActionOpen) {
		t.Fatalf("list buttons = %+v", last.Buttons)
	}

	f.action(ctx, "chat-1", LeadActionData(lead.ID, ActionOpen))
	last, _ = f.adapter.LastSent()
	if !strings.Contains(last.Text, "Company: Acme") {
		t.Errorf("open card = %q", last.Text)
	}
	if last.ReplaceMessageID != "m1" {
		t.Errorf("open should edit in place, got ReplaceMessageID %q", last.ReplaceMessageID)
	}
}

func TestRouterGenerateDraftFlow(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	lead, _ := store.CreateLead(f.db, "Acme", "Jane", "email", "")

	f.action(ctx, "chat-1", LeadActionData(lead.ID, ActionGenerate))

	if f.drafter.CallCount() != 1 {
		t.Fatalf("drafter calls = %d, want 1", f.drafter.CallCount())
	}
	got, _ := store.GetLead(f.db, lead.ID)
	if got.Status != models.StatusDrafted {
		t.Errorf("status = %q, want DRAFTED", got.Status)
	}
	last, _ := f.adapter.LastSent()
	if !strings.Contains(last.Text, "Status: DRAFTED") || !strings.Contains(last.Text, "Subject: Hello Acme") {
		t.Errorf("card after draft = %q", last.Text)
	}
}

func TestRouterGenerateDraftFailure(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	lead, _ := store.CreateLead(f.db, "Acme", "Jane", "email", "")
	f.drafter.Err = errors.New("upstream down")

	f.action(ctx, "chat-1", LeadActionData(lead.ID, ActionGenerate))

	got, _ := store.GetLead(f.db, lead.ID)
	if got.Status != models.StatusNew {
		t.Errorf("status = %q, want NEW preserved on failure", got.Status)
	}
	last, _ := f.adapter.LastSent()
	if !strings.Contains(last.Text, "Draft generation failed.") {
		t.Errorf("last = %q", last.Text)
	}
}

func TestRouterSendRequiresDraft(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	lead, _ := store.CreateLead(f.db, "Acme", "Jane", "email", "")

	f.action(ctx, "chat-1", LeadActionData(lead.ID, ActionSend))

	last, _ := f.adapter.LastSent()
	if !strings.Contains(last.Text, "Generate an email first.") {
		t.Errorf("last = %q", last.Text)
	}
	got, _ := store.GetLead(f.db, lead.ID)
	if got.Status != models.StatusNew {
		t.Errorf("status = %q, want NEW", got.Status)
	}
}

func TestRouterSimulatedSend(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	lead, _ := store.CreateLead(f.db, "Acme", "Jane", "email", "")

	f.action(ctx, "chat-1", LeadActionData(lead.ID, ActionGenerate))
	f.action(ctx, "chat-1", LeadActionData(lead.ID, ActionSend))

	got, _ := store.GetLead(f.db, lead.ID)
	if got.Status != models.StatusSentSimulated {
		t.Errorf("status = %q, want SENT_SIMULATED", got.Status)
	}

	sent := f.adapter.AllSent()
	var copyOut *OutboundMessage
	for i := range sent {
		if strings.Contains(sent[i].Text, "NOT delivered") {
			copyOut = &sent[i]
		}
	}
	if copyOut == nil {
		t.Fatal("missing simulated-send copy-out message")
	}
	if !strings.Contains(copyOut.Text, "Subject: Hello Acme") || !strings.Contains(copyOut.Text, "Let's partner.") {
		t.Errorf("copy-out = %q", copyOut.Text)
	}
	last, _ := f.adapter.LastSent()
	if !strings.Contains(last.Text, "Status: SENT_SIMULATED") {
		t.Errorf("final card = %q", last.Text)
	}
}

func TestRouterUnknownLeadAndAction(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	f.action(ctx, "chat-1", LeadActionData(999, ActionOpen))
	last, _ := f.adapter.LastSent()
	if !strings.Contains(last.Text, "Lead not found.") {
		t.Errorf("last = %q", last.Text)
	}

	f.action(ctx, "chat-1", "lead:zzz")
	last, _ = f.adapter.LastSent()
	if !strings.Contains(last.Text, "Unknown action.") {
		t.Errorf("last = %q", last.Text)
	}
}

func TestRouterMenuActions(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	f.action(ctx, "chat-1", MenuAdd)
	last, _ := f.adapter.LastSent()
	if !strings.Contains(last.Text, "Company name:") {
		t.Errorf("MenuAdd last = %q", last.Text)
	}

	f.action(ctx, "chat-1", MenuDashboard)
	last, _ = f.adapter.LastSent()
	if !strings.Contains(last.Text, "Pipeline (0 total):") {
		t.Errorf("MenuDashboard last = %q", last.Text)
	}
}
