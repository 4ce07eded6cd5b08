package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/akaliyev/sponso/internal/outreach"
	"github.com/akaliyev/sponso/internal/store"
)

// Router classifies inbound chat events and drives the lead pipeline:
// button actions go to the lifecycle controller, text goes to the active
// add-lead dialog, and menu words open the corresponding view.
type Router struct {
	db        *gorm.DB
	sessions  *SessionStore
	ctrl      *outreach.Controller
	adapter   Adapter
	listLimit int
	botUserID string // the bot's own user ID (to filter self-messages)
	out       io.Writer
}

// RouterOpts holds parameters for creating a Router.
type RouterOpts struct {
	DB         *gorm.DB
	Sessions   *SessionStore
	Controller *outreach.Controller
	Adapter    Adapter
	ListLimit  int       // max leads in the list view; defaults to 20
	BotUserID  string    // bot's user ID for self-message filtering
	Out        io.Writer // defaults to os.Stdout
}

// NewRouter creates a Router.
func NewRouter(opts RouterOpts) (*Router, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("bot: router: db is required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("bot: router: session store is required")
	}
	if opts.Controller == nil {
		return nil, fmt.Errorf("bot: router: controller is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bot: router: adapter is required")
	}
	limit := opts.ListLimit
	if limit <= 0 {
		limit = 20
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Router{
		db:        opts.DB,
		sessions:  opts.Sessions,
		ctrl:      opts.Controller,
		adapter:   opts.Adapter,
		listLimit: limit,
		botUserID: opts.BotUserID,
		out:       out,
	}, nil
}

// Handle classifies and routes a single inbound event. Routing paths:
//  1. Bot self-message → ignore
//  2. Button action data → lead action or menu action
//  3. Active dialog for this conversation → dialog input
//  4. Menu word (start/add/leads/dashboard/help) → the matching view
//  5. Everything else → ignore
//
// A storage error aborts only this interaction: it is logged and answered
// with a terse notice.
func (r *Router) Handle(ctx context.Context, msg InboundMessage) {
	if r.isSelfMessage(msg) {
		return
	}

	text := strings.TrimSpace(msg.Text)
	fmt.Fprintf(r.out, "bot: router: recv [chat=%s user=%s action=%q] %q\n",
		msg.ChatID, msg.UserName, msg.Action, truncate(text, 80))

	if msg.Action != "" {
		r.handleAction(ctx, msg)
		return
	}

	if r.sessions.Active(msg.ChatID) {
		r.handleDialog(ctx, msg.ChatID, text)
		return
	}

	switch normalizeMenu(text) {
	case "start":
		r.send(ctx, OutboundMessage{
			ChatID:  msg.ChatID,
			Text:    "Sponso is up.\nPick an action from the menu.",
			Buttons: MainMenuButtons(),
		})
	case "add":
		r.startDialog(ctx, msg.ChatID)
	case "leads":
		r.showLeads(ctx, msg.ChatID)
	case "dashboard":
		r.showDashboard(ctx, msg.ChatID)
	case "help":
		r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: helpText(), Buttons: MainMenuButtons()})
	default:
		fmt.Fprintf(r.out, "bot: router: → ignore (no dialog, no menu match)\n")
	}
}

// normalizeMenu maps free-form text to a menu action name. Both slash
// commands and the button labels are accepted.
func normalizeMenu(text string) string {
	t := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(text, "/")))
	switch t {
	case "start", "hi", "hello":
		return "start"
	case "add", "lead", "➕ lead", "new lead":
		return "add"
	case "leads", "list", "📋 leads":
		return "leads"
	case "dashboard", "stats", "📊 dashboard":
		return "dashboard"
	case "help", "ℹ️ help":
		return "help"
	}
	return ""
}

// startDialog begins the add-lead dialog, resetting any partial one.
func (r *Router) startDialog(ctx context.Context, chatID string) {
	state := r.sessions.Start(chatID)
	r.send(ctx, OutboundMessage{ChatID: chatID, Text: dialogPrompt(state)})
}

// handleDialog feeds one text input to the active dialog and, on the final
// step, creates the lead.
func (r *Router) handleDialog(ctx context.Context, chatID, text string) {
	res, ok := r.sessions.Advance(chatID, text)
	if !ok {
		return
	}
	if res.Reprompt {
		r.send(ctx, OutboundMessage{ChatID: chatID, Text: "Empty value. " + dialogPrompt(res.State)})
		return
	}
	if !res.Done {
		r.send(ctx, OutboundMessage{ChatID: chatID, Text: dialogPrompt(res.State)})
		return
	}

	lead, err := store.CreateLead(r.db, res.Fields.Company, res.Fields.Contact, res.Fields.Channel, res.Fields.Note)
	if err != nil {
		log.Printf("bot: router: create lead: %v", err)
		r.send(ctx, OutboundMessage{ChatID: chatID, Text: "Could not save the lead."})
		return
	}
	r.send(ctx, OutboundMessage{
		ChatID:  chatID,
		Text:    "Lead created.\n\n" + RenderLeadCard(lead),
		Buttons: LeadActionButtons(lead.ID),
	})
}

// showLeads sends the recent-leads keyboard.
func (r *Router) showLeads(ctx context.Context, chatID string) {
	leads, err := store.ListLeads(r.db, r.listLimit)
	if err != nil {
		log.Printf("bot: router: list leads: %v", err)
		r.send(ctx, OutboundMessage{ChatID: chatID, Text: "Could not list leads."})
		return
	}
	if len(leads) == 0 {
		r.send(ctx, OutboundMessage{ChatID: chatID, Text: "No leads yet. Press ➕ Lead.", Buttons: MainMenuButtons()})
		return
	}
	r.send(ctx, OutboundMessage{
		ChatID:  chatID,
		Text:    fmt.Sprintf("Recent leads (up to %d):", r.listLimit),
		Buttons: LeadListButtons(leads),
	})
}

// showDashboard sends the status counts.
func (r *Router) showDashboard(ctx context.Context, chatID string) {
	summary, err := r.ctrl.Summarize()
	if err != nil {
		log.Printf("bot: router: summarize: %v", err)
		r.send(ctx, OutboundMessage{ChatID: chatID, Text: "Could not build the dashboard."})
		return
	}
	r.send(ctx, OutboundMessage{ChatID: chatID, Text: RenderSummary(summary)})
}

// handleAction dispatches button action data.
func (r *Router) handleAction(ctx context.Context, msg InboundMessage) {
	switch msg.Action {
	case MenuAdd:
		r.startDialog(ctx, msg.ChatID)
		return
	case MenuLeads:
		r.showLeads(ctx, msg.ChatID)
		return
	case MenuDashboard:
		r.showDashboard(ctx, msg.ChatID)
		return
	case MenuHelp:
		r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: helpText(), Buttons: MainMenuButtons()})
		return
	}

	leadID, action, err := ParseLeadAction(msg.Action)
	if err != nil {
		r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: "Unknown action."})
		return
	}

	switch action {
	case ActionOpen:
		r.openLead(ctx, msg, leadID)
	case ActionGenerate:
		r.generateDraft(ctx, msg, leadID)
	case ActionSend:
		r.markSent(ctx, msg, leadID)
	}
}

// openLead refreshes a lead card in place.
func (r *Router) openLead(ctx context.Context, msg InboundMessage, leadID uint) {
	lead, last, err := r.ctrl.Open(leadID)
	if err != nil {
		log.Printf("bot: router: open lead %d: %v", leadID, err)
		r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: "Could not open the lead."})
		return
	}
	if lead == nil {
		r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: "Lead not found."})
		return
	}

	text := RenderLeadCard(lead)
	if last != nil {
		text += "\n" + RenderMessagePreview(last)
	}
	r.send(ctx, OutboundMessage{
		ChatID:           msg.ChatID,
		ReplaceMessageID: msg.MessageID,
		Text:             text,
		Buttons:          LeadActionButtons(leadID),
	})
}

// generateDraft runs the drafting collaborator for a lead and updates the
// card. A drafting failure is reported as a one-line notice; nothing is
// stored in that case.
func (r *Router) generateDraft(ctx context.Context, msg InboundMessage, leadID uint) {
	r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: "Drafting…"})

	lead, last, err := r.ctrl.GenerateDraft(ctx, leadID)
	if err != nil {
		log.Printf("bot: router: generate draft for lead %d: %v", leadID, err)
		r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: "Draft generation failed. Check the OpenAI key/model."})
		return
	}
	if lead == nil {
		r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: "Lead not found."})
		return
	}

	r.send(ctx, OutboundMessage{
		ChatID:           msg.ChatID,
		ReplaceMessageID: msg.MessageID,
		Text:             RenderLeadCard(lead) + "\n" + RenderMessagePreview(last),
		Buttons:          LeadActionButtons(leadID),
	})
}

// markSent performs the simulated send and posts the draft as a separate
// message for easy copying.
func (r *Router) markSent(ctx context.Context, msg InboundMessage, leadID uint) {
	lead, last, err := r.ctrl.MarkSent(leadID)
	if errors.Is(err, outreach.ErrNoDraft) {
		r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: "Generate an email first."})
		return
	}
	if err != nil {
		log.Printf("bot: router: mark sent for lead %d: %v", leadID, err)
		r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: "Could not update the lead."})
		return
	}
	if lead == nil {
		r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: "Lead not found."})
		return
	}

	copyOut := "Send (simulated): the email was NOT delivered.\n" +
		"Copy it below and send it yourself.\n\n" +
		fmt.Sprintf("Subject: %s\n\n%s", last.Subject, last.Body)
	for _, chunk := range chunkMessage(copyOut, chunkLimit) {
		r.send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: chunk})
	}
	r.send(ctx, OutboundMessage{
		ChatID:           msg.ChatID,
		ReplaceMessageID: msg.MessageID,
		Text:             RenderLeadCard(lead) + "\n" + RenderMessagePreview(last),
		Buttons:          LeadActionButtons(leadID),
	})
}

// send delivers a message, logging delivery failures.
func (r *Router) send(ctx context.Context, msg OutboundMessage) {
	if err := r.adapter.Send(ctx, msg); err != nil {
		log.Printf("bot: router: send: %v", err)
	}
}

// isSelfMessage returns true if the message is from the bot itself.
func (r *Router) isSelfMessage(msg InboundMessage) bool {
	return r.botUserID != "" && msg.UserID == r.botUserID
}

// truncate returns s truncated to maxLen with "..." appended if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
