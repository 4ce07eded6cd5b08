package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/akaliyev/sponso/internal/models"
	"github.com/akaliyev/sponso/internal/outreach"
)

// previewLimit caps the body length shown in a message preview.
const previewLimit = 1200

// chunkLimit is the per-message character cap (Discord's 2000 limit is the
// tightest among the supported platforms).
const chunkLimit = 2000

// RenderLeadCard formats a lead for display in chat.
func RenderLeadCard(lead *models.Lead) string {
	note := lead.Note
	if note == "" {
		note = "—"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Lead #%d**\n", lead.ID)
	fmt.Fprintf(&b, "Company: %s\n", lead.Company)
	fmt.Fprintf(&b, "Contact: %s\n", lead.Contact)
	fmt.Fprintf(&b, "Channel: %s\n", lead.Channel)
	fmt.Fprintf(&b, "Status: %s\n", lead.Status)
	fmt.Fprintf(&b, "Note: %s\n", note)
	fmt.Fprintf(&b, "Created: %s UTC\n", lead.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	return b.String()
}

// RenderMessagePreview formats a lead's last drafted email. Bodies longer
// than previewLimit characters are truncated with an ellipsis marker. The
// limit counts runes, not bytes, so Cyrillic bodies keep their full preview.
func RenderMessagePreview(msg *models.OutreachMessage) string {
	body := msg.Body
	if r := []rune(body); len(r) > previewLimit {
		body = string(r[:previewLimit]) + "…"
	}
	return fmt.Sprintf("**Last draft**\nSubject: %s\n\n%s", msg.Subject, body)
}

// RenderSummary formats the status dashboard text.
func RenderSummary(s *outreach.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pipeline (%d total):\n", s.Total)
	for _, status := range models.LeadStatuses() {
		fmt.Fprintf(&b, "%s: %d\n", status, s.Counts[status])
	}
	return b.String()
}

// MainMenuButtons returns the top-level menu keyboard.
func MainMenuButtons() [][]Button {
	return [][]Button{
		{
			{Label: "➕ Lead", Action: MenuAdd},
			{Label: "📋 Leads", Action: MenuLeads},
		},
		{
			{Label: "📊 Dashboard", Action: MenuDashboard},
			{Label: "ℹ️ Help", Action: MenuHelp},
		},
	}
}

// LeadActionButtons returns the per-lead action keyboard.
func LeadActionButtons(leadID uint) [][]Button {
	return [][]Button{
		{
			{Label: "✨ Draft", Action: LeadActionData(leadID, ActionGenerate)},
			{Label: "📤 Send (sim.)", Action: LeadActionData(leadID, ActionSend)},
		},
		{
			{Label: "🔄 Refresh", Action: LeadActionData(leadID, ActionOpen)},
		},
	}
}

// LeadListButtons returns one button per lead, newest first, opening the
// lead's card.
func LeadListButtons(leads []models.Lead) [][]Button {
	rows := make([][]Button, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, []Button{{
			Label:  fmt.Sprintf("#%d · %s · %s", l.ID, l.Company, l.Status),
			Action: LeadActionData(l.ID, ActionOpen),
		}})
	}
	return rows
}

// chunkMessage splits text into chunks of at most maxLen bytes, never
// splitting a multi-byte rune. It prefers breaking at newlines when possible.
func chunkMessage(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = chunkLimit
	}
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		// Look for a newline in the second half of the chunk to break at.
		chunk := text[:maxLen]
		breakAt := -1
		half := maxLen / 2
		for i := maxLen - 1; i >= half; i-- {
			if chunk[i] == '\n' {
				breakAt = i
				break
			}
		}

		if breakAt >= 0 {
			chunks = append(chunks, text[:breakAt])
			text = text[breakAt+1:] // skip the newline
		} else {
			// Hard split: back off to a rune boundary so a multi-byte
			// character is never cut in half.
			cut := maxLen
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = maxLen
			}
			chunks = append(chunks, text[:cut])
			text = text[cut:]
		}
	}
	return chunks
}

// dialogPrompt returns the question asked for a dialog state.
func dialogPrompt(state string) string {
	switch state {
	case StateAddCompany:
		return "Company name:"
	case StateAddContact:
		return "Contact name (or role/department):"
	case StateAddChannel:
		return "Channel (email/telegram/linkedin):"
	case StateAddNote:
		return "Note (keep it short). If none, send '-':"
	}
	return ""
}

// helpText lists the available menu actions.
func helpText() string {
	return "Commands/buttons:\n" +
		"➕ Lead — add a lead\n" +
		"📋 Leads — list recent leads\n" +
		"📊 Dashboard — status counts\n\n" +
		"Email delivery is disabled: Send (sim.) only marks the status."
}
