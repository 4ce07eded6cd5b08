package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Lead action names carried in button data ("lead:<id>:<action>").
const (
	ActionOpen     = "open"
	ActionGenerate = "gen"
	ActionSend     = "send"
)

// Menu action data for the main menu buttons.
const (
	MenuAdd       = "menu:add"
	MenuLeads     = "menu:leads"
	MenuDashboard = "menu:dashboard"
	MenuHelp      = "menu:help"
)

// LeadActionData builds button data for a lead action.
func LeadActionData(leadID uint, action string) string {
	return fmt.Sprintf("lead:%d:%s", leadID, action)
}

// ParseLeadAction splits "lead:<id>:<action>" button data. Returns an error
// for anything malformed.
func ParseLeadAction(data string) (uint, string, error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[0] != "lead" {
		return 0, "", fmt.Errorf("bot: malformed lead action %q", data)
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, "", fmt.Errorf("bot: malformed lead id in %q", data)
	}
	switch parts[2] {
	case ActionOpen, ActionGenerate, ActionSend:
	default:
		return 0, "", fmt.Errorf("bot: unknown lead action %q", parts[2])
	}
	return uint(id), parts[2], nil
}
