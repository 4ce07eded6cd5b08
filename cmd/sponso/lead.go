package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/akaliyev/sponso/internal/models"
	"github.com/akaliyev/sponso/internal/store"
)

func newLeadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lead",
		Short: "Lead management commands",
	}

	cmd.AddCommand(newLeadAddCmd())
	cmd.AddCommand(newLeadListCmd())
	cmd.AddCommand(newLeadShowCmd())
	cmd.AddCommand(newLeadSetStatusCmd())
	return cmd
}

func newLeadAddCmd() *cobra.Command {
	var (
		configPath string
		company    string
		contact    string
		channel    string
		note       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new lead",
		Long:  "Creates a new sponsorship lead with status NEW.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeadAdd(cmd, configPath, company, contact, channel, note)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "sponso.yaml", "path to Sponso config file")
	cmd.Flags().StringVar(&company, "company", "", "company name (required)")
	cmd.Flags().StringVar(&contact, "contact", "", "contact person")
	cmd.Flags().StringVar(&channel, "channel", "", "contact channel (email, telegram, ...)")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	cmd.MarkFlagRequired("company")
	return cmd
}

func runLeadAdd(cmd *cobra.Command, configPath, company, contact, channel, note string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	lead, err := store.CreateLead(gormDB, company, contact, channel, note)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created lead #%d (%s)\n", lead.ID, lead.Company)
	return nil
}

func newLeadListCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads",
		Long:  "Lists the most recent leads as a table, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeadList(cmd, configPath, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "sponso.yaml", "path to Sponso config file")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of leads to show")
	return cmd
}

func runLeadList(cmd *cobra.Command, configPath string, limit int) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	leads, err := store.ListLeads(gormDB, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(leads) == 0 {
		fmt.Fprintln(out, "No leads found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPANY\tCONTACT\tCHANNEL\tSTATUS\tCREATED")
	for _, l := range leads {
		contact := l.Contact
		if contact == "" {
			contact = "-"
		}
		channel := l.Channel
		if channel == "" {
			channel = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, truncate(l.Company, 40), contact, channel, l.Status,
			l.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}
	w.Flush()
	return nil
}

func newLeadShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show lead details",
		Long:  "Displays full details of a lead, including its latest drafted email.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeadShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "sponso.yaml", "path to Sponso config file")
	return cmd
}

func runLeadShow(cmd *cobra.Command, configPath, rawID string) error {
	id, err := parseLeadID(rawID)
	if err != nil {
		return err
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	lead, err := store.GetLead(gormDB, id)
	if err != nil {
		return err
	}
	if lead == nil {
		return fmt.Errorf("lead %d not found", id)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:       %d\n", lead.ID)
	fmt.Fprintf(out, "Company:  %s\n", lead.Company)
	fmt.Fprintf(out, "Contact:  %s\n", lead.Contact)
	fmt.Fprintf(out, "Channel:  %s\n", lead.Channel)
	fmt.Fprintf(out, "Status:   %s\n", lead.Status)
	if lead.Note != "" {
		fmt.Fprintf(out, "Note:     %s\n", lead.Note)
	}
	fmt.Fprintf(out, "Created:  %s UTC\n", lead.CreatedAt.UTC().Format("2006-01-02 15:04:05"))

	msg, err := store.LastMessageForLead(gormDB, lead.ID)
	if err != nil {
		return err
	}
	if msg != nil {
		fmt.Fprintf(out, "\nLatest draft (%s UTC)\n", msg.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Subject: %s\n\n%s\n", msg.Subject, msg.Body)
	}
	return nil
}

func newLeadSetStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Override a lead's status",
		Long:  "Sets a lead's status directly, bypassing the normal draft and send flow. Valid statuses: " + strings.Join(models.LeadStatuses(), ", ") + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeadSetStatus(cmd, configPath, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "sponso.yaml", "path to Sponso config file")
	return cmd
}

func runLeadSetStatus(cmd *cobra.Command, configPath, rawID, status string) error {
	id, err := parseLeadID(rawID)
	if err != nil {
		return err
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	lead, err := store.GetLead(gormDB, id)
	if err != nil {
		return err
	}
	if lead == nil {
		return fmt.Errorf("lead %d not found", id)
	}

	if err := store.UpdateLeadStatus(gormDB, id, status); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Lead #%d: %s -> %s\n", id, lead.Status, status)
	return nil
}

func parseLeadID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid lead id %q", raw)
	}
	return uint(id), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
