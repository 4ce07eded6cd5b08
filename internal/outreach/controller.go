// Package outreach drives a lead through its status pipeline: drafting an
// email moves it to DRAFTED, a simulated send moves it to SENT_SIMULATED.
package outreach

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/akaliyev/sponso/internal/config"
	"github.com/akaliyev/sponso/internal/draft"
	"github.com/akaliyev/sponso/internal/models"
	"github.com/akaliyev/sponso/internal/store"
)

// ErrNoDraft is returned by MarkSent when the lead has no drafted message
// to send.
var ErrNoDraft = errors.New("outreach: lead has no drafted message")

// Controller mediates lead status changes triggered outside the add-lead
// dialog. It is the only caller of UpdateLeadStatus.
type Controller struct {
	db      *gorm.DB
	drafter draft.Drafter
	pitch   config.PitchConfig
}

// ControllerOpts holds parameters for creating a Controller.
type ControllerOpts struct {
	DB      *gorm.DB
	Drafter draft.Drafter
	Pitch   config.PitchConfig
}

// NewController creates a Controller.
func NewController(opts ControllerOpts) (*Controller, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("outreach: db is required")
	}
	if opts.Drafter == nil {
		return nil, fmt.Errorf("outreach: drafter is required")
	}
	return &Controller{
		db:      opts.DB,
		drafter: opts.Drafter,
		pitch:   opts.Pitch,
	}, nil
}

// Open fetches a lead and its last message for display. Read-only; a
// missing lead is (nil, nil, nil).
func (c *Controller) Open(id uint) (*models.Lead, *models.OutreachMessage, error) {
	lead, err := store.GetLead(c.db, id)
	if err != nil || lead == nil {
		return nil, nil, err
	}
	last, err := store.LastMessageForLead(c.db, id)
	if err != nil {
		return nil, nil, err
	}
	return lead, last, nil
}

// GenerateDraft asks the drafter for an email, saves it as a new message,
// and sets the lead's status to DRAFTED. The status is set regardless of
// its prior value, so re-drafting a SENT_SIMULATED lead moves it back to
// DRAFTED. On drafter failure nothing is written and the error is returned.
func (c *Controller) GenerateDraft(ctx context.Context, id uint) (*models.Lead, *models.OutreachMessage, error) {
	lead, err := store.GetLead(c.db, id)
	if err != nil {
		return nil, nil, err
	}
	if lead == nil {
		return nil, nil, nil
	}

	d, err := c.drafter.Draft(ctx, c.pitch, lead)
	if err != nil {
		return nil, nil, fmt.Errorf("outreach: generate draft for lead %d: %w", id, err)
	}

	msg, err := store.SaveMessage(c.db, id, d.Subject, d.Body)
	if err != nil {
		return nil, nil, err
	}
	if err := store.UpdateLeadStatus(c.db, id, models.StatusDrafted); err != nil {
		return nil, nil, err
	}

	lead, err = store.GetLead(c.db, id)
	if err != nil {
		return nil, nil, err
	}
	return lead, msg, nil
}

// MarkSent performs the simulated send: it requires at least one drafted
// message (ErrNoDraft otherwise), sets the status to SENT_SIMULATED, and
// returns the last message as the artifact to copy out. No delivery occurs.
func (c *Controller) MarkSent(id uint) (*models.Lead, *models.OutreachMessage, error) {
	lead, err := store.GetLead(c.db, id)
	if err != nil || lead == nil {
		return nil, nil, err
	}

	last, err := store.LastMessageForLead(c.db, id)
	if err != nil {
		return nil, nil, err
	}
	if last == nil {
		return nil, nil, fmt.Errorf("%w: lead %d", ErrNoDraft, id)
	}

	if err := store.UpdateLeadStatus(c.db, id, models.StatusSentSimulated); err != nil {
		return nil, nil, err
	}

	lead, err = store.GetLead(c.db, id)
	if err != nil {
		return nil, nil, err
	}
	return lead, last, nil
}

// Summary holds the dashboard aggregate: counts per status plus the total.
type Summary struct {
	Counts map[string]int64
	Total  int64
}

// Summarize returns the pipeline summary used by the chat dashboard view
// and the daily digest.
func (c *Controller) Summarize() (*Summary, error) {
	counts, err := store.CountByStatus(c.db)
	if err != nil {
		return nil, err
	}
	s := &Summary{Counts: counts}
	for _, n := range counts {
		s.Total += n
	}
	return s, nil
}
