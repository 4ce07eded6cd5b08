// Package store is the persistence layer for leads and their outreach
// messages. Every operation is a self-contained call on the shared *gorm.DB;
// there is no cross-call transactionality.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/akaliyev/sponso/internal/models"
)

// ErrInvalidStatus is returned by UpdateLeadStatus for values outside the
// recognized lead status enum. The check runs before any write.
var ErrInvalidStatus = errors.New("store: invalid lead status")

// CreateLead inserts a new lead with status NEW. All fields are trimmed;
// beyond trimming no validation is applied, so empty company or contact
// values are stored as-is.
func CreateLead(db *gorm.DB, company, contact, channel, note string) (*models.Lead, error) {
	lead := models.Lead{
		Company:   strings.TrimSpace(company),
		Contact:   strings.TrimSpace(contact),
		Channel:   strings.TrimSpace(channel),
		Note:      strings.TrimSpace(note),
		Status:    models.StatusNew,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&lead).Error; err != nil {
		return nil, fmt.Errorf("store: create lead: %w", err)
	}
	return &lead, nil
}

// ListLeads returns the most recently created leads first, at most limit.
func ListLeads(db *gorm.DB, limit int) ([]models.Lead, error) {
	var leads []models.Lead
	if err := db.Order("id DESC").Limit(limit).Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("store: list leads: %w", err)
	}
	return leads, nil
}

// GetLead fetches a lead by id. A missing lead is (nil, nil), not an error.
func GetLead(db *gorm.DB, id uint) (*models.Lead, error) {
	var lead models.Lead
	err := db.First(&lead, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get lead %d: %w", id, err)
	}
	return &lead, nil
}

// UpdateLeadStatus overwrites a lead's status unconditionally. The store
// does not enforce transition ordering; callers own the pipeline sequence.
func UpdateLeadStatus(db *gorm.DB, id uint, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := db.Model(&models.Lead{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return fmt.Errorf("store: update lead %d status: %w", id, err)
	}
	return nil
}

// SaveMessage appends a draft message for a lead. The lead id is not
// verified to exist.
func SaveMessage(db *gorm.DB, leadID uint, subject, body string) (*models.OutreachMessage, error) {
	msg := models.OutreachMessage{
		LeadID:    leadID,
		Subject:   strings.TrimSpace(subject),
		Body:      strings.TrimSpace(body),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("store: save message for lead %d: %w", leadID, err)
	}
	return &msg, nil
}

// LastMessageForLead returns the lead's most recent message, or (nil, nil)
// when none exists.
func LastMessageForLead(db *gorm.DB, leadID uint) (*models.OutreachMessage, error) {
	var msg models.OutreachMessage
	err := db.Where("lead_id = ?", leadID).Order("id DESC").First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: last message for lead %d: %w", leadID, err)
	}
	return &msg, nil
}

// CountByStatus returns lead counts keyed by status. All three statuses are
// always present, defaulting to 0, so the sum across keys is the total.
func CountByStatus(db *gorm.DB) (map[string]int64, error) {
	counts := make(map[string]int64, 3)
	for _, s := range models.LeadStatuses() {
		counts[s] = 0
	}

	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := db.Model(&models.Lead{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: count by status: %w", err)
	}
	for _, r := range rows {
		if _, ok := counts[r.Status]; ok {
			counts[r.Status] = r.Count
		}
	}
	return counts, nil
}
