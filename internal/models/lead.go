// Package models defines the GORM persistence models for Sponso.
package models

import "time"

// Lead statuses form the outreach pipeline. A lead starts as NEW, becomes
// DRAFTED once an email has been generated for it, and SENT_SIMULATED after
// a simulated send. Re-drafting a sent lead moves it back to DRAFTED.
const (
	StatusNew           = "NEW"
	StatusDrafted       = "DRAFTED"
	StatusSentSimulated = "SENT_SIMULATED"
)

// LeadStatuses returns all statuses in pipeline order.
func LeadStatuses() []string {
	return []string{StatusNew, StatusDrafted, StatusSentSimulated}
}

// ValidStatus reports whether s is a recognized lead status.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusDrafted, StatusSentSimulated:
		return true
	}
	return false
}

// Lead is a sponsorship prospect captured through the bot dialog or the CLI.
type Lead struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Company   string `gorm:"size:255;not null"`
	Contact   string `gorm:"size:255"`
	Channel   string `gorm:"size:255"`
	Note      string `gorm:"type:text"`
	Status    string `gorm:"size:32;not null;index"`
	CreatedAt time.Time
}
