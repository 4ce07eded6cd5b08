package dashboard

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/akaliyev/sponso/internal/models"
	"github.com/akaliyev/sponso/internal/store"
)

// StatusCount holds a single status row for the summary view.
type StatusCount struct {
	Status string
	Count  int64
}

// Summary holds the pipeline totals for the index page.
type Summary struct {
	Statuses []StatusCount
	Total    int64
}

// StatusSummary returns lead counts per status in pipeline order.
func StatusSummary(db *gorm.DB) (*Summary, error) {
	counts, err := store.CountByStatus(db)
	if err != nil {
		return nil, err
	}
	s := &Summary{}
	for _, status := range models.LeadStatuses() {
		n := counts[status]
		s.Statuses = append(s.Statuses, StatusCount{Status: status, Count: n})
		s.Total += n
	}
	return s, nil
}

// LeadRow holds lead data for the list view.
type LeadRow struct {
	ID        uint
	Company   string
	Contact   string
	Channel   string
	Status    string
	CreatedAt time.Time
}

// LeadList returns recent leads, newest first.
func LeadList(db *gorm.DB, limit int) ([]LeadRow, error) {
	leads, err := store.ListLeads(db, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]LeadRow, len(leads))
	for i, l := range leads {
		rows[i] = LeadRow{
			ID:        l.ID,
			Company:   l.Company,
			Contact:   l.Contact,
			Channel:   l.Channel,
			Status:    l.Status,
			CreatedAt: l.CreatedAt,
		}
	}
	return rows, nil
}

// MessageRow holds a drafted email for the detail view.
type MessageRow struct {
	ID        uint
	Subject   string
	Body      string
	CreatedAt time.Time
}

// LeadDetail holds full lead data plus its drafted emails, newest first.
type LeadDetail struct {
	ID        uint
	Company   string
	Contact   string
	Channel   string
	Note      string
	Status    string
	CreatedAt time.Time
	Messages  []MessageRow
}

// ErrNotFound is returned by GetLeadDetail for an unknown lead ID.
var ErrNotFound = errors.New("dashboard: lead not found")

// GetLeadDetail returns full lead data for the detail page.
func GetLeadDetail(db *gorm.DB, id uint) (*LeadDetail, error) {
	lead, err := store.GetLead(db, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrNotFound
	}

	detail := &LeadDetail{
		ID:        lead.ID,
		Company:   lead.Company,
		Contact:   lead.Contact,
		Channel:   lead.Channel,
		Note:      lead.Note,
		Status:    lead.Status,
		CreatedAt: lead.CreatedAt,
	}

	var msgs []models.OutreachMessage
	if err := db.Where("lead_id = ?", id).Order("id DESC").Find(&msgs).Error; err != nil {
		return nil, err
	}
	detail.Messages = make([]MessageRow, len(msgs))
	for i, m := range msgs {
		detail.Messages[i] = MessageRow{
			ID:        m.ID,
			Subject:   m.Subject,
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		}
	}
	return detail, nil
}
