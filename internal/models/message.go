package models

import "time"

// OutreachMessage is a generated email draft (subject + body) attached to a
// lead. Messages are append-only: re-drafting a lead adds a new row, and
// only the most recent one is ever shown or "sent".
type OutreachMessage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	LeadID    uint   `gorm:"not null;index"`
	Subject   string `gorm:"size:512"`
	Body      string `gorm:"type:text"`
	CreatedAt time.Time

	Lead Lead `gorm:"foreignKey:LeadID"`
}
