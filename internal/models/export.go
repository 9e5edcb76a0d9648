package models

import "time"

const (
	ExportTypeCSV = "csv"
	ExportTypePDF = "pdf"
)

type DataExport struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Token          string     `gorm:"uniqueIndex;not null" json:"token"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	ExportType     string     `gorm:"not null" json:"export_type"`
	DateRangeStart *time.Time `gorm:"type:date" json:"date_range_start"`
	DateRangeEnd   *time.Time `gorm:"type:date" json:"date_range_end"`
	EntryCount     int        `gorm:"not null;default:0" json:"entry_count"`
	CreatedAt      time.Time  `json:"created_at"`
}
