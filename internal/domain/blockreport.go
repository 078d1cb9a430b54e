package domain

import (
	"time"

	"github.com/google/uuid"
)

type BlockReportType string

const (
	BlockReportBlock  BlockReportType = "block"
	BlockReportReport BlockReportType = "report"
)

// BlockReport records a reporter acting against a reported user. DFRE's
// safety stage excludes any reported user from the reporter's candidate set
// unconditionally (spec §4.4 stage 2). Unique per (reporter, reported, type).
type BlockReport struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReporterID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_block_report_pair;column:reporter_id" json:"reporter_id"`
	ReportedID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_block_report_pair;column:reported_id" json:"reported_id"`
	Type       BlockReportType `gorm:"column:type;not null;uniqueIndex:idx_block_report_pair" json:"type"`

	Reason  string `gorm:"column:reason" json:"reason,omitempty"`
	Details string `gorm:"column:details" json:"details,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (BlockReport) TableName() string { return "block_reports" }
