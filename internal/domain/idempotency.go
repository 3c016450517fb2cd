package domain

import "time"

// Idempotency remembers which response a caller's Idempotency-Key produced,
// so a retried POST /generate can be answered from the stored response
// instead of running the pipeline again. RequestHash fingerprints the request
// body; a key reused with a different body is a conflict, not a replay.
type Idempotency struct {
	ID            string    `gorm:"type:char(36);primaryKey"`
	CallerAddress string    `gorm:"type:varchar(45);not null;uniqueIndex:ux_idem_caller_key,priority:1"`
	Key           string    `gorm:"column:idempotency_key;type:varchar(200);not null;uniqueIndex:ux_idem_caller_key,priority:2"`
	RequestHash   string    `gorm:"type:char(64);not null"`
	ResponseID    uint      `gorm:"not null;index"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt     time.Time `gorm:"not null;index"`

	Response Response `gorm:"foreignKey:ResponseID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
