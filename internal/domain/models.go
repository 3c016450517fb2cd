// Package domain defines the persistence models for the combinations API:
// the item catalog, stored responses, and the per-combination rows that
// fingerprint each response's result set. These types are mapped with GORM
// and shared by the repository and service layers.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// RequestPayload is the raw request as received: one size per group and
// the number of groups to combine.
type RequestPayload struct {
	Items  []int `json:"items"`
	Length int   `json:"length"`
}

// ResultPayload is the full result set of a request.
type ResultPayload struct {
	Combination [][]string `json:"combination"`
}

// Item is one row of the item catalog. The catalog only ever reflects the
// most recent request; it is replaced wholesale on every request.
//
// Fields:
//   - Label: group letter + 1-based index ("B3"); unique across the table.
//   - GroupLetter: the single-letter group the item belongs to.
type Item struct {
	ID          uint      `json:"-"          gorm:"primaryKey"`
	Label       string    `json:"label"      gorm:"type:varchar(50);not null;uniqueIndex:ux_items_label"`
	GroupLetter string    `json:"group"      gorm:"type:char(1);not null;index:idx_items_group"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Item.
func (Item) TableName() string { return "items" }

// Response records one full request/result cycle. ID is assigned by the
// store on insert and is the external handle for the request. Responses are
// written once and never updated.
type Response struct {
	ID               uint                                `json:"id"                 gorm:"primaryKey"`
	RequestJSON      datatypes.JSONType[RequestPayload] `json:"request"            gorm:"column:request_json;not null"`
	ResponseJSON     datatypes.JSONType[ResultPayload]  `json:"result"             gorm:"column:response_json;not null"`
	ProcessingTimeMs float64                             `json:"processing_time_ms" gorm:"type:decimal(10,2)"`
	CallerAddress    string                              `json:"caller_address"     gorm:"type:varchar(45)"`
	CreatedAt        time.Time                           `json:"created_at"         gorm:"index:idx_responses_created"`
}

// TableName returns the database table name for Response.
func (Response) TableName() string { return "responses" }

// Combination is one member of a response's result set together with its
// order-independent content hash. Rows are cascade-deleted with their
// response.
type Combination struct {
	ID              uint                        `json:"id"               gorm:"primaryKey"`
	ResponseID      uint                        `json:"response_id"      gorm:"not null;index:idx_combinations_response"`
	CombinationJSON datatypes.JSONSlice[string] `json:"combination"      gorm:"column:combination_json;not null"`
	CombinationHash string                      `json:"combination_hash" gorm:"type:char(64);not null;index:idx_combinations_hash"`
	CreatedAt       time.Time                   `json:"created_at"`

	Response Response `json:"-" gorm:"foreignKey:ResponseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Combination.
func (Combination) TableName() string { return "combinations" }

// All lists every model in migration order.
func All() []any {
	return []any{&Item{}, &Response{}, &Combination{}, &Idempotency{}}
}
