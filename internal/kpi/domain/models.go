// Package domain contains persistence models and contracts for KPI master data.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Indicator is a KPI definition from master data. Read-only to this service;
// maintained by the configuration UI.
type Indicator struct {
	IndicatorCd string    `gorm:"primaryKey;type:text"`
	IndicatorNm string    `gorm:"type:text;not null"`
	CategoryCd  string    `gorm:"type:text;not null;index"`
	Unit        string    `gorm:"type:text"`
	ChartType   string    `gorm:"type:text"`
	UpdateCycle string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Indicator) TableName() string { return "kpi_indicators" }

// Category groups indicators for display.
type Category struct {
	CategoryCd  string    `gorm:"primaryKey;type:text"`
	CategoryNm  string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Category) TableName() string { return "kpi_categories" }

// Subscription is a tenant's opt-in to track an indicator. At most one active
// row exists per (site, company_code, indicator_cd).
type Subscription struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	Site        string            `gorm:"type:text;not null;index"`
	CompanyCode string            `gorm:"type:text;not null;index"`
	IndicatorCd string            `gorm:"type:text;not null"`
	TargetValue *float64          `gorm:""`
	Description *string           `gorm:"type:text"`
	SortOrder   int               `gorm:"not null;default:0"`
	FlagActive  bool              `gorm:"not null;default:true"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "kpi_subscriptions" }

// IndicatorMeta is the denormalized indicator+category join used during chart
// assembly, keyed by indicator code for O(1) lookup.
type IndicatorMeta struct {
	IndicatorCd string `json:"kpiIndicatorCd"`
	IndicatorNm string `json:"kpiIndicatorNm"`
	CategoryCd  string `json:"categoryCd"`
	CategoryNm  string `json:"categoryNm"`
	Unit        string `json:"unit"`
	ChartType   string `json:"chartType"`
}

// ChartFilter is one per-indicator request entry. IndicatorCd may be empty;
// the first entry of a batch becomes the default filter for indicators
// without a specific entry.
type ChartFilter struct {
	IndicatorCd string `json:"kpiIndicatorCd"`
	Date        string `json:"date" binding:"required"`
	Range       string `json:"range" binding:"required"`
}

// ChartRow is one time bucket: a reserved "name" key holding the bucket label
// plus one key per series label holding its value.
type ChartRow map[string]any

// ChartPayload is the chart-ready response for one subscribed indicator.
type ChartPayload struct {
	IndicatorCd string     `json:"kpiIndicatorCd"`
	Title       string     `json:"kpiTitle"`
	CategoryCd  string     `json:"categoryCd"`
	CategoryNm  string     `json:"categoryNm"`
	ChartType   string     `json:"chartType"`
	Unit        string     `json:"unit"`
	TargetValue *float64   `json:"targetValue"`
	ChartData   []ChartRow `json:"chartData"`
}

// SkipReason explains why a subscription contributed no payload.
type SkipReason string

const (
	SkipMissingMetadata SkipReason = "missing_metadata"
	SkipNoAdapter       SkipReason = "no_adapter"
	SkipInvalidFilter   SkipReason = "invalid_filter"
	SkipAdapterError    SkipReason = "adapter_error"
	SkipNoData          SkipReason = "no_data"
)

// ChartOutcome is the per-subscription assembly result. Exactly one of
// Payload or Skip is set.
type ChartOutcome struct {
	IndicatorCd string
	Payload     *ChartPayload
	Skip        SkipReason
}
