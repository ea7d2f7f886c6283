// Package domain contains persistence models for production results and
// production-rate snapshots.
package domain

import "time"

// Cadence names one rollup schedule.
type Cadence string

const (
	CadenceHour Cadence = "hour"
	CadenceDay  Cadence = "day"
)

// SnapshotTable maps a cadence to its append-only snapshot table.
func (c Cadence) SnapshotTable() string {
	if c == CadenceDay {
		return "production_rate_day_snapshots"
	}
	return "production_rate_hour_snapshots"
}

// Valid reports whether the cadence is one of the two schedules.
func (c Cadence) Valid() bool {
	return c == CadenceHour || c == CadenceDay
}

// OperationRateRow is one production result projected for the operation-rate
// metric. WorkTime is the result timestamp rendered as "yyyy-MM-dd HH:mm:ss".
type OperationRateRow struct {
	WorkTime    string
	EquipmentCd string
	PlanMinutes float64
	RunMinutes  float64
}

// QuantityRow is one production result projected for the yield/defect
// metrics.
type QuantityRow struct {
	WorkTime  string
	ItemCd    string
	GoodQty   float64
	DefectQty float64
	TotalQty  float64
}

// RateAggregate is one row of the production-rate aggregation query: the
// current totals for a site+company with outstanding work.
type RateAggregate struct {
	Site            string
	CompanyCode     string
	PlanSum         float64
	WorkOrderSum    float64
	NotWorkOrderSum float64
	ProductionRate  float64
}

// RateSnapshot is one appended rollup row. Rows are immutable once written;
// AggregationTime is the wall-clock time of the scheduler run.
type RateSnapshot struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	Site            string    `gorm:"type:text;not null;index"`
	CompanyCode     string    `gorm:"type:text;not null;index"`
	PlanSum         float64   `gorm:"not null"`
	WorkOrderSum    float64   `gorm:"not null"`
	NotWorkOrderSum float64   `gorm:"not null"`
	ProductionRate  float64   `gorm:"not null"`
	AggregationTime time.Time `gorm:"not null;index"`
	CreatedBy       string    `gorm:"type:text;not null"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedBy       string    `gorm:"type:text;not null"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}
