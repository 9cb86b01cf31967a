package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Period identifies one distinct (property, month, year) distribution.
type Period struct {
	PropertyID snowflake.ID
	Month      int
	Year       int
}

// PeriodFigures aggregates the stored rows of one period.
type PeriodFigures struct {
	Gross    float64
	TotalFee float64
	Rows     int64
}

// ListRentFilter narrows List results.
type ListRentFilter struct {
	PropertyID snowflake.ID
	OwnerID    snowflake.ID
	Month      int
	Year       int
	Offset     int
	Limit      int
}

// PropertyTotal is one row of the totals-by-property projection.
type PropertyTotal struct {
	PropertyID snowflake.ID `json:"property_id"`
	Gross      float64      `json:"gross"`
	Fees       float64      `json:"fees"`
	Net        float64      `json:"net"`
	Records    int64        `json:"records"`
}

// MonthTotal is one row of the totals-by-month projection.
type MonthTotal struct {
	Month   int     `json:"month"`
	Gross   float64 `json:"gross"`
	Fees    float64 `json:"fees"`
	Net     float64 `json:"net"`
	Records int64   `json:"records"`
}

// MatrixCell is one owner's net for one property, one cell of the
// owner-by-property matrix view.
type MatrixCell struct {
	OwnerID    snowflake.ID `json:"owner_id"`
	PropertyID snowflake.ID `json:"property_id"`
	Net        float64      `json:"net"`
}

// Repository is the persistence boundary for rent records.
type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, record *RentRecord) error
	Update(ctx context.Context, tx *gorm.DB, record *RentRecord) error
	FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*RentRecord, error)
	FindByKey(ctx context.Context, tx *gorm.DB, propertyID, ownerID snowflake.ID, month, year int) (*RentRecord, error)
	List(ctx context.Context, tx *gorm.DB, filter ListRentFilter) ([]RentRecord, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error

	// ListPeriods returns every distinct (property, month, year)
	// present, ordered by year, month, property.
	ListPeriods(ctx context.Context, tx *gorm.DB) ([]Period, error)

	// FindPeriodFigures reconstructs a period's gross and fee totals
	// from its stored rows.
	FindPeriodFigures(ctx context.Context, tx *gorm.DB, period Period) (PeriodFigures, error)

	TotalsByProperty(ctx context.Context, tx *gorm.DB, year int) ([]PropertyTotal, error)
	TotalsByMonth(ctx context.Context, tx *gorm.DB, year int) ([]MonthTotal, error)
	// Matrix sums nets per owner and property. Month zero covers the
	// whole year.
	Matrix(ctx context.Context, tx *gorm.DB, month, year int) ([]MatrixCell, error)
	DistinctYears(ctx context.Context, tx *gorm.DB) ([]int, error)
	LastPeriod(ctx context.Context, tx *gorm.DB) (month, year int, registeredAt time.Time, ok bool, err error)
}
