package schedule

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ScheduleType string

const (
	ScheduleDaily   ScheduleType = "daily"
	ScheduleWeekly  ScheduleType = "weekly"
	ScheduleMonthly ScheduleType = "monthly"
)

// Format is the scheduler's own export format enumeration. The report-facing
// names (EXCEL/CSV/PDF) are translated by the schedule binding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

type ScheduleConfig struct {
	Time       string `json:"time" bson:"time"`                                   // "15:04", 24h clock
	DayOfWeek  int    `json:"day_of_week,omitempty" bson:"day_of_week,omitempty"` // 0=Sunday, weekly only
	DayOfMonth int    `json:"day_of_month,omitempty" bson:"day_of_month,omitempty"`
}

// ScheduleRecord is a recurring-delivery definition owned by this service.
type ScheduleRecord struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `json:"organization_id" bson:"organization_id"`
	ReportID       primitive.ObjectID `json:"report_id" bson:"report_id"`
	Name           string             `json:"name" bson:"name"`
	ScheduleType   ScheduleType       `json:"schedule_type" bson:"schedule_type"`
	ScheduleConfig ScheduleConfig     `json:"schedule_config" bson:"schedule_config"`
	Timezone       string             `json:"timezone,omitempty" bson:"timezone,omitempty"`
	Format         Format             `json:"format" bson:"format"`
	Recipients     []string           `json:"recipients" bson:"recipients"`
	IsActive       bool               `json:"is_active" bson:"is_active"`
	LastRunAt      *time.Time         `json:"last_run_at,omitempty" bson:"last_run_at,omitempty"`
	NextRunAt      *time.Time         `json:"next_run_at,omitempty" bson:"next_run_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}
