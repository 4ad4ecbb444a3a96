package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	TenantIDKey ContextKey = "tenant_id"
)

type AuditAction string

const (
	AuditActionReportCreated    AuditAction = "REPORT_CREATED"
	AuditActionReportUpdated    AuditAction = "REPORT_UPDATED"
	AuditActionReportDeleted    AuditAction = "REPORT_DELETED"
	AuditActionReportDuplicated AuditAction = "REPORT_DUPLICATED"
	AuditActionReportRun        AuditAction = "REPORT_RUN"
	AuditActionScheduleCreated  AuditAction = "SCHEDULE_CREATED"
	AuditActionScheduleUpdated  AuditAction = "SCHEDULE_UPDATED"
	AuditActionScheduleDeleted  AuditAction = "SCHEDULE_DELETED"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Action         AuditAction        `bson:"action" json:"action"`
	Entity         string             `bson:"entity" json:"entity"`                       // The collection name
	RecordID       string             `bson:"record_id" json:"record_id"`                 // The ID of the record being modified
	ActorID        string             `bson:"actor_id" json:"actor_id"`                   // User ID who performed the action
	ActorName      string             `bson:"-" json:"actor_name,omitempty"`              // Populated name of the actor
	Changes        map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"` // For updates: field -> {old, new}
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

// Log is the record shape written by the async logger sink.
type Log struct {
	Message      string    `bson:"message"`
	Caller       string    `bson:"caller"`
	AppId        string    `bson:"app_id"`
	LogLevelId   int       `bson:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc"`
}
