package models

import "time"

const ToolTable = "ts_tools"

type ToolStatus string

const (
	ToolPendingReview ToolStatus = "PENDING_REVIEW"
	ToolApproved      ToolStatus = "APPROVED"
	ToolRejected      ToolStatus = "REJECTED"
	ToolAvailable     ToolStatus = "AVAILABLE"
	ToolBorrowed      ToolStatus = "BORROWED"
	ToolOffline       ToolStatus = "OFFLINE"
)

type Tool struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     string     `gorm:"type:uuid;index;not null" json:"ownerId"`
	Name        string     `gorm:"size:100;not null;index" json:"name"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Category    string     `gorm:"size:50;index" json:"category,omitempty"`
	Images      string     `gorm:"size:1000" json:"images,omitempty"`
	Condition   string     `gorm:"column:tool_condition;size:50" json:"toolCondition,omitempty"`
	Location    string     `gorm:"size:200" json:"location,omitempty"`
	Status      ToolStatus `gorm:"size:20;not null;index;default:'PENDING_REVIEW'" json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Tool) TableName() string { return ToolTable }

// AuditAction 管理员审核动作，只接受 approve / reject
type AuditAction string

const (
	AuditApprove AuditAction = "approve"
	AuditReject  AuditAction = "reject"
)
