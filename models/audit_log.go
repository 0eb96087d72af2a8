package models

import "time"

// AuditLog 记录管理员操作：审核、下架、封禁、公告
type AuditLog struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID       string    `gorm:"type:uuid;index" json:"actorId"`
	ActorUsername string    `gorm:"size:50" json:"actorUsername"`
	Action        string    `gorm:"size:40;not null;index" json:"action"`
	TargetType    string    `gorm:"size:20;not null" json:"targetType"`
	TargetID      string    `gorm:"size:36" json:"targetId"`
	Reason        *string   `json:"reason,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
}

func (AuditLog) TableName() string { return "ts_audit_logs" }
