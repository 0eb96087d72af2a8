package models

import "time"

const (
	NotifyBorrowApply    = "BORROW_APPLY"
	NotifyBorrowApproved = "BORROW_APPROVED"
	NotifyBorrowRejected = "BORROW_REJECTED"
)

type Notification struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;index:idx_notify_user_read;not null" json:"userId"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	Type      string    `gorm:"size:30;not null" json:"type"`
	RelatedID string    `gorm:"size:36" json:"relatedId,omitempty"`
	IsRead    bool      `gorm:"not null;default:false;index:idx_notify_user_read" json:"isRead"`
	CreatedAt time.Time `gorm:"index" json:"createTime"`
}

func (Notification) TableName() string { return "ts_notifications" }
