package models

import "time"

type Review struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	BorrowRecordID string    `gorm:"type:uuid;uniqueIndex;not null" json:"borrowRecordId"` // 一条借用记录最多一条评价
	ReviewerID     string    `gorm:"type:uuid;index;not null" json:"reviewerId"`
	ToolID         string    `gorm:"type:uuid;index;not null" json:"toolId"`
	Rating         int       `gorm:"not null" json:"rating"`
	Content        string    `gorm:"type:text" json:"content,omitempty"`
	ReviewerName   string    `gorm:"size:50" json:"reviewerNickname"` // 创建时快照
	CreatedAt      time.Time `gorm:"index" json:"createTime"`
}

func (Review) TableName() string { return "ts_reviews" }
