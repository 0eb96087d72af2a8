package models

import "time"

const (
	AnnouncementHidden    = 0
	AnnouncementPublished = 1
)

type Announcement struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	AdminID   string    `gorm:"type:uuid;not null" json:"adminId"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Status    int       `gorm:"not null;default:1;index" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"createTime"`
	UpdatedAt time.Time `json:"updateTime"`
}

func (Announcement) TableName() string { return "ts_announcements" }
