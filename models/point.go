package models

import "time"

type PointType string

const (
	PointBonus   PointType = "BONUS"
	PointPublish PointType = "PUBLISH"
	PointBorrow  PointType = "BORROW"
	PointLend    PointType = "LEND"
	PointReturn  PointType = "RETURN"
	PointReview  PointType = "REVIEW"
)

// PointRecord 积分流水，只追加不修改
type PointRecord struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"type:uuid;index;not null" json:"userId"`
	Points      int       `gorm:"not null" json:"points"`
	Type        PointType `gorm:"size:20;not null" json:"type"`
	Description string    `gorm:"size:200" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"createTime"`
}

func (PointRecord) TableName() string { return "ts_point_records" }
