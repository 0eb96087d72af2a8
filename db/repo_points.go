package db

import (
	"community_tool_share/models"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddPoints 追加一条流水并累加用户余额；调用方负责放在同一事务里
func (r *Repo) AddPoints(ctx context.Context, userID string, delta int, typ models.PointType, desc string) (*models.PointRecord, error) {
	rec := &models.PointRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Points:      delta,
		Type:        typ,
		Description: desc,
	}
	if err := r.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (r *Repo) ListPointRecords(ctx context.Context, userID string) ([]models.PointRecord, error) {
	recs := make([]models.PointRecord, 0)
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}

// LedgerBalance 流水求和，用于核对 users.points
func (r *Repo) LedgerBalance(ctx context.Context, userID string) (int, error) {
	var sum int
	err := r.DB.WithContext(ctx).Model(&models.PointRecord{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return sum, err
}

// RankUsers 积分降序，同分按注册先后
func (r *Repo) RankUsers(ctx context.Context, limit int) ([]models.User, error) {
	users := make([]models.User, 0, limit)
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.UserStatusActive).
		Order("points DESC").
		Order("created_at ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
