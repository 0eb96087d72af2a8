package db

import (
	"community_tool_share/models"
	"context"
	"errors"
)

var ErrDuplicateReview = errors.New("review already exists for this borrow record")

type ReviewFilter struct {
	ToolID     string
	ReviewerID string
}

func (r *Repo) CreateReview(ctx context.Context, rv *models.Review) error {
	if err := r.DB.WithContext(ctx).Create(rv).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicateReview
		}
		return err
	}
	return nil
}

func (r *Repo) ReviewExistsForBorrow(ctx context.Context, borrowRecordID string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Where("borrow_record_id = ?", borrowRecordID).
		Count(&n).Error
	return n > 0, err
}

// ListReviews 评价人昵称优先取当前显示名，用户不存在时退回快照
func (r *Repo) ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, error) {
	q := r.DB.WithContext(ctx).
		Table("ts_reviews rv").
		Select(`
			rv.id, rv.borrow_record_id, rv.reviewer_id, rv.tool_id, rv.rating, rv.content, rv.created_at,
			COALESCE(u.display_name, rv.reviewer_name) AS reviewer_name
		`).
		Joins("LEFT JOIN " + models.UserTable + " u ON u.id = rv.reviewer_id")
	if f.ToolID != "" {
		q = q.Where("rv.tool_id = ?", f.ToolID)
	}
	if f.ReviewerID != "" {
		q = q.Where("rv.reviewer_id = ?", f.ReviewerID)
	}
	reviews := make([]models.Review, 0)
	if err := q.Order("rv.created_at DESC").Scan(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
