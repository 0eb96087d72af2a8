package db

import (
	"community_tool_share/models"
	"context"

	"github.com/google/uuid"
)

func (r *Repo) CreateNotification(ctx context.Context, userID, title, content, typ, relatedID string) (*models.Notification, error) {
	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Type:      typ,
		RelatedID: relatedID,
	}
	if err := r.DB.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

func (r *Repo) FindNotificationByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.DB.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *Repo) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	ns := make([]models.Notification, 0)
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ns).Error
	return ns, err
}

func (r *Repo) CountUnreadNotifications(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// 已读只会 false -> true
func (r *Repo) MarkNotificationRead(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true).Error
}

func (r *Repo) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
