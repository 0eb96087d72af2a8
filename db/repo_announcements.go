package db

import (
	"community_tool_share/models"
	"context"
	"time"

	"gorm.io/gorm"
)

func (r *Repo) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *Repo) FindAnnouncementByID(ctx context.Context, id string) (*models.Announcement, error) {
	var a models.Announcement
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) UpdateAnnouncement(ctx context.Context, id, title, content string) error {
	res := r.DB.WithContext(ctx).Model(&models.Announcement{}).
		Where("id = ?", id).
		Updates(map[string]any{"title": title, "content": content, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) DeleteAnnouncement(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Announcement{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAnnouncements publishedOnly=true 时只返回已发布
func (r *Repo) ListAnnouncements(ctx context.Context, publishedOnly bool) ([]models.Announcement, error) {
	q := r.DB.WithContext(ctx).Order("created_at DESC")
	if publishedOnly {
		q = q.Where("status = ?", models.AnnouncementPublished)
	}
	as := make([]models.Announcement, 0)
	err := q.Find(&as).Error
	return as, err
}
