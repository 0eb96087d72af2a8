package services

import (
	"community_tool_share/apperr"
	"community_tool_share/db"
	"community_tool_share/models"
	"context"
	"strings"

	"github.com/google/uuid"
)

type AnnouncementService struct{ base }

func validAnnouncement(title, content string) (string, string, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return "", "", apperr.Validation("title and content are required")
	}
	return title, content, nil
}

func (s *AnnouncementService) Create(ctx context.Context, admin Actor, title, content string) (*models.Announcement, error) {
	title, content, err := validAnnouncement(title, content)
	if err != nil {
		return nil, err
	}
	a := &models.Announcement{
		ID:      uuid.NewString(),
		AdminID: admin.ID,
		Title:   title,
		Content: content,
		Status:  models.AnnouncementPublished,
	}
	err = s.repo.Transaction(ctx, func(tx *db.Repo) error {
		if err := tx.CreateAnnouncement(ctx, a); err != nil {
			return apperr.Wrap(err, "create announcement")
		}
		if _, err := tx.LogAdminAction(ctx, db.AdminAction{
			ActorID:       admin.ID,
			ActorUsername: admin.Username,
			Action:        "announcement.create",
			TargetType:    "announcement",
			TargetID:      a.ID,
		}); err != nil {
			return apperr.Wrap(err, "audit log")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, id, title, content string) (*models.Announcement, error) {
	title, content, err := validAnnouncement(title, content)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAnnouncement(ctx, id, title, content); err != nil {
		return nil, lookupErr(err, "Announcement", "id", id)
	}
	a, err := s.repo.FindAnnouncementByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Announcement", "id", id)
	}
	return a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteAnnouncement(ctx, id); err != nil {
		return lookupErr(err, "Announcement", "id", id)
	}
	return nil
}

func (s *AnnouncementService) ListPublic(ctx context.Context) ([]models.Announcement, error) {
	list, err := s.repo.ListAnnouncements(ctx, true)
	if err != nil {
		return nil, apperr.Wrap(err, "list announcements")
	}
	return list, nil
}

func (s *AnnouncementService) ListAll(ctx context.Context) ([]models.Announcement, error) {
	list, err := s.repo.ListAnnouncements(ctx, false)
	if err != nil {
		return nil, apperr.Wrap(err, "list announcements")
	}
	return list, nil
}
