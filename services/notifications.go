package services

import (
	"community_tool_share/apperr"
	"community_tool_share/models"
	"context"
)

type NotificationService struct{ base }

func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	list, err := s.repo.ListNotifications(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "list notifications")
	}
	return list, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, apperr.Wrap(err, "count unread notifications")
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	n, err := s.repo.FindNotificationByID(ctx, id)
	if err != nil {
		return lookupErr(err, "Notification", "id", id)
	}
	if n.UserID != userID {
		return apperr.Business("You can only mark your own notifications as read")
	}
	if n.IsRead {
		return nil
	}
	if err := s.repo.MarkNotificationRead(ctx, id); err != nil {
		return apperr.Wrap(err, "mark notification read")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, apperr.Wrap(err, "mark all notifications read")
	}
	return n, nil
}
