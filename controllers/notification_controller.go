package controllers

import (
	"community_tool_share/app"

	"github.com/gin-gonic/gin"
)

func (s *Srv) ListNotifications(c *gin.Context) {
	list, err := s.Svc.Notifications.List(c.Request.Context(), app.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", list)
}

func (s *Srv) UnreadCount(c *gin.Context) {
	n, err := s.Svc.Notifications.UnreadCount(c.Request.Context(), app.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", n)
}

func (s *Srv) MarkNotificationRead(c *gin.Context) {
	if err := s.Svc.Notifications.MarkRead(c.Request.Context(), app.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Marked as read", nil)
}

func (s *Srv) MarkAllNotificationsRead(c *gin.Context) {
	n, err := s.Svc.Notifications.MarkAllRead(c.Request.Context(), app.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "All notifications marked as read", app.H{"updated": n})
}
