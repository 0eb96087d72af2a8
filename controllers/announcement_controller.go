package controllers

import (
	"community_tool_share/app"

	"github.com/gin-gonic/gin"
)

type announcementReq struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

func (s *Srv) PublicAnnouncements(c *gin.Context) {
	list, err := s.Svc.Announcements.ListPublic(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", list)
}

func (s *Srv) AdminAnnouncements(c *gin.Context) {
	list, err := s.Svc.Announcements.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", list)
}

func (s *Srv) CreateAnnouncement(c *gin.Context) {
	var in announcementReq
	if !bind(c, &in) {
		return
	}
	a, err := s.Svc.Announcements.Create(c.Request.Context(), app.Actor(c), in.Title, in.Content)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Announcement created", a)
}

func (s *Srv) UpdateAnnouncement(c *gin.Context) {
	var in announcementReq
	if !bind(c, &in) {
		return
	}
	a, err := s.Svc.Announcements.Update(c.Request.Context(), c.Param("id"), in.Title, in.Content)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Announcement updated", a)
}

func (s *Srv) DeleteAnnouncement(c *gin.Context) {
	if err := s.Svc.Announcements.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Announcement deleted", nil)
}
