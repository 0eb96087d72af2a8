package controllers

import (
	"community_tool_share/app"
	"community_tool_share/models"
	"community_tool_share/services"

	"github.com/gin-gonic/gin"
)

type userStatusReq struct {
	Status *int `json:"status" binding:"required"`
}

type auditReq struct {
	Action string `json:"action" binding:"required"`
}

type offlineReq struct {
	Reason string `json:"reason"`
}

func (s *Srv) Dashboard(c *gin.Context) {
	d, err := s.Svc.Admin.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", d)
}

// ListUsers ?q=&page=&size=
func (s *Srv) ListUsers(c *gin.Context) {
	var q struct {
		Q    string `form:"q"`
		Page int    `form:"page,default=1"`
		Size int    `form:"size,default=20"`
	}
	if !bindQuery(c, &q) {
		return
	}
	res, err := s.Svc.Users.List(c.Request.Context(), q.Q, q.Page, q.Size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", res)
}

func (s *Srv) GetUser(c *gin.Context) {
	u, err := s.Svc.Users.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", u)
}

// SetUserStatus 禁用时吊销该用户所有会话
func (s *Srv) SetUserStatus(c *gin.Context) {
	var in userStatusReq
	if !bind(c, &in) {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := s.Svc.Users.SetStatus(ctx, app.Actor(c), id, *in.Status); err != nil {
		fail(c, err)
		return
	}
	if *in.Status == models.UserStatusDisabled {
		n, err := s.AppSess.RevokeAllForUser(ctx, id)
		if err != nil {
			s.Log.Error("revoke sessions failed", "user", id, "err", err)
		} else {
			s.Log.Info("sessions revoked", "user", id, "count", n)
		}
	}
	u, err := s.Svc.Users.Profile(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "User status updated", u)
}

func (s *Srv) AdminTools(c *gin.Context) {
	tools, err := s.Svc.Tools.ListAll(c.Request.Context(), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", tools)
}

// AuditTool 动作在这里解析成枚举，未知值直接 400
func (s *Srv) AuditTool(c *gin.Context) {
	var in auditReq
	if !bind(c, &in) {
		return
	}
	action, err := services.ParseAuditAction(in.Action)
	if err != nil {
		fail(c, err)
		return
	}
	t, err := s.Svc.Tools.Audit(c.Request.Context(), app.Actor(c), c.Param("id"), action)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Tool audited", t)
}

func (s *Srv) ForceOffline(c *gin.Context) {
	var in offlineReq
	// body 可选
	if c.Request.ContentLength > 0 && !bind(c, &in) {
		return
	}
	t, err := s.Svc.Tools.ForceOffline(c.Request.Context(), app.Actor(c), c.Param("id"), in.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Tool taken offline", t)
}

func (s *Srv) AuditLogs(c *gin.Context) {
	var q struct {
		Limit int `form:"limit,default=100"`
	}
	if !bindQuery(c, &q) {
		return
	}
	logs, err := s.Svc.Admin.AuditLogs(c.Request.Context(), q.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", logs)
}
