package controllers

import (
	"community_tool_share/app"
	"community_tool_share/apperr"
	"community_tool_share/services"
	"strings"

	"github.com/gin-gonic/gin"
)

type registerReq struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Nickname string `json:"nickname" binding:"max=50"`
	Phone    string `json:"phone" binding:"max=20"`
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profileReq struct {
	Nickname *string `json:"nickname"`
	Avatar   *string `json:"avatar"`
	Phone    *string `json:"phone"`
}

func (s *Srv) Register(c *gin.Context) {
	var in registerReq
	if !bind(c, &in) {
		return
	}
	ctx := c.Request.Context()
	u, err := s.Svc.Users.Register(ctx, services.RegisterInput{
		Username:    in.Username,
		Password:    in.Password,
		DisplayName: in.Nickname,
		Phone:       in.Phone,
	})
	if err != nil {
		fail(c, err)
		return
	}
	// 配置里的管理员晚于启动注册时，在这里补提升
	for _, name := range s.Cfg.AdminUsernames {
		if strings.EqualFold(name, u.Username) {
			if _, err := s.Svc.Users.BootstrapAdmins(ctx, []string{u.Username}); err != nil {
				fail(c, err)
				return
			}
			if u, err = s.Svc.Users.Profile(ctx, u.ID); err != nil {
				fail(c, err)
				return
			}
			break
		}
	}
	ok(c, "Registration successful", u)
}

// Login 返回会话 id，同时写 Cookie；前端也可以用 Bearer 头
func (s *Srv) Login(c *gin.Context) {
	var in loginReq
	if !bind(c, &in) {
		return
	}
	ip, ua := c.ClientIP(), c.Request.UserAgent()
	u, err := s.Svc.Users.Login(c.Request.Context(), in.Username, in.Password, ip, ua)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := s.AppSess.Create(c.Request.Context(), u.ID)
	if err != nil {
		fail(c, apperr.Wrap(err, "create app session"))
		return
	}
	s.setAppCookie(c.Writer, id, s.AppSess.TTL())
	ok(c, "Login successful", id)
}

func (s *Srv) Logout(c *gin.Context) {
	if sid := app.SessionID(c); sid != "" {
		if err := s.AppSess.Delete(c.Request.Context(), sid); err != nil {
			s.Log.Warn("delete session failed", "err", err)
		}
	}
	s.setAppCookie(c.Writer, "", -1)
	ok(c, "Logged out", nil)
}

func (s *Srv) WhoAmI(c *gin.Context) {
	uid := app.UserID(c)
	n, err := s.Repo.CountCredentials(c.Request.Context(), uid)
	if err != nil {
		fail(c, apperr.Wrap(err, "count credentials"))
		return
	}
	ok(c, "", app.H{
		"userId":   uid,
		"username": app.Username(c),
		"isAdmin":  app.IsAdmin(c),
		"passkeys": n,
	})
}

func (s *Srv) Profile(c *gin.Context) {
	u, err := s.Svc.Users.Profile(c.Request.Context(), app.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", u)
}

func (s *Srv) UpdateProfile(c *gin.Context) {
	var in profileReq
	if !bind(c, &in) {
		return
	}
	u, err := s.Svc.Users.UpdateProfile(c.Request.Context(), app.UserID(c), services.ProfilePatch{
		DisplayName: in.Nickname,
		Avatar:      in.Avatar,
		Phone:       in.Phone,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Profile updated successfully", u)
}
