package controllers

import (
	"community_tool_share/app"
	"community_tool_share/db"
	"community_tool_share/services"
	"community_tool_share/session"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

// Srv 所有 handler 共享的依赖
type Srv struct {
	WA         *webauthn.WebAuthn
	Repo       *db.Repo
	Svc        *services.Services
	Ceremonies *session.CeremonyStore
	AppSess    *session.AppSessionStore
	Cfg        app.Config
	Log        *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		WA:         a.WA,
		Repo:       a.Repo,
		Svc:        a.Services,
		Ceremonies: a.Ceremonies,
		AppSess:    a.AppSessions,
		Cfg:        a.Config,
		Log:        a.Log,
	}
}

// 统一设置业务会话 Cookie；maxAge < 0 表示删除
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	age := int(maxAge / time.Second)
	if maxAge < 0 {
		age = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Cfg.SecureCookie(),
		MaxAge:   age,
	})
}

// 登录成功：记录登录快照 + 创建会话 + 写 Cookie，返回会话 id
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID, ip, ua string) (string, error) {
	if err := s.Svc.Users.RecordLogin(ctx, userID, ip, ua); err != nil {
		s.Log.Warn("record login failed", "user", userID, "err", err)
	}
	id, err := s.AppSess.Create(ctx, userID)
	if err != nil {
		return "", err
	}
	s.setAppCookie(w, id, s.AppSess.TTL())
	return id, nil
}
