package app

import (
	"community_tool_share/apperr"
	"community_tool_share/services"
	"community_tool_share/session"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

const (
	ctxUserID    = "userID"
	ctxUsername  = "username"
	ctxIsAdmin   = "isAdmin"
	ctxSessionID = "sessionID"
)

// SessionToken 优先读 Cookie，其次 Authorization: Bearer
func SessionToken(c *gin.Context) string {
	if ck, err := c.Request.Cookie(AppSessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if h := c.GetHeader("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, H{"ok": false, "error": msg})
}

// AuthRequired 解析会话并确认用户仍存在且未被禁用，只查一次库
func AuthRequired(appSess *session.AppSessionStore, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := SessionToken(c)
		if sid == "" {
			abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := c.Request.Context()
		as, err := appSess.Get(ctx, sid)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				c.Error(err)
			}
			abort(c, http.StatusUnauthorized, "invalid session")
			return
		}

		u, err := users.ActiveUser(ctx, as.UserID)
		if err != nil {
			switch apperr.KindOf(err) {
			case apperr.KindForbidden:
				_ = appSess.Delete(ctx, sid)
				abort(c, http.StatusForbidden, err.Error())
			case apperr.KindUnauthorized:
				_ = appSess.Delete(ctx, sid)
				abort(c, http.StatusUnauthorized, "unauthorized")
			default:
				c.Error(err)
				abort(c, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		c.Set(ctxUserID, u.ID)
		c.Set(ctxUsername, u.Username)
		c.Set(ctxIsAdmin, u.IsAdmin())
		c.Set(ctxSessionID, sid)
		c.Next()
	}
}

// AdminOnly 必须挂在 AuthRequired 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxUserID) == "" {
			abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !c.GetBool(ctxIsAdmin) {
			abort(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string    { return c.GetString(ctxUserID) }
func Username(c *gin.Context) string  { return c.GetString(ctxUsername) }
func SessionID(c *gin.Context) string { return c.GetString(ctxSessionID) }
func IsAdmin(c *gin.Context) bool     { return c.GetBool(ctxIsAdmin) }

// Actor 管理员操作写审计日志用
func Actor(c *gin.Context) services.Actor {
	return services.Actor{ID: c.GetString(ctxUserID), Username: c.GetString(ctxUsername)}
}
