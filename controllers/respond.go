package controllers

import (
	"community_tool_share/app"
	"community_tool_share/apperr"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func statusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindBusinessRule, apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func ok(c *gin.Context, msg string, data any) {
	body := app.H{"ok": true, "data": data}
	if msg != "" {
		body["message"] = msg
	}
	c.JSON(http.StatusOK, body)
}

// fail 意外错误只记日志（带栈），对外统一文案
func fail(c *gin.Context, err error) {
	k := apperr.KindOf(err)
	status := statusOf(k)
	msg := err.Error()
	if k == apperr.KindUnexpected {
		slog.Error("request failed", "path", c.Request.URL.Path, "err", err, "stack", apperr.Stack(err))
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, app.H{"ok": false, "error": msg})
}

// bind 绑定失败按校验错误返回
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return false
	}
	return true
}

// bindQuery 查询参数类型不对时按校验错误返回
func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return false
	}
	return true
}
