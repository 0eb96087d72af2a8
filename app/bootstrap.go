package app

import (
	"community_tool_share/services"
	"context"
	"log/slog"
)

// BootstrapAdmins 启动时把 ADMIN_USERNAMES 里已注册的用户提升为管理员
func BootstrapAdmins(ctx context.Context, cfg Config, users *services.UserService) {
	if len(cfg.AdminUsernames) == 0 {
		slog.Info("no ADMIN_USERNAMES configured, skipping admin bootstrap")
		return
	}
	n, err := users.BootstrapAdmins(ctx, cfg.AdminUsernames)
	if err != nil {
		slog.Error("admin bootstrap failed", "err", err)
		return
	}
	slog.Info("admin bootstrap done", "configured", len(cfg.AdminUsernames), "promoted", n)
}
