package app

import (
	"community_tool_share/db"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// TouchLastSeen 节流更新 last_seen_at：窗口内 SETNX 成功才写库
func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := UserID(c)
		if uid == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		if ok, err := rdb.SetNX(ctx, "ts:lastseen:"+uid, 1, throttle).Result(); err == nil && ok {
			if err := repo.TouchUserSeen(ctx, uid); err != nil {
				c.Error(err) // 不阻塞请求
			}
		}
		c.Next()
	}
}
