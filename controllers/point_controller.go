package controllers

import (
	"community_tool_share/app"

	"github.com/gin-gonic/gin"
)

func (s *Srv) PointRanking(c *gin.Context) {
	list, err := s.Svc.Points.Ranking(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", list)
}

func (s *Srv) MyPoints(c *gin.Context) {
	recs, err := s.Svc.Points.History(c.Request.Context(), app.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", recs)
}

func (s *Srv) PointBalance(c *gin.Context) {
	n, err := s.Svc.Points.Balance(c.Request.Context(), app.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", n)
}
