package controllers

import (
	"community_tool_share/app"

	"github.com/gin-gonic/gin"
)

type reviewReq struct {
	BorrowRecordID string `json:"borrowRecordId" binding:"required"`
	Rating         int    `json:"rating" binding:"required,min=1,max=5"`
	Content        string `json:"content" binding:"max=2000"`
}

func (s *Srv) CreateReview(c *gin.Context) {
	var in reviewReq
	if !bind(c, &in) {
		return
	}
	rv, err := s.Svc.Reviews.Create(c.Request.Context(), app.UserID(c), in.BorrowRecordID, in.Rating, in.Content)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Review submitted", rv)
}

func (s *Srv) ToolReviews(c *gin.Context) {
	list, err := s.Svc.Reviews.ListForTool(c.Request.Context(), c.Param("toolId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", list)
}

func (s *Srv) MyReviews(c *gin.Context) {
	list, err := s.Svc.Reviews.ListMine(c.Request.Context(), app.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", list)
}
