package controllers

import (
	"community_tool_share/app"
	"community_tool_share/services"

	"github.com/gin-gonic/gin"
)

type toolReq struct {
	Name          string `json:"name" binding:"required,max=100"`
	Description   string `json:"description"`
	Category      string `json:"category" binding:"max=50"`
	Images        string `json:"images" binding:"max=1000"`
	ToolCondition string `json:"toolCondition" binding:"max=50"`
	Location      string `json:"location" binding:"max=200"`
}

type toolPatchReq struct {
	Name          *string `json:"name" binding:"omitempty,max=100"`
	Description   *string `json:"description"`
	Category      *string `json:"category" binding:"omitempty,max=50"`
	Images        *string `json:"images" binding:"omitempty,max=1000"`
	ToolCondition *string `json:"toolCondition" binding:"omitempty,max=50"`
	Location      *string `json:"location" binding:"omitempty,max=200"`
}

// ListTools GET /api/tools?keyword=&category=
func (s *Srv) ListTools(c *gin.Context) {
	tools, err := s.Svc.Tools.ListAvailable(c.Request.Context(), c.Query("keyword"), c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", tools)
}

func (s *Srv) MyTools(c *gin.Context) {
	tools, err := s.Svc.Tools.ListMine(c.Request.Context(), app.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", tools)
}

func (s *Srv) GetTool(c *gin.Context) {
	t, err := s.Svc.Tools.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", t)
}

func (s *Srv) PublishTool(c *gin.Context) {
	var in toolReq
	if !bind(c, &in) {
		return
	}
	t, err := s.Svc.Tools.Publish(c.Request.Context(), app.UserID(c), services.ToolInput{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Images:      in.Images,
		Condition:   in.ToolCondition,
		Location:    in.Location,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Tool published, waiting for review", t)
}

func (s *Srv) UpdateTool(c *gin.Context) {
	var in toolPatchReq
	if !bind(c, &in) {
		return
	}
	t, err := s.Svc.Tools.Update(c.Request.Context(), app.UserID(c), c.Param("id"), services.ToolPatch{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Images:      in.Images,
		Condition:   in.ToolCondition,
		Location:    in.Location,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Tool updated", t)
}

func (s *Srv) DeleteTool(c *gin.Context) {
	if err := s.Svc.Tools.Delete(c.Request.Context(), app.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Tool deleted", nil)
}
