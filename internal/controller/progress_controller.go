package controller

import (
	"coding_arena_backend/internal/service"
	"coding_arena_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// GetProgress godoc
// @Summary 获取当前用户进度
// @Description 当前积分、段位以及距下一段位的差距
// @Tags 进度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ProgressSummary} "成功"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.ProgressService.GetProgress(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// GetLeaderboard godoc
// @Summary 积分排行榜
// @Description 按积分排序的前十名用户，30 秒缓存
// @Tags 进度
// @Produce  json
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry} "成功"
// @Router /api/leaderboard [get]
func (c *ProgressController) GetLeaderboard(ctx *gin.Context) {
	entries, err := c.ProgressService.GetLeaderboard(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
