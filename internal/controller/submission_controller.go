package controller

import (
	"coding_arena_backend/internal/evaluation"
	"coding_arena_backend/internal/service"
	"coding_arena_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
}

func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{SubmissionService: submissionService}
}

// SubmitRequest 提交挑战成果
// swagger:model SubmitRequest
type SubmitRequest struct {
	TaskID       uint   `json:"taskId" binding:"required"`
	ProofContent string `json:"proofContent" binding:"required"`
}

// Submit godoc
// @Summary 提交挑战成果并评分
// @Description AI 评分后写入提交记录；通过则累计积分并结算段位
// @Tags 提交
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SubmitRequest true "提交内容"
// @Success 200 {object} util.Response{data=service.SubmissionOutcome} "评分完成"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "任务不存在"
// @Failure 503 {object} util.Response "评分服务暂不可用"
// @Router /api/submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	outcome, err := c.SubmissionService.Submit(ctx.Request.Context(), claims.UserID, req.TaskID, req.ProofContent)
	if err != nil {
		var unavailable *evaluation.EvaluationUnavailableError
		switch {
		case errors.Is(err, util.ErrTaskNotFound):
			util.NotFound(ctx, "任务不存在")
		case errors.As(err, &unavailable):
			// 评分不可用时不给出任何分数，引导用户稍后重试
			util.ServiceUnavailable(ctx, "评分服务暂时不可用，请稍后重试")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, outcome)
}

// ListMySubmissions godoc
// @Summary 我的提交历史
// @Tags 提交
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Submission} "成功"
// @Router /api/submissions [get]
func (c *SubmissionController) ListMySubmissions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	submissions, err := c.SubmissionService.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, submissions)
}
