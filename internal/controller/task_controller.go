package controller

import (
	"coding_arena_backend/internal/service"
	"coding_arena_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TaskController struct {
	TaskService *service.TaskService
}

func NewTaskController(taskService *service.TaskService) *TaskController {
	return &TaskController{TaskService: taskService}
}

// GetTasks godoc
// @Summary 获取任务列表
// @Description 返回所有上架中的挑战任务
// @Tags 任务
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Task} "成功"
// @Router /api/tasks [get]
func (c *TaskController) GetTasks(ctx *gin.Context) {
	tasks, err := c.TaskService.GetTasks()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, tasks)
}

// GetTask godoc
// @Summary 获取任务详情
// @Tags 任务
// @Produce  json
// @Param   id path int true "任务ID"
// @Success 200 {object} util.Response{data=model.Task} "成功"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/tasks/{id} [get]
func (c *TaskController) GetTask(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid task id")
		return
	}

	task, err := c.TaskService.GetTask(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrTaskNotFound) {
			util.NotFound(ctx, "任务不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, task)
}

// CreateTask godoc
// @Summary 创建任务
// @Description 管理员发布新的挑战任务
// @Tags 任务
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateTaskRequest true "任务信息"
// @Success 201 {object} util.Response{data=model.Task} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/tasks [post]
func (c *TaskController) CreateTask(ctx *gin.Context) {
	var req service.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	task, err := c.TaskService.CreateTask(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, task)
}
