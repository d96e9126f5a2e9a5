package service

import (
	"coding_arena_backend/internal/model"
	"coding_arena_backend/internal/repository"
	"coding_arena_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type TaskService struct {
	TaskRepo *repository.TaskRepository
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{TaskRepo: taskRepo}
}

type CreateTaskRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Category      string   `json:"category" binding:"required"`
	Difficulty    string   `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	Points        int      `json:"points" binding:"required,gt=0"`
	EstimatedTime string   `json:"estimatedTime"`
	Tags          []string `json:"tags"`
}

func (s *TaskService) GetTasks() ([]model.Task, error) {
	return s.TaskRepo.FindAll()
}

func (s *TaskService) GetTask(id uint) (*model.Task, error) {
	task, err := s.TaskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) CreateTask(req CreateTaskRequest) (*model.Task, error) {
	task := &model.Task{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Difficulty:    model.TaskDifficulty(req.Difficulty),
		Points:        req.Points,
		EstimatedTime: req.EstimatedTime,
		Tags:          req.Tags,
		IsActive:      true,
	}

	if err := s.TaskRepo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}
