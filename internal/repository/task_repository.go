package repository

import (
	"coding_arena_backend/internal/model"

	"gorm.io/gorm"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) Create(task *model.Task) error {
	return r.DB.Create(task).Error
}

func (r *TaskRepository) FindByID(id uint) (*model.Task, error) {
	var task model.Task
	err := r.DB.First(&task, id).Error
	return &task, err
}

func (r *TaskRepository) FindAll() ([]model.Task, error) {
	var tasks []model.Task
	err := r.DB.Where("is_active = ?", true).Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Task{}).Count(&count).Error
	return count, err
}
