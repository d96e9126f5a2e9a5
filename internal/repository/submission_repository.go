package repository

import (
	"coding_arena_backend/internal/model"

	"gorm.io/gorm"
)

// SubmissionRepository 提交记录只追加：只有 Create 与查询，没有更新路径
type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(submission *model.Submission) error {
	return r.DB.Create(submission).Error
}

func (r *SubmissionRepository) FindByID(id string) (*model.Submission, error) {
	var submission model.Submission
	err := r.DB.Preload("Task").Where("id = ?", id).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) FindByUser(userID uint) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.DB.Preload("Task").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *SubmissionRepository) CountByUserAndTask(userID, taskID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Count(&count).Error
	return count, err
}
