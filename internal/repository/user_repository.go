package repository

import (
	"coding_arena_backend/internal/model"
	"coding_arena_backend/internal/progression"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) UpdateLastLogin(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login", time.Now()).
		Error
}

// ApplyPoints 在单个事务内对用户行加锁后累加积分并重算段位。
// 行锁把同一用户的并发进度更新串行化：两笔几乎同时通过的提交
// 各自的积分都会落账，不会出现读-改-写互相覆盖。
func (r *UserRepository) ApplyPoints(userID uint, earned int) (*model.User, error) {
	var user model.User
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}
		user.Points += earned
		user.Rank = string(progression.RankFor(user.Points))
		return tx.Model(&user).Updates(map[string]interface{}{
			"points": user.Points,
			"rank":   user.Rank,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindTopByPoints(limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("disabled = ?", false).Order("points DESC").Limit(limit).Find(&users).Error
	return users, err
}
