package database

import (
	"coding_arena_backend/internal/config"
	"coding_arena_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.Submission{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 空库时插入示例挑战任务
	var count int64
	db.Model(&model.Task{}).Count(&count)
	if count == 0 {
		seedTasks := []model.Task{
			{
				Title:         "Build a Scalable Image Classifier",
				Description:   "Train and deploy an image classification model with at least 90% validation accuracy. Document your data pipeline and expose the model behind an inference endpoint.",
				Category:      "AI-ML",
				Difficulty:    model.Medium,
				Points:        400,
				EstimatedTime: "8 hours",
				Tags:          []string{"machine-learning", "python", "deployment"},
				IsActive:      true,
			},
			{
				Title:         "Deploy a Containerized Microservice",
				Description:   "Package a REST microservice into a container image, wire health checks and graceful shutdown, and ship it with a reproducible deployment manifest.",
				Category:      "Cloud-DevOps",
				Difficulty:    model.Hard,
				Points:        600,
				EstimatedTime: "12 hours",
				Tags:          []string{"docker", "kubernetes", "ci-cd"},
				IsActive:      true,
			},
			{
				Title:         "Analyze a Sales Dataset",
				Description:   "Explore a quarterly sales dataset, surface three actionable insights, and back each one with a reproducible notebook and visualization.",
				Category:      "Data Science",
				Difficulty:    model.Easy,
				Points:        250,
				EstimatedTime: "4 hours",
				Tags:          []string{"pandas", "visualization", "sql"},
				IsActive:      true,
			},
		}
		for _, t := range seedTasks {
			db.Create(&t)
		}
		log.Println("Seeded sample tasks")
	}

	return db, nil
}
