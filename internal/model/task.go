package model

type TaskDifficulty string

const (
	Easy   TaskDifficulty = "Easy"
	Medium TaskDifficulty = "Medium"
	Hard   TaskDifficulty = "Hard"
)

// Task 挑战任务，目录侧创建后对评分管线只读
type Task struct {
	BaseModel
	Title         string         `gorm:"size:255;not null" json:"title"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	Category      string         `gorm:"size:50;not null" json:"category"` // AI/ML, Cloud/DevOps, Data Science, Full-Stack
	Difficulty    TaskDifficulty `gorm:"type:enum('Easy','Medium','Hard');not null" json:"difficulty"`
	Points        int            `gorm:"not null" json:"points"`
	EstimatedTime string         `gorm:"size:50" json:"estimatedTime"`
	Tags          []string       `gorm:"serializer:json" json:"tags,omitempty"`
	IsActive      bool           `gorm:"default:true" json:"isActive"`
}

func (Task) TableName() string {
	return "tasks"
}
