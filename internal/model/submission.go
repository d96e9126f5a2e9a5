package model

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission 一次提交尝试的完整记录。只追加：status/score/feedback
// 在创建时由评测结果一次性写入，之后不再变更。
type Submission struct {
	UUIDBase
	UserID       uint             `gorm:"index;not null" json:"userId"`
	TaskID       uint             `gorm:"index;not null" json:"taskId"`
	ProofContent string           `gorm:"type:text;not null" json:"proofContent"`
	Status       SubmissionStatus `gorm:"type:enum('pending','approved','rejected');default:'pending'" json:"status"`
	Score        int              `gorm:"default:0" json:"score"`
	Feedback     string           `gorm:"type:text" json:"feedback"`
	ModelVersion string           `gorm:"size:100" json:"modelVersion"`

	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}
