package models

import (
	"time"
)

// Recommendation 一条观影推荐，对应远端 recommendations 表的一行
// 计数列沿用 votesLove 等驼峰列名，gorm 与 PostgREST 两种后端共用同一张表
type Recommendation struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:250;not null" json:"text"`
	Source    string    `gorm:"not null" json:"source"` // IMDb link
	Category  string    `gorm:"size:50;not null;index" json:"category"`
	VotesLove int       `gorm:"column:votesLove;not null;default:0;index" json:"votesLove"`
	VotesUp   int       `gorm:"column:votesUp;not null;default:0" json:"votesUp"`
	VotesDown int       `gorm:"column:votesDown;not null;default:0" json:"votesDown"`
	CreatedAt time.Time `json:"created_at"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}

// IsDownvoted reports whether down votes outweigh love and up votes together.
func (r Recommendation) IsDownvoted() bool {
	return r.VotesLove+r.VotesUp < r.VotesDown
}
