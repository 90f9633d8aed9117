package model

import (
	"slices"
	"strings"
	"time"
)

// Genre 内容类型
type Genre string

const (
	GenreVlog          Genre = "Vlog"
	GenreGaming        Genre = "Gaming"
	GenreReview        Genre = "Review"
	GenreEducation     Genre = "Education"
	GenreEntertainment Genre = "Entertainment"
)

// AllGenres 全部内容类型
var AllGenres = []Genre{GenreVlog, GenreGaming, GenreReview, GenreEducation, GenreEntertainment}

// ParseGenre 解析内容类型，大小写不敏感
func ParseGenre(s string) (Genre, bool) {
	for _, g := range AllGenres {
		if strings.EqualFold(string(g), s) {
			return g, true
		}
	}
	return "", false
}

// ContentStatus 制作状态
type ContentStatus string

const (
	ContentProducing ContentStatus = "Producing"
	ContentCompleted ContentStatus = "Completed"
	ContentUploaded  ContentStatus = "Uploaded"
)

// MaxContentCharacters 单个内容最多参与角色数
const MaxContentCharacters = 4

// ContentJob 内容制作任务，对应 content_jobs 表
// 每个玩家同一时刻至多一个 Producing 任务
type ContentJob struct {
	ID                string        `json:"contentId"`
	PlayerID          string        `json:"-"`
	Title             string        `json:"title"`
	Genre             Genre         `json:"genre"`
	CharacterIDs      []string      `json:"characterInstanceIds"`
	Scores            Stats         `json:"scores"`
	TotalQuality      int64         `json:"totalQuality"`
	ProductionSeconds int64         `json:"productionSeconds"`
	Status            ContentStatus `json:"status"`
	StartedAt         time.Time     `json:"startedAt"`
	CompletedAt       *time.Time    `json:"completedAt,omitempty"`
	UploadedAt        *time.Time    `json:"uploadedAt,omitempty"`
	Views             int64         `json:"views"`
	Likes             int64         `json:"likes"`
	Revenue           int64         `json:"revenue"`
	NewSubscribers    int64         `json:"newSubscribers"`
}

// Clone 深拷贝
func (j *ContentJob) Clone() *ContentJob {
	n := *j
	n.CharacterIDs = slices.Clone(j.CharacterIDs)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		n.CompletedAt = &t
	}
	if j.UploadedAt != nil {
		t := *j.UploadedAt
		n.UploadedAt = &t
	}
	return &n
}

// ContentPage 上传历史分页
type ContentPage struct {
	Items    []*ContentJob `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}
