package api

import (
	"strings"
	"sync"

	"squashclub/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type passwordRequest struct {
	Password string `json:"password" binding:"required,min=4"`
}

type studentLoginRequest struct {
	Class  string `json:"class" binding:"required"`
	Number string `json:"number" binding:"required"`
}

type badgeRequest struct {
	Name  string `json:"name" binding:"required"`
	Grade string `json:"grade"`
	Class string `json:"class"`
	Badge string `json:"badge" binding:"required,badge"`
}

type adjustRequest struct {
	Name  string `json:"name" binding:"required"`
	Grade string `json:"grade"`
	Delta *int64 `json:"delta" binding:"required"`
}

type attendanceRequest struct {
	Class   string   `json:"class" binding:"required"`
	Date    string   `json:"date" binding:"required"`
	Present []string `json:"present"`
}

type awardRequest struct {
	StudentName string `json:"student_name" binding:"required"`
	Tournament  string `json:"tournament" binding:"required"`
	Prize       string `json:"prize" binding:"required"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Note        string `json:"note"`
}

type announcementRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

type tournamentRequest struct {
	Name     string `json:"name" binding:"required"`
	Date     string `json:"date" binding:"required,datetime=2006-01-02"`
	Deadline string `json:"deadline" binding:"omitempty,datetime=2006-01-02"`
	Link     string `json:"link" binding:"omitempty,url"`
	Note     string `json:"note"`
}

type attendanceQuery struct {
	Class string `form:"class" binding:"required"`
	Date  string `form:"date"`
}

type indexURI struct {
	Index int `uri:"index" binding:"gte=0"`
}

var registerOnce sync.Once

// registerValidators 注册自定义校验规则（gin 默认使用 validator/v10）
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("badge", func(fl validator.FieldLevel) bool {
			b, ok := model.Badges[strings.TrimSpace(fl.Field().String())]
			return ok && b.Name != model.BadgeNone
		})
	})
}
