package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"unicode/utf8"

	"squashclub/internal/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminSettingsDoc = "config"
	passwordField    = "password"
	// AdminUserID 管理员登录后的用户 ID
	AdminUserID = "ADMIN"
)

// AuthService 管理员密码校验与学生登录 ID
type AuthService struct {
	tables          *TableStore
	defaultPassword string
	logger          *logrus.Logger
}

func NewAuthService(tables *TableStore, defaultPassword string, logger *logrus.Logger) *AuthService {
	if defaultPassword == "" {
		defaultPassword = "8888"
	}
	return &AuthService{tables: tables, defaultPassword: defaultPassword, logger: logger}
}

// adminPassword 每次登录都重新读取 admin_settings/config；读取失败或不存在时使用默认密码
func (s *AuthService) adminPassword(ctx context.Context) string {
	doc, ok, err := s.tables.GetDocument(ctx, model.CollectionAdminSettings, adminSettingsDoc)
	if err != nil {
		if s.tables.Connected() {
			s.logger.WithError(err).Warn("读取管理员密码失败，使用默认密码")
		}
		return s.defaultPassword
	}
	if !ok {
		return s.defaultPassword
	}
	v, exists := doc.Fields[passwordField]
	if !exists || v == nil {
		return s.defaultPassword
	}
	return model.ToString(v)
}

// LoginAdmin 校验管理员密码。存储值以 $2 开头时按 bcrypt 哈希比较
func (s *AuthService) LoginAdmin(ctx context.Context, password string) error {
	stored := s.adminPassword(ctx)
	if strings.HasPrefix(stored, "$2") {
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
			return model.ErrInvalidCredentials
		}
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return model.ErrInvalidCredentials
	}
	return nil
}

// SetAdminPassword 以 bcrypt 哈希写入 admin_settings/config
func (s *AuthService) SetAdminPassword(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: 密碼不能為空", model.ErrInvalidCredentials)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("生成密码哈希失败: %w", err)
	}
	doc := model.Document{Key: adminSettingsDoc, Fields: map[string]any{passwordField: string(hash)}}
	if err := s.tables.PutDocument(ctx, model.CollectionAdminSettings, doc); err != nil {
		return fmt.Errorf("写入管理员密码失败: %w", err)
	}
	s.logger.Info("管理员密码已更新")
	return nil
}

// StudentID 学生登录 ID：班别大写 + 学号补零到两位，如 1A + 1 -> 1A01
func StudentID(class, number string) (string, error) {
	class, number = strings.TrimSpace(class), strings.TrimSpace(number)
	if class == "" || number == "" {
		return "", fmt.Errorf("%w: 請填寫完整資訊", model.ErrInvalidCredentials)
	}
	return strings.ToUpper(class) + ZeroPad(number, 2), nil
}

// ZeroPad 左侧补零到 width 个字符，带正负号时补在符号之后
func ZeroPad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	pad := strings.Repeat("0", width-n)
	if s != "" && (s[0] == '-' || s[0] == '+') {
		return s[:1] + pad + s[1:]
	}
	return pad + s
}
