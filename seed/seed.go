// Package seed nạp dữ liệu mẫu: tài khoản admin, subject và topic từ file YAML.
// Chạy nhiều lần không tạo bản ghi trùng.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/vnkhanh/devlearn-backend/models"
	"github.com/vnkhanh/devlearn-backend/services"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type SubjectSeed struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	Path  string `yaml:"path"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"`
	Order int    `yaml:"order"`
}

type TopicSeed struct {
	TopicID      string         `yaml:"topicId"`
	Title        string         `yaml:"title"`
	Icon         string         `yaml:"icon"`
	Category     string         `yaml:"category"`
	Section      string         `yaml:"section"`
	Subject      string         `yaml:"subject"`
	Description  string         `yaml:"description"`
	ComponentKey string         `yaml:"componentKey"`
	LiveCode     string         `yaml:"liveCode"`
	Theory       *models.Theory `yaml:"theory"`
}

type Catalog struct {
	Subjects []SubjectSeed `yaml:"subjects"`
	Topics   []TopicSeed   `yaml:"topics"`
}

type Admin struct {
	Email    string
	Password string
}

type Report struct {
	AdminCreated    bool
	SubjectsCreated int
	SubjectsSkipped int
	TopicsCreated   int
	TopicsSkipped   int
}

// DefaultCatalog trả về catalog nhúng sẵn trong binary
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("đọc file seed: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	return catalog, nil
}

// Run tạo admin (nếu có mật khẩu), subject (khớp theo path) và topic (khớp theo topicId) còn thiếu
func Run(ctx context.Context, db *gorm.DB, catalog Catalog, admin Admin) (Report, error) {
	var report Report
	log := zap.L()

	if admin.Email != "" && admin.Password != "" {
		user, created, err := services.NewUserStore(db).EnsureAdmin(ctx, admin.Email, admin.Password)
		if err != nil {
			return report, fmt.Errorf("seed admin: %w", err)
		}
		report.AdminCreated = created
		if created {
			log.Info("Admin user created successfully", zap.String("email", user.Email))
		}
	}

	subjects := services.NewSubjectStore(db)
	for _, s := range catalog.Subjects {
		if _, err := subjects.FindByKey(ctx, s.Path); err == nil {
			report.SubjectsSkipped++
			continue
		} else if !services.IsKind(err, services.KindNotFound) {
			return report, err
		}

		order := s.Order
		if _, err := subjects.Create(ctx, services.SubjectInput{
			Name:  s.Name,
			Title: s.Title,
			Path:  s.Path,
			Icon:  s.Icon,
			Color: s.Color,
			Order: &order,
		}); err != nil {
			return report, fmt.Errorf("seed subject %q: %w", s.Name, err)
		}
		report.SubjectsCreated++
		log.Info("Subject created", zap.String("name", s.Name))
	}

	topics := services.NewTopicStore(db)
	for _, t := range catalog.Topics {
		topicID := strings.TrimSpace(t.TopicID)
		if topicID == "" {
			topicID = slug.Make(t.Title)
		}

		if _, err := topics.Get(ctx, topicID); err == nil {
			report.TopicsSkipped++
			continue
		} else if !services.IsKind(err, services.KindNotFound) {
			return report, err
		}

		if _, err := topics.Create(ctx, services.TopicInput{
			TopicID:      topicID,
			Title:        t.Title,
			Icon:         t.Icon,
			Category:     t.Category,
			Section:      t.Section,
			Subject:      t.Subject,
			Description:  t.Description,
			ComponentKey: t.ComponentKey,
			LiveCode:     t.LiveCode,
			Theory:       t.Theory,
		}); err != nil {
			return report, fmt.Errorf("seed topic %q: %w", topicID, err)
		}
		report.TopicsCreated++
		log.Info("Topic created", zap.String("topicId", topicID))
	}

	return report, nil
}
