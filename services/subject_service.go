package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/devlearn-backend/models"
)

const msgSubjectNotFound = "Subject not found"

// SubjectInput dùng chung cho Create / Update.
// Khi update, chuỗi rỗng nghĩa là giữ nguyên; Order chỉ cần khác nil là được ghi (kể cả 0).
type SubjectInput struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Order *int   `json:"order"`
}

type SubjectStore struct {
	db *gorm.DB
}

func NewSubjectStore(db *gorm.DB) *SubjectStore {
	return &SubjectStore{db: db}
}

// List trả về toàn bộ subject theo order tăng dần, cùng order thì theo thứ tự tạo
func (s *SubjectStore) List(ctx context.Context) ([]models.Subject, error) {
	subjects := []models.Subject{}
	err := s.db.WithContext(ctx).
		Order("sort_order asc").
		Order("created_at asc").
		Find(&subjects).Error
	if err != nil {
		return nil, storeError(err, msgSubjectNotFound)
	}
	return subjects, nil
}

func (s *SubjectStore) Get(ctx context.Context, id string) (*models.Subject, error) {
	subjectID, err := uuid.Parse(id)
	if err != nil {
		return nil, NewNotFoundError(msgSubjectNotFound)
	}

	var subject models.Subject
	if err := s.db.WithContext(ctx).First(&subject, "id = ?", subjectID).Error; err != nil {
		return nil, storeError(err, msgSubjectNotFound)
	}
	return &subject, nil
}

// FindByKey tìm subject theo id, path ("/react" hoặc "react") hoặc name, không phân biệt hoa thường
func (s *SubjectStore) FindByKey(ctx context.Context, key string) (*models.Subject, error) {
	if subject, err := s.Get(ctx, key); err == nil {
		return subject, nil
	} else if !IsKind(err, KindNotFound) {
		return nil, err
	}

	key = strings.ToLower(strings.Trim(strings.TrimSpace(key), "/"))
	if key == "" {
		return nil, NewNotFoundError(msgSubjectNotFound)
	}

	var subject models.Subject
	err := s.db.WithContext(ctx).
		Where("LOWER(path) = ? OR LOWER(path) = ? OR LOWER(name) = ?", "/"+key, key, key).
		Order("sort_order asc").
		First(&subject).Error
	if err != nil {
		return nil, storeError(err, msgSubjectNotFound)
	}
	return &subject, nil
}

func (s *SubjectStore) Create(ctx context.Context, input SubjectInput) (*models.Subject, error) {
	subject := models.Subject{
		Name:  strings.TrimSpace(input.Name),
		Title: strings.TrimSpace(input.Title),
		Path:  strings.TrimSpace(input.Path),
		Icon:  strings.TrimSpace(input.Icon),
		Color: strings.TrimSpace(input.Color),
	}
	if input.Order != nil {
		subject.Order = *input.Order
	}
	subject.ApplyDefaults()

	if err := validationError(subject.Validate()); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, subject); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&subject).Error; err != nil {
		return nil, storeError(err, msgSubjectNotFound)
	}
	return &subject, nil
}

func (s *SubjectStore) Update(ctx context.Context, id string, input SubjectInput) (*models.Subject, error) {
	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(input.Name); v != "" {
		subject.Name = v
	}
	if v := strings.TrimSpace(input.Title); v != "" {
		subject.Title = v
	}
	if v := strings.TrimSpace(input.Path); v != "" {
		subject.Path = v
	}
	if v := strings.TrimSpace(input.Icon); v != "" {
		subject.Icon = v
	}
	if v := strings.TrimSpace(input.Color); v != "" {
		subject.Color = v
	}
	if input.Order != nil {
		subject.Order = *input.Order
	}

	if err := validationError(subject.Validate()); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, *subject); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(subject).Error; err != nil {
		return nil, storeError(err, msgSubjectNotFound)
	}
	return subject, nil
}

func (s *SubjectStore) Delete(ctx context.Context, id string) error {
	subjectID, err := uuid.Parse(id)
	if err != nil {
		return NewNotFoundError(msgSubjectNotFound)
	}

	res := s.db.WithContext(ctx).Delete(&models.Subject{}, "id = ?", subjectID)
	if res.Error != nil {
		return storeError(res.Error, msgSubjectNotFound)
	}
	if res.RowsAffected == 0 {
		return NewNotFoundError(msgSubjectNotFound)
	}
	return nil
}

// checkUnique kiểm tra trùng name / path với các subject khác
func (s *SubjectStore) checkUnique(ctx context.Context, subject models.Subject) error {
	var count int64
	query := s.db.WithContext(ctx).Model(&models.Subject{}).
		Where("LOWER(name) = LOWER(?)", subject.Name)
	if subject.ID != uuid.Nil {
		query = query.Where("id <> ?", subject.ID)
	}
	if err := query.Count(&count).Error; err != nil {
		return storeError(err, msgSubjectNotFound)
	}
	if count > 0 {
		return NewValidationError("Subject name already exists", nil)
	}

	query = s.db.WithContext(ctx).Model(&models.Subject{}).
		Where("LOWER(path) = LOWER(?)", subject.Path)
	if subject.ID != uuid.Nil {
		query = query.Where("id <> ?", subject.ID)
	}
	if err := query.Count(&count).Error; err != nil {
		return storeError(err, msgSubjectNotFound)
	}
	if count > 0 {
		return NewValidationError("Subject path already exists", nil)
	}
	return nil
}
