package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vnkhanh/devlearn-backend/models"
)

const msgTopicNotFound = "Topic not found"

// TopicInput dùng chung cho Create / Update.
// Khi update, chuỗi rỗng nghĩa là giữ nguyên; Theory khác nil sẽ thay toàn bộ phần lý thuyết.
type TopicInput struct {
	TopicID      string         `json:"topicId"`
	Title        string         `json:"title"`
	Icon         string         `json:"icon"`
	Category     string         `json:"category"`
	Section      string         `json:"section"`
	Subject      string         `json:"subject"`
	Description  string         `json:"description"`
	ComponentKey string         `json:"componentKey"`
	LiveCode     string         `json:"liveCode"`
	Theory       *models.Theory `json:"theory"`
}

// TopicFilter lọc danh sách topic, Subject rỗng nghĩa là không lọc
type TopicFilter struct {
	Subject string
}

type TopicStore struct {
	db *gorm.DB
}

func NewTopicStore(db *gorm.DB) *TopicStore {
	return &TopicStore{db: db}
}

// List trả về topic theo thứ tự tạo; subject so khớp với khóa đã chuẩn hóa
func (s *TopicStore) List(ctx context.Context, filter TopicFilter) ([]models.Topic, error) {
	topics := []models.Topic{}
	query := s.db.WithContext(ctx).Model(&models.Topic{})

	if subject := strings.TrimSpace(filter.Subject); subject != "" {
		query = query.Where("subject = ?", models.NormalizeSubjectKey(subject))
	}

	if err := query.Order("created_at asc").Find(&topics).Error; err != nil {
		return nil, storeError(err, msgTopicNotFound)
	}
	return topics, nil
}

// Get tìm theo id lưu trữ, không thấy thì thử theo topicId
func (s *TopicStore) Get(ctx context.Context, id string) (*models.Topic, error) {
	var topic models.Topic
	db := s.db.WithContext(ctx)

	if topicID, err := uuid.Parse(id); err == nil {
		err := db.First(&topic, "id = ?", topicID).Error
		if err == nil {
			return &topic, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeError(err, msgTopicNotFound)
		}
	}

	if err := db.First(&topic, "topic_id = ?", strings.TrimSpace(id)).Error; err != nil {
		return nil, storeError(err, msgTopicNotFound)
	}
	return &topic, nil
}

func (s *TopicStore) Create(ctx context.Context, input TopicInput) (*models.Topic, error) {
	topic := models.Topic{
		TopicID:      strings.TrimSpace(input.TopicID),
		Title:        strings.TrimSpace(input.Title),
		Icon:         strings.TrimSpace(input.Icon),
		Category:     strings.TrimSpace(input.Category),
		Section:      strings.TrimSpace(input.Section),
		Subject:      input.Subject,
		Description:  input.Description,
		ComponentKey: strings.TrimSpace(input.ComponentKey),
		LiveCode:     input.LiveCode,
	}
	if input.Theory != nil {
		topic.Theory = datatypes.NewJSONType(*input.Theory)
	}
	topic.ApplyDefaults()

	if err := validationError(topic.Validate()); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, topic); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&topic).Error; err != nil {
		return nil, storeError(err, msgTopicNotFound)
	}
	return &topic, nil
}

func (s *TopicStore) Update(ctx context.Context, id string, input TopicInput) (*models.Topic, error) {
	topic, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyString(&topic.TopicID, strings.TrimSpace(input.TopicID))
	applyString(&topic.Title, strings.TrimSpace(input.Title))
	applyString(&topic.Icon, strings.TrimSpace(input.Icon))
	applyString(&topic.Category, strings.TrimSpace(input.Category))
	applyString(&topic.Section, strings.TrimSpace(input.Section))
	applyString(&topic.Subject, strings.TrimSpace(input.Subject))
	applyString(&topic.Description, input.Description)
	applyString(&topic.ComponentKey, strings.TrimSpace(input.ComponentKey))
	applyString(&topic.LiveCode, input.LiveCode)
	if input.Theory != nil {
		topic.Theory = datatypes.NewJSONType(*input.Theory)
	}
	topic.ApplyDefaults()

	if err := validationError(topic.Validate()); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, *topic); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(topic).Error; err != nil {
		return nil, storeError(err, msgTopicNotFound)
	}
	return topic, nil
}

func (s *TopicStore) Delete(ctx context.Context, id string) error {
	topic, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Delete(&models.Topic{}, "id = ?", topic.ID)
	if res.Error != nil {
		return storeError(res.Error, msgTopicNotFound)
	}
	if res.RowsAffected == 0 {
		return NewNotFoundError(msgTopicNotFound)
	}
	return nil
}

func (s *TopicStore) checkUnique(ctx context.Context, topic models.Topic) error {
	var count int64
	query := s.db.WithContext(ctx).Model(&models.Topic{}).Where("topic_id = ?", topic.TopicID)
	if topic.ID != uuid.Nil {
		query = query.Where("id <> ?", topic.ID)
	}
	if err := query.Count(&count).Error; err != nil {
		return storeError(err, msgTopicNotFound)
	}
	if count > 0 {
		return NewValidationError("topicId already exists", nil)
	}
	return nil
}

// applyString chỉ ghi đè khi giá trị mới khác rỗng
func applyString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
