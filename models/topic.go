package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultTopicIcon    = "Box"
	DefaultTopicSection = "hooks"
	DefaultTopicSubject = "react"
)

// Theory là phần lý thuyết của một topic, các danh sách luôn khác nil
type Theory struct {
	Overview         string   `json:"overview,omitempty" yaml:"overview"`
	Definition       string   `json:"definition,omitempty" yaml:"definition"`
	Syntax           string   `json:"syntax,omitempty" yaml:"syntax"`
	RealLifeScenario string   `json:"realLifeScenario,omitempty" yaml:"realLifeScenario"`
	DeepDive         string   `json:"deepDive,omitempty" yaml:"deepDive"`
	Pros             []string `json:"pros" yaml:"pros"`
	Cons             []string `json:"cons" yaml:"cons"`
	WhenToUse        []string `json:"whenToUse" yaml:"whenToUse"`
	Tips             []string `json:"tips" yaml:"tips"`
	CommonPitfalls   []string `json:"commonPitfalls" yaml:"commonPitfalls"`
}

func (t Theory) Normalized() Theory {
	t.Pros = nonNil(t.Pros)
	t.Cons = nonNil(t.Cons)
	t.WhenToUse = nonNil(t.WhenToUse)
	t.Tips = nonNil(t.Tips)
	t.CommonPitfalls = nonNil(t.CommonPitfalls)
	return t
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

type Topic struct {
	ID           uuid.UUID                  `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID      string                     `gorm:"column:topic_id;size:150;not null;uniqueIndex" json:"topicId"`
	Title        string                     `gorm:"size:255;not null" json:"title"`
	Icon         string                     `gorm:"size:100;default:'Box'" json:"icon"`
	Category     string                     `gorm:"size:100;not null" json:"category"`
	Section      string                     `gorm:"size:100;not null;default:'hooks'" json:"section"`
	Subject      string                     `gorm:"size:100;not null;default:'react';index" json:"subject"` // khóa subject đã chuẩn hóa, không ràng buộc FK
	Description  string                     `gorm:"type:text" json:"description,omitempty"`
	ComponentKey string                     `gorm:"size:100" json:"componentKey,omitempty"`
	LiveCode     string                     `gorm:"type:text" json:"liveCode,omitempty"`
	Theory       datatypes.JSONType[Theory] `json:"theory"`
	CreatedAt    time.Time                  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time                  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// NormalizeSubjectKey chuẩn hóa giá trị subject của topic để so khớp không phân biệt hoa thường
func NormalizeSubjectKey(subject string) string {
	key := strings.ToLower(strings.TrimSpace(subject))
	if key == "" {
		return DefaultTopicSubject
	}
	return key
}

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Topic) BeforeSave(tx *gorm.DB) error {
	t.ApplyDefaults()
	return nil
}

func (t *Topic) AfterFind(tx *gorm.DB) error {
	t.Theory = datatypes.NewJSONType(t.Theory.Data().Normalized())
	return nil
}

// ApplyDefaults điền giá trị mặc định và chuẩn hóa subject, theory
func (t *Topic) ApplyDefaults() {
	if strings.TrimSpace(t.Icon) == "" {
		t.Icon = DefaultTopicIcon
	}
	if strings.TrimSpace(t.Section) == "" {
		t.Section = DefaultTopicSection
	}
	t.Subject = NormalizeSubjectKey(t.Subject)
	t.Theory = datatypes.NewJSONType(t.Theory.Data().Normalized())
}

func (t Topic) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.TopicID, validation.Required, validation.Length(1, 150),
			validation.By(func(value interface{}) error {
				if id, _ := value.(string); id != "" && !slug.IsSlug(id) {
					return validation.NewError("validation_is_slug", "must be a lowercase slug")
				}
				return nil
			})),
		validation.Field(&t.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&t.Category, validation.Required, validation.Length(1, 100)),
		validation.Field(&t.Section, validation.Length(0, 100)),
		validation.Field(&t.Subject, validation.Length(0, 100)),
	)
}
