package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultSubjectIcon  = "BookOpen"
	DefaultSubjectColor = "text-gray-500"
)

type Subject struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Path      string    `gorm:"size:255;not null;uniqueIndex" json:"path"`
	Icon      string    `gorm:"size:100;not null;default:'BookOpen'" json:"icon"`
	Color     string    `gorm:"size:100;default:'text-gray-500'" json:"color"`
	Order     int       `gorm:"column:sort_order;not null;default:0;index" json:"order"` // thứ tự hiển thị
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (s *Subject) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.ApplyDefaults()
	return nil
}

// ApplyDefaults điền giá trị mặc định cho các trường bỏ trống
func (s *Subject) ApplyDefaults() {
	if strings.TrimSpace(s.Icon) == "" {
		s.Icon = DefaultSubjectIcon
	}
	if strings.TrimSpace(s.Color) == "" {
		s.Color = DefaultSubjectColor
	}
}

// Key trả về khóa chuẩn hóa mà Topic.Subject tham chiếu tới:
// path bỏ dấu "/" đầu, chữ thường; nếu rỗng thì dùng name.
func (s Subject) Key() string {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s.Path), "/"))
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(s.Name))
	}
	return key
}

func (s Subject) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&s.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&s.Path, validation.Required, validation.Length(1, 255)),
		validation.Field(&s.Icon, validation.Length(0, 100)),
		validation.Field(&s.Color, validation.Length(0, 100)),
	)
}
