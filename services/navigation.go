package services

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/vnkhanh/devlearn-backend/models"
)

// Navigation là cây điều hướng của một subject.
// Subject = nil khi khóa không khớp subject nào (topic "mồ côi").
type Navigation struct {
	Key      string          `json:"key"`
	Subject  *models.Subject `json:"subject"`
	Sections []SectionNode   `json:"sections"`
}

type NavigationService struct {
	subjects *SubjectStore
	topics   *TopicStore
}

func NewNavigationService(db *gorm.DB) *NavigationService {
	return &NavigationService{
		subjects: NewSubjectStore(db),
		topics:   NewTopicStore(db),
	}
}

// Build nạp subject và toàn bộ topic song song rồi gom nhóm theo khóa của subject
func (n *NavigationService) Build(ctx context.Context, key string) (*Navigation, error) {
	var (
		subject *models.Subject
		topics  []models.Topic
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := n.subjects.FindByKey(gctx, key)
		if err != nil {
			if IsKind(err, KindNotFound) {
				return nil
			}
			return err
		}
		subject = s
		return nil
	})
	g.Go(func() error {
		list, err := n.topics.List(gctx, TopicFilter{})
		if err != nil {
			return err
		}
		topics = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	groupKey := strings.ToLower(strings.Trim(strings.TrimSpace(key), "/"))
	if subject != nil {
		groupKey = subject.Key()
	}

	sections := GroupTopicsBySubject(topics, groupKey)
	if subject == nil && len(sections) == 0 {
		return nil, NewNotFoundError(msgSubjectNotFound)
	}

	return &Navigation{
		Key:      groupKey,
		Subject:  subject,
		Sections: sections,
	}, nil
}
