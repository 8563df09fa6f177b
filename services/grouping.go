package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vnkhanh/devlearn-backend/models"
)

// DefaultSectionBucket là nhóm dành cho topic không có section
const DefaultSectionBucket = "General"

// SectionNode là một mục trong sidebar của một subject
type SectionNode struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Icon   Icon           `json:"icon"`
	Topics []models.Topic `json:"topics"`
}

// GroupTopicsBySubject lọc topic theo subjectKey (không phân biệt hoa thường)
// rồi gom theo section, giữ thứ tự section xuất hiện lần đầu.
func GroupTopicsBySubject(topics []models.Topic, subjectKey string) []SectionNode {
	key := strings.ToLower(strings.TrimSpace(subjectKey))
	nodes := []SectionNode{}
	index := map[string]int{}

	for _, t := range topics {
		if models.NormalizeSubjectKey(t.Subject) != key {
			continue
		}

		section := t.Section
		if strings.TrimSpace(section) == "" {
			section = DefaultSectionBucket
		}

		i, ok := index[section]
		if !ok {
			i = len(nodes)
			index[section] = i
			nodes = append(nodes, SectionNode{
				ID:     section,
				Title:  capitalize(section),
				Icon:   ResolveIcon(SectionIconKey),
				Topics: []models.Topic{},
			})
		}
		nodes[i].Topics = append(nodes[i].Topics, t)
	}

	return nodes
}

// capitalize viết hoa ký tự đầu, giữ nguyên phần còn lại
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
