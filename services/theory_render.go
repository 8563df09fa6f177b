package services

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/vnkhanh/devlearn-backend/models"
)

// RenderedTheory là phần lý thuyết đã chuyển markdown sang HTML
type RenderedTheory struct {
	TopicID          string   `json:"topicId"`
	Title            string   `json:"title"`
	Overview         string   `json:"overview"`
	Definition       string   `json:"definition"`
	Syntax           string   `json:"syntax"`
	RealLifeScenario string   `json:"realLifeScenario"`
	DeepDive         string   `json:"deepDive"`
	Pros             []string `json:"pros"`
	Cons             []string `json:"cons"`
	WhenToUse        []string `json:"whenToUse"`
	Tips             []string `json:"tips"`
	CommonPitfalls   []string `json:"commonPitfalls"`
}

type TheoryRenderer struct {
	md       goldmark.Markdown
	language string
}

// NewTheoryRenderer tạo renderer; language dùng cho khối syntax (vd "jsx")
func NewTheoryRenderer(language string) *TheoryRenderer {
	if language == "" {
		language = "jsx"
	}
	// Không bật html.WithUnsafe: HTML thô trong markdown sẽ bị loại bỏ
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
			),
		),
	)
	return &TheoryRenderer{md: md, language: language}
}

func (r *TheoryRenderer) Render(topic models.Topic) (*RenderedTheory, error) {
	theory := topic.Theory.Data().Normalized()
	out := &RenderedTheory{
		TopicID: topic.TopicID,
		Title:   topic.Title,
	}

	var err error
	if out.Overview, err = r.markdown(theory.Overview); err != nil {
		return nil, err
	}
	if out.Definition, err = r.markdown(theory.Definition); err != nil {
		return nil, err
	}
	if out.RealLifeScenario, err = r.markdown(theory.RealLifeScenario); err != nil {
		return nil, err
	}
	if out.DeepDive, err = r.markdown(theory.DeepDive); err != nil {
		return nil, err
	}
	if strings.TrimSpace(theory.Syntax) != "" {
		fenced := "```" + r.language + "\n" + strings.TrimRight(theory.Syntax, "\n") + "\n```\n"
		if out.Syntax, err = r.markdown(fenced); err != nil {
			return nil, err
		}
	}

	lists := []struct {
		src []string
		dst *[]string
	}{
		{theory.Pros, &out.Pros},
		{theory.Cons, &out.Cons},
		{theory.WhenToUse, &out.WhenToUse},
		{theory.Tips, &out.Tips},
		{theory.CommonPitfalls, &out.CommonPitfalls},
	}
	for _, l := range lists {
		*l.dst = make([]string, 0, len(l.src))
		for _, item := range l.src {
			html, err := r.inline(item)
			if err != nil {
				return nil, err
			}
			*l.dst = append(*l.dst, html)
		}
	}

	return out, nil
}

func (r *TheoryRenderer) markdown(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", NewInternalError("render theory", err)
	}
	return buf.String(), nil
}

// inline render một mục danh sách, bỏ thẻ <p> bao ngoài
func (r *TheoryRenderer) inline(src string) (string, error) {
	html, err := r.markdown(src)
	if err != nil {
		return "", err
	}
	html = strings.TrimSpace(html)
	html = strings.TrimPrefix(html, "<p>")
	html = strings.TrimSuffix(html, "</p>")
	return html, nil
}
