package services

import "context"

const (
	MinSplit     = 20.0
	MaxSplit     = 80.0
	DefaultSplit = 50.0
)

// LiveSession giữ trạng thái của khung editor/preview cho một đoạn live code:
// tỉ lệ chia khung, cờ kéo thả và renderKey dùng để ép render lại.
type LiveSession struct {
	code      string
	scope     map[string]any
	split     float64
	dragging  bool
	renderKey int
	last      *LiveResult
}

func NewLiveSession(code string, scope map[string]any) *LiveSession {
	return &LiveSession{
		code:  code,
		scope: scope,
		split: DefaultSplit,
	}
}

func (s *LiveSession) Split() float64 { return s.split }

func (s *LiveSession) RenderKey() int { return s.renderKey }

func (s *LiveSession) Dragging() bool { return s.dragging }

// Resize đặt tỉ lệ trực tiếp; giá trị ngoài [MinSplit, MaxSplit] bị bỏ qua
func (s *LiveSession) Resize(percent float64) bool {
	if percent < MinSplit || percent > MaxSplit {
		return false
	}
	s.split = percent
	return true
}

func (s *LiveSession) BeginDrag() {
	s.dragging = true
}

// DragTo chỉ có tác dụng khi đang kéo; x là vị trí con trỏ tính từ mép trái khung rộng width
func (s *LiveSession) DragTo(x, width float64) bool {
	if !s.dragging || width <= 0 {
		return false
	}
	return s.Resize(x / width * 100)
}

func (s *LiveSession) EndDrag() {
	s.dragging = false
}

// SetRenderKey khôi phục renderKey mà client đang giữ
func (s *LiveSession) SetRenderKey(key int) {
	if key < 0 {
		key = 0
	}
	if key != s.renderKey {
		s.renderKey = key
		s.last = nil
	}
}

// Refresh tăng renderKey, lần Render kế tiếp sẽ chạy lại code
func (s *LiveSession) Refresh() int {
	s.renderKey++
	s.last = nil
	return s.renderKey
}

// SetCode thay code đang soạn, kết quả cũ bị bỏ
func (s *LiveSession) SetCode(code string) {
	if code != s.code {
		s.code = code
		s.last = nil
	}
}

func (s *LiveSession) Render(ctx context.Context, runner *LiveRunner) LiveResult {
	if s.last != nil {
		return *s.last
	}
	res := runner.Render(ctx, s.code, s.scope, s.renderKey)
	s.last = &res
	return res
}
