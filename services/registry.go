package services

import (
	"strings"

	"github.com/vnkhanh/devlearn-backend/models"
)

const (
	FallbackIconKey     = "Box"
	SectionIconKey      = "Layers"
	UnknownComponentKey = "Unknown"
)

type Icon struct {
	Key   string `json:"key"`
	Glyph string `json:"glyph"`
}

// Bảng icon tĩnh: key -> glyph. Key không có trong bảng dùng FallbackIconKey.
var iconRegistry = map[string]string{
	"Box":          "📦",
	"BookOpen":     "📖",
	"Code":         "💻",
	"Database":     "🗄️",
	"FileCode":     "📄",
	"Layers":       "🗂️",
	"Zap":          "⚡",
	"RefreshCw":    "🔄",
	"MousePointer": "🖱️",
	"Users":        "👥",
	"Cpu":          "🧠",
	"Clock":        "⏱️",
	"Link":         "🔗",
	"Shield":       "🛡️",
	"Gauge":        "📈",
}

// ResolveIcon trả về icon theo key, không phân biệt hoa thường
func ResolveIcon(key string) Icon {
	if glyph, ok := iconRegistry[key]; ok {
		return Icon{Key: key, Glyph: glyph}
	}
	for k, glyph := range iconRegistry {
		if strings.EqualFold(k, key) {
			return Icon{Key: k, Glyph: glyph}
		}
	}
	return Icon{Key: FallbackIconKey, Glyph: iconRegistry[FallbackIconKey]}
}

// IconNames trả về bản sao bảng icon (dùng làm scope cho live code)
func IconNames() map[string]string {
	icons := make(map[string]string, len(iconRegistry))
	for k, v := range iconRegistry {
		icons[k] = v
	}
	return icons
}

// DemoComponent mô tả một demo tương tác đã đăng ký phía frontend
type DemoComponent struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Interactive bool   `json:"interactive"`
}

var componentRegistry = map[string]DemoComponent{
	"UseStateDemo":             {Key: "UseStateDemo", Title: "useState counter", Interactive: true},
	"UseEffectDemo":            {Key: "UseEffectDemo", Title: "useEffect subscriptions", Interactive: true},
	"UseRefDemo":               {Key: "UseRefDemo", Title: "useRef focus & timers", Interactive: true},
	"UseReducerDemo":           {Key: "UseReducerDemo", Title: "useReducer todo list", Interactive: true},
	"UseContextDemo":           {Key: "UseContextDemo", Title: "useContext theme switch", Interactive: true},
	"UseMemoDemo":              {Key: "UseMemoDemo", Title: "useMemo expensive calc", Interactive: true},
	"UseCallbackDemo":          {Key: "UseCallbackDemo", Title: "useCallback memoized handlers", Interactive: true},
	"UseLayoutEffectDemo":      {Key: "UseLayoutEffectDemo", Title: "useLayoutEffect measuring", Interactive: true},
	"UseInsertionEffectDemo":   {Key: "UseInsertionEffectDemo", Title: "useInsertionEffect styles", Interactive: true},
	"UseImperativeHandleDemo":  {Key: "UseImperativeHandleDemo", Title: "useImperativeHandle API", Interactive: true},
	"UseDebugValueDemo":        {Key: "UseDebugValueDemo", Title: "useDebugValue labels", Interactive: true},
	"UseDeferredValueDemo":     {Key: "UseDeferredValueDemo", Title: "useDeferredValue search", Interactive: true},
	"UseTransitionDemo":        {Key: "UseTransitionDemo", Title: "useTransition tabs", Interactive: true},
	"UseIdDemo":                {Key: "UseIdDemo", Title: "useId accessible forms", Interactive: true},
	"UseSyncExternalStoreDemo": {Key: "UseSyncExternalStoreDemo", Title: "useSyncExternalStore online status", Interactive: true},
	"ContextOptimizationDemo":  {Key: "ContextOptimizationDemo", Title: "Context re-render optimization", Interactive: true},
	"LazyLoadExample":          {Key: "LazyLoadExample", Title: "React.lazy code splitting", Interactive: true},
}

var unknownComponent = DemoComponent{Key: UnknownComponentKey, Title: "Unknown demo"}

// ResolveComponent: key rỗng -> không có demo (ok=false); key lạ -> sentinel Unknown
func ResolveComponent(key string) (DemoComponent, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return DemoComponent{}, false
	}
	if c, ok := componentRegistry[key]; ok {
		return c, true
	}
	return unknownComponent, true
}

// TopicView là topic kèm thông tin icon và demo đã tra trong registry
type TopicView struct {
	models.Topic
	IconInfo Icon           `json:"iconInfo"`
	Demo     *DemoComponent `json:"demo,omitempty"`
}

func NewTopicView(topic models.Topic) TopicView {
	view := TopicView{
		Topic:    topic,
		IconInfo: ResolveIcon(topic.Icon),
	}
	if demo, ok := ResolveComponent(topic.ComponentKey); ok {
		view.Demo = &demo
	}
	return view
}
