package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"
)

const (
	// ScopeImportPath là package chứa icon và biến do topic cung cấp
	ScopeImportPath = "devlearn/scope"

	maxLiveOutput    = 64 << 10
	maxCachedResults = 256
)

var errGoStatement = errors.New("go statements are not allowed in live code")

// Symbol bị loại khỏi scope vì chạy callback trên goroutine riêng
var blockedSymbols = map[string]map[string]bool{
	"time/time": {"AfterFunc": true},
}

// Các package stdlib an toàn mà live code được phép import
var defaultLivePackages = []string{
	"bytes",
	"encoding/json",
	"errors",
	"fmt",
	"math",
	"regexp",
	"sort",
	"strconv",
	"strings",
	"time",
	"unicode",
}

// LiveResult là kết quả một lần render; lỗi biên dịch/chạy nằm trong Error chứ không trả về err
type LiveResult struct {
	Output     string `json:"output"`
	Error      string `json:"error,omitempty"`
	RenderKey  int    `json:"renderKey"`
	DurationMs int64  `json:"durationMs"`
	Cached     bool   `json:"cached"`
}

type LiveRunner struct {
	allowed map[string]bool
	timeout time.Duration

	mu    sync.Mutex
	cache map[string]LiveResult
}

func NewLiveRunner(timeout time.Duration) *LiveRunner {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	allowed := make(map[string]bool, len(defaultLivePackages))
	for _, pkg := range defaultLivePackages {
		allowed[pkg] = true
	}
	return &LiveRunner{
		allowed: allowed,
		timeout: timeout,
		cache:   make(map[string]LiveResult),
	}
}

// AllowedPackages trả về danh sách import được phép, đã sắp xếp
func (r *LiveRunner) AllowedPackages() []string {
	pkgs := make([]string, 0, len(r.allowed)+1)
	for pkg := range r.allowed {
		pkgs = append(pkgs, pkg)
	}
	pkgs = append(pkgs, ScopeImportPath)
	sort.Strings(pkgs)
	return pkgs
}

// Render chạy code với scope = stdlib cho phép + icon + extras.
// Cùng code, scope và renderKey thì dùng lại kết quả cũ; đổi renderKey buộc chạy lại.
func (r *LiveRunner) Render(ctx context.Context, code string, extras map[string]any, renderKey int) LiveResult {
	key := cacheKey(code, extras, renderKey)

	r.mu.Lock()
	if res, ok := r.cache[key]; ok {
		r.mu.Unlock()
		res.Cached = true
		return res
	}
	r.mu.Unlock()

	res := r.Run(ctx, code, extras)
	res.RenderKey = renderKey

	r.mu.Lock()
	if len(r.cache) >= maxCachedResults {
		r.cache = make(map[string]LiveResult)
	}
	r.cache[key] = res
	r.mu.Unlock()

	return res
}

// Run thông dịch code bằng yaegi trong sandbox, có timeout
func (r *LiveRunner) Run(ctx context.Context, code string, extras map[string]any) (res LiveResult) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Error = fmt.Sprintf("panic: %v", p)
		}
		res.DurationMs = time.Since(start).Milliseconds()
	}()

	src := wrapLiveCode(code)
	if err := r.validateSource(src); err != nil {
		res.Error = err.Error()
		return res
	}

	out := &limitedBuffer{limit: maxLiveOutput}
	i := interp.New(interp.Options{Stdout: out, Stderr: out})
	if err := i.Use(r.exports(extras)); err != nil {
		res.Error = fmt.Sprintf("load scope: %v", err)
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := i.EvalWithContext(ctx, src); err != nil {
		if ctx.Err() != nil {
			res.Error = fmt.Sprintf("execution timed out after %s", r.timeout)
		} else {
			res.Error = err.Error()
		}
		zap.L().Debug("live code failed", zap.Error(err))
	}
	res.Output = out.String()
	return res
}

// validateSource chỉ cho phép các package trong allow-list và ScopeImportPath,
// đồng thời cấm lệnh go: goroutine sinh ra sẽ sống tiếp sau khi hết timeout.
func (r *LiveRunner) validateSource(src string) error {
	file, err := parser.ParseFile(token.NewFileSet(), "live.go", src, parser.SkipObjectResolution)
	if err != nil {
		return err
	}
	if file.Name.Name != "main" {
		return fmt.Errorf("live code must be in package main, got %q", file.Name.Name)
	}

	var goStmt *ast.GoStmt
	ast.Inspect(file, func(n ast.Node) bool {
		if g, ok := n.(*ast.GoStmt); ok && goStmt == nil {
			goStmt = g
		}
		return goStmt == nil
	})
	if goStmt != nil {
		return errGoStatement
	}

	var forbidden []string
	for _, spec := range file.Imports {
		pkg, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return err
		}
		if pkg != ScopeImportPath && !r.allowed[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports: %s (allowed: %s)",
			strings.Join(forbidden, ", "), strings.Join(r.AllowedPackages(), ", "))
	}
	return nil
}

// exports gộp scope theo thứ tự: stdlib cho phép < icon < extras (cái sau ghi đè)
func (r *LiveRunner) exports(extras map[string]any) interp.Exports {
	exports := interp.Exports{}
	for key, symbols := range stdlib.Symbols {
		if !r.allowed[path.Dir(key)] {
			continue
		}
		if blocked := blockedSymbols[key]; len(blocked) > 0 {
			filtered := make(map[string]reflect.Value, len(symbols))
			for name, v := range symbols {
				if !blocked[name] {
					filtered[name] = v
				}
			}
			symbols = filtered
		}
		exports[key] = symbols
	}

	scope := map[string]reflect.Value{}
	for name, glyph := range IconNames() {
		scope[name] = variable(glyph)
	}
	for name, value := range extras {
		if value == nil {
			continue
		}
		scope[capitalize(name)] = variable(value)
	}
	exports[ScopeImportPath+"/"+path.Base(ScopeImportPath)] = scope
	return exports
}

func variable(v any) reflect.Value {
	rv := reflect.New(reflect.TypeOf(v)).Elem()
	rv.Set(reflect.ValueOf(v))
	return rv
}

// wrapLiveCode thêm "package main" nếu snippet chưa có
func wrapLiveCode(code string) string {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, "package ") {
		return code
	}
	return "package main\n\n" + code
}

func cacheKey(code string, extras map[string]any, renderKey int) string {
	h := sha256.New()
	h.Write([]byte(code))
	h.Write([]byte{0})
	if scope, err := json.Marshal(extras); err == nil {
		h.Write(scope)
	}
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(renderKey)))
	return hex.EncodeToString(h.Sum(nil))
}

// limitedBuffer gom stdout của live code, an toàn khi goroutine bị timeout vẫn còn ghi
type limitedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
