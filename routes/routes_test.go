package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/devlearn-backend/config"
	"github.com/vnkhanh/devlearn-backend/models"
	"github.com/vnkhanh/devlearn-backend/services"
	"github.com/vnkhanh/devlearn-backend/utils"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "routes-test-secret")

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	prev := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = prev
		_ = sqlDB.Close()
	})

	return &testAPI{t: t, router: SetupRouter(gin.New()), db: db}
}

// token tạo user với role cho trước và trả về JWT của user đó
func (a *testAPI) token(email string, role models.UserRole) string {
	a.t.Helper()
	user, err := services.NewUserStore(a.db).Register(context.Background(), email, "secret123", "Test User", role)
	require.NoError(a.t, err)
	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRootAndHealth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "API is running...", w.Body.String())

	w = api.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	catalog, _ := body["catalog"].(map[string]any)
	assert.EqualValues(t, 0, catalog["subjects"])
	assert.EqualValues(t, 0, catalog["topics"])

	_, err := services.NewSubjectStore(api.db).Create(context.Background(), services.SubjectInput{
		Name: "React", Title: "React", Path: "/react",
	})
	require.NoError(t, err)

	w = api.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	catalog, _ = decode[map[string]any](t, w)["catalog"].(map[string]any)
	assert.EqualValues(t, 1, catalog["subjects"])
}

func TestSubjectCRUDFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := api.token("admin@example.com", models.RoleAdmin)

	w := api.do(http.MethodGet, "/api/subjects", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = api.do(http.MethodPost, "/api/subjects", map[string]any{
		"name": "React", "title": "React Concepts", "path": "/react", "order": 1,
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "BookOpen", created["icon"])
	assert.Equal(t, "text-gray-500", created["color"])

	w = api.do(http.MethodPost, "/api/subjects", map[string]any{
		"name": "react", "title": "Dup", "path": "/dup",
	}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Subject name already exists", decode[map[string]any](t, w)["message"])

	w = api.do(http.MethodPut, "/api/subjects/"+id, map[string]any{"title": "React Deep Dive", "order": 0}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[map[string]any](t, w)
	assert.Equal(t, "React Deep Dive", updated["title"])
	assert.Equal(t, "React", updated["name"])
	assert.EqualValues(t, 0, updated["order"])

	w = api.do(http.MethodGet, "/api/subjects/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "React Deep Dive", decode[map[string]any](t, w)["title"])

	w = api.do(http.MethodDelete, "/api/subjects/"+id, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Subject removed", decode[map[string]any](t, w)["message"])

	w = api.do(http.MethodGet, "/api/subjects/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Subject not found", decode[map[string]any](t, w)["message"])

	w = api.do(http.MethodDelete, "/api/subjects/"+id, nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWritesRequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	student := api.token("student@example.com", models.RoleStudent)
	payload := map[string]any{"name": "React", "title": "React", "path": "/react"}

	w := api.do(http.MethodPost, "/api/subjects", payload, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, no token", decode[map[string]any](t, w)["message"])

	w = api.do(http.MethodPost, "/api/subjects", payload, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/subjects", payload, student)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized as an admin", decode[map[string]any](t, w)["message"])

	w = api.do(http.MethodPost, "/api/topics", map[string]any{
		"topicId": "usestate", "title": "useState", "category": "core",
	}, student)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var subjects, topics int64
	require.NoError(t, api.db.Model(&models.Subject{}).Count(&subjects).Error)
	require.NoError(t, api.db.Model(&models.Topic{}).Count(&topics).Error)
	assert.Zero(t, subjects)
	assert.Zero(t, topics)
}

func TestSuspendedAdminIsForbidden(t *testing.T) {
	api := newTestAPI(t)
	admin := api.token("admin@example.com", models.RoleAdmin)
	require.NoError(t, api.db.Model(&models.User{}).
		Where("email = ?", "admin@example.com").
		Update("status", false).Error)

	w := api.do(http.MethodPost, "/api/subjects", map[string]any{
		"name": "React", "title": "React", "path": "/react",
	}, admin)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Account is suspended", decode[map[string]any](t, w)["message"])
}

func TestTopicCRUDFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := api.token("admin@example.com", models.RoleAdmin)

	w := api.do(http.MethodPost, "/api/topics", map[string]any{
		"topicId":      "usestate",
		"title":        "useState",
		"category":     "core",
		"subject":      "React",
		"componentKey": "UseStateDemo",
		"theory":       map[string]any{"overview": "State hook", "tips": []string{"Use functional updates"}},
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "react", created["subject"])
	assert.Equal(t, "hooks", created["section"])
	assert.Equal(t, "Box", created["icon"])

	w = api.do(http.MethodPost, "/api/topics", map[string]any{
		"topicId": "closures", "title": "Closures", "category": "core", "subject": "js",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodGet, "/api/topics?subject=REACT", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "usestate", list[0]["topicId"])

	w = api.do(http.MethodGet, "/api/topics/usestate", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[map[string]any](t, w)
	assert.Equal(t, "usestate", detail["topicId"])
	demo, _ := detail["demo"].(map[string]any)
	assert.Equal(t, "UseStateDemo", demo["key"])

	w = api.do(http.MethodGet, "/api/topics/usestate/theory", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	theory := decode[map[string]any](t, w)
	assert.Contains(t, theory["overview"], "State hook")

	w = api.do(http.MethodPut, "/api/topics/usestate", map[string]any{"title": "useState Hook"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "useState Hook", decode[map[string]any](t, w)["title"])

	w = api.do(http.MethodGet, "/api/subjects/react/navigation", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	nav := decode[map[string]any](t, w)
	sections, _ := nav["sections"].([]any)
	require.Len(t, sections, 1)

	w = api.do(http.MethodDelete, "/api/topics/usestate", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Topic removed", decode[map[string]any](t, w)["message"])

	w = api.do(http.MethodGet, "/api/topics/usestate", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Topic not found", decode[map[string]any](t, w)["message"])
}

func TestLiveCodeRun(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/livecode/run", map[string]any{"code": "  "}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/livecode/run", map[string]any{
		"code":  "import \"fmt\"\n\nfunc main() { fmt.Print(\"hi\") }",
		"split": 30,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[map[string]any](t, w)
	assert.Equal(t, "hi", res["output"])
	assert.EqualValues(t, 30, res["split"])

	w = api.do(http.MethodPost, "/api/livecode/run", map[string]any{
		"code": "func main() { nope() }",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string]any](t, w)["error"])
}

func TestLiveCodeDragAndGoStatement(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/livecode/run", map[string]any{
		"code": "import \"fmt\"\n\nfunc main() { fmt.Print(\"hi\") }",
		"drag": map[string]any{"x": 250, "width": 1000},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 25, decode[map[string]any](t, w)["split"])

	// vị trí thả ngoài 20-80% giữ tỉ lệ mặc định
	w = api.do(http.MethodPost, "/api/livecode/run", map[string]any{
		"code": "import \"fmt\"\n\nfunc main() { fmt.Print(\"hi\") }",
		"drag": map[string]any{"x": 50, "width": 1000},
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 50, decode[map[string]any](t, w)["split"])

	w = api.do(http.MethodPost, "/api/livecode/run", map[string]any{
		"code": "func main() { go func() { for {} }() }",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string]any](t, w)["error"], "go statements are not allowed")
}

func TestTopicLiveCodeRun(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	topics := services.NewTopicStore(api.db)

	_, err := topics.Create(ctx, services.TopicInput{
		TopicID:  "go-print",
		Title:    "Print",
		Category: "core",
		Subject:  "go",
		LiveCode: "import \"fmt\"\n\nfunc main() { fmt.Print(\"from topic\") }",
	})
	require.NoError(t, err)
	_, err = topics.Create(ctx, services.TopicInput{TopicID: "no-code", Title: "No code", Category: "core"})
	require.NoError(t, err)

	w := api.do(http.MethodPost, "/api/topics/go-print/run", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "from topic", decode[map[string]any](t, w)["output"])

	w = api.do(http.MethodPost, "/api/topics/no-code/run", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/api/topics/missing/run", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register", map[string]any{
		"email": "new@example.com", "password": "secret123", "fullName": "New User",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/auth/register", map[string]any{
		"email": "new@example.com", "password": "secret123", "fullName": "Again",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "new@example.com", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "new@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	claims, err := utils.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "student", claims.Role)
}
