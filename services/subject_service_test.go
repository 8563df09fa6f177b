package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/devlearn-backend/models"
)

func TestSubjectCreateAppliesDefaults(t *testing.T) {
	store := NewSubjectStore(newTestDB(t))

	subject, err := store.Create(context.Background(), SubjectInput{
		Name:  "React",
		Title: "React Concepts",
		Path:  "/react",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, subject.ID)
	assert.Equal(t, models.DefaultSubjectIcon, subject.Icon)
	assert.Equal(t, models.DefaultSubjectColor, subject.Color)
	assert.Equal(t, 0, subject.Order)
	assert.Equal(t, "react", subject.Key())
}

func TestSubjectCreateRequiresFields(t *testing.T) {
	store := NewSubjectStore(newTestDB(t))

	_, err := store.Create(context.Background(), SubjectInput{Name: "React", Path: "/react"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Contains(t, AsError(err).Message, "title")
}

func TestSubjectCreateRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewSubjectStore(newTestDB(t))

	_, err := store.Create(ctx, SubjectInput{Name: "React", Title: "React", Path: "/react"})
	require.NoError(t, err)

	_, err = store.Create(ctx, SubjectInput{Name: "react", Title: "Other", Path: "/other"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, "Subject name already exists", AsError(err).Message)

	_, err = store.Create(ctx, SubjectInput{Name: "Vue", Title: "Vue", Path: "/React"})
	require.Error(t, err)
	assert.Equal(t, "Subject path already exists", AsError(err).Message)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubjectListSortedByOrder(t *testing.T) {
	ctx := context.Background()
	store := NewSubjectStore(newTestDB(t))

	for _, in := range []SubjectInput{
		{Name: "TypeScript", Title: "TS", Path: "/ts", Order: intPtr(4)},
		{Name: "React", Title: "React", Path: "/react", Order: intPtr(1)},
		{Name: "JavaScript", Title: "JS", Path: "/js", Order: intPtr(2)},
	} {
		_, err := store.Create(ctx, in)
		require.NoError(t, err)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "React", list[0].Name)
	assert.Equal(t, "JavaScript", list[1].Name)
	assert.Equal(t, "TypeScript", list[2].Name)
}

func TestSubjectListEmptyIsNotNil(t *testing.T) {
	list, err := NewSubjectStore(newTestDB(t)).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestSubjectUpdateKeepsOmittedFields(t *testing.T) {
	ctx := context.Background()
	store := NewSubjectStore(newTestDB(t))

	created, err := store.Create(ctx, SubjectInput{
		Name:  "React",
		Title: "React Concepts",
		Path:  "/react",
		Icon:  "Zap",
		Order: intPtr(3),
	})
	require.NoError(t, err)

	updated, err := store.Update(ctx, created.ID.String(), SubjectInput{Title: "React Deep Dive"})
	require.NoError(t, err)
	assert.Equal(t, "React Deep Dive", updated.Title)
	assert.Equal(t, "React", updated.Name)
	assert.Equal(t, "Zap", updated.Icon)
	assert.Equal(t, 3, updated.Order)

	// order = 0 vẫn được ghi
	updated, err = store.Update(ctx, created.ID.String(), SubjectInput{Order: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Order)

	got, err := store.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "React Deep Dive", got.Title)
	assert.Equal(t, 0, got.Order)
}

func TestSubjectUpdateRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	store := NewSubjectStore(newTestDB(t))

	_, err := store.Create(ctx, SubjectInput{Name: "React", Title: "React", Path: "/react"})
	require.NoError(t, err)
	js, err := store.Create(ctx, SubjectInput{Name: "JavaScript", Title: "JS", Path: "/js"})
	require.NoError(t, err)

	_, err = store.Update(ctx, js.ID.String(), SubjectInput{Name: "REACT"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))

	// đổi sang chính tên của mình thì hợp lệ
	_, err = store.Update(ctx, js.ID.String(), SubjectInput{Name: "JavaScript"})
	assert.NoError(t, err)
}

func TestSubjectNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewSubjectStore(newTestDB(t))

	_, err := store.Get(ctx, "not-a-uuid")
	assert.True(t, IsKind(err, KindNotFound))

	_, err = store.Get(ctx, "7d1f3c1e-0a4b-4a55-9b5e-1f2a3b4c5d6e")
	assert.True(t, IsKind(err, KindNotFound))

	_, err = store.Update(ctx, "7d1f3c1e-0a4b-4a55-9b5e-1f2a3b4c5d6e", SubjectInput{Title: "x"})
	assert.True(t, IsKind(err, KindNotFound))

	err = store.Delete(ctx, "7d1f3c1e-0a4b-4a55-9b5e-1f2a3b4c5d6e")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestSubjectDelete(t *testing.T) {
	ctx := context.Background()
	store := NewSubjectStore(newTestDB(t))

	created, err := store.Create(ctx, SubjectInput{Name: "React", Title: "React", Path: "/react"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID.String()))

	_, err = store.Get(ctx, created.ID.String())
	assert.True(t, IsKind(err, KindNotFound))

	err = store.Delete(ctx, created.ID.String())
	assert.True(t, IsKind(err, KindNotFound))
}

func TestSubjectFindByKey(t *testing.T) {
	ctx := context.Background()
	store := NewSubjectStore(newTestDB(t))

	created, err := store.Create(ctx, SubjectInput{Name: "HTML & CSS", Title: "HTML & CSS", Path: "/html-css"})
	require.NoError(t, err)

	for _, key := range []string{"html-css", "/html-css", "HTML-CSS", "html & css", created.ID.String()} {
		got, err := store.FindByKey(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, created.ID, got.ID, key)
	}

	_, err = store.FindByKey(ctx, "vue")
	assert.True(t, IsKind(err, KindNotFound))

	_, err = store.FindByKey(ctx, "  ")
	assert.True(t, IsKind(err, KindNotFound))
}
