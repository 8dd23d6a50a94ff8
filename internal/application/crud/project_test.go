package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

func TestProjectSelectedFields(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), DefaultOptions())
	post := f.post(t, f.alice, "hello")
	post.Author = f.alice

	out, err := reg.Project(entity.TypePost, mustSelect(t, "{ id text: content author { username } comments }"), post)
	require.NoError(t, err)
	assert.Equal(t, post.ID, out["id"])
	assert.Equal(t, "hello", out["text"])
	assert.Equal(t, map[string]any{"username": "alice"}, out["author"])
	assert.NotContains(t, out, "content")
	assert.NotContains(t, out, "createdAt")
	// comments is not a declared relation, so it renders as a missing scalar.
	assert.Nil(t, out["comments"])
}

func TestProjectMissingRelations(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), DefaultOptions())
	post := f.post(t, f.alice, "hello")

	out, err := reg.Project(entity.TypePost, mustSelect(t, "{ author { id } }"), post)
	require.NoError(t, err)
	assert.Contains(t, out, "author")
	assert.Nil(t, out["author"])

	out, err = reg.Project(entity.TypeUser, mustSelect(t, "{ posts { id } }"), f.alice)
	require.NoError(t, err)
	assert.Equal(t, []any{}, out["posts"])
}

func TestProjectWildcardSkipsRelations(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), DefaultOptions())
	post := f.post(t, f.alice, "hello")
	post.Author = f.alice

	sel, err := ParseIncludes("")
	require.NoError(t, err)
	assert.Nil(t, sel)

	out, err := reg.Project(entity.TypePost, Selection{{Name: Wildcard}}, post)
	require.NoError(t, err)
	assert.Equal(t, "hello", out["content"])
	assert.Equal(t, f.alice.ID, out["authorId"])
	assert.NotContains(t, out, "author")

	all, err := reg.ProjectAll(entity.TypePost, nil, []entity.Record{post})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Contains(t, all[0], "author")
}

func TestProjectNil(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), DefaultOptions())
	out, err := reg.Project(entity.TypePost, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestProjectKeepsLargeIntegers(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), DefaultOptions())
	const big = int64(1)<<53 + 1
	post := &entity.Post{ID: big, AuthorID: big - 2, Content: "hello"}
	post.Author = &entity.User{ID: big, Username: "alice"}

	out, err := reg.Project(entity.TypePost, mustSelect(t, "{ id authorId author { id } }"), post)
	require.NoError(t, err)
	assert.Equal(t, big, out["id"])
	assert.Equal(t, big-2, out["authorId"])
	assert.Equal(t, map[string]any{"id": big}, out["author"])

	out, err = reg.Project(entity.TypePost, nil, post)
	require.NoError(t, err)
	assert.Equal(t, big, out["id"])
	assert.Equal(t, big, out["author"].(map[string]any)["id"])
}

func TestProjectValueNumbers(t *testing.T) {
	doc := gjson.Parse(`{"i":9007199254740993,"f":1.5,"e":1e3,"n":null,"a":[1,2.5],"s":"x"}`)
	assert.Equal(t, int64(9007199254740993), value(doc.Get("i")))
	assert.Equal(t, 1.5, value(doc.Get("f")))
	assert.Equal(t, float64(1000), value(doc.Get("e")))
	assert.Nil(t, value(doc.Get("n")))
	assert.Equal(t, []any{int64(1), 2.5}, value(doc.Get("a")))
	assert.Equal(t, "x", value(doc.Get("s")))
}
