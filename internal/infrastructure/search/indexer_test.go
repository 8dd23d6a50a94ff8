package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

type recorded struct {
	method string
	path   string
	body   string
}

func setupES(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Indexer, *[]recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewIndexer(es, "users", "posts", logger), &seen
}

func TestIndexUser(t *testing.T) {
	idx, seen := setupES(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	u := &entity.User{ID: 12, Username: "alice", Email: "alice@example.com", CreatedAt: time.Now()}
	require.NoError(t, idx.IndexUser(context.Background(), u))

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/users/_doc/12", req.path)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.body), &doc))
	assert.Equal(t, "alice", doc["username"])
	assert.NotContains(t, doc, "password")
}

func TestIndexErrorStatus(t *testing.T) {
	idx, _ := setupES(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	})
	err := idx.IndexPost(context.Background(), &entity.Post{ID: 3, Content: "x"})
	assert.Error(t, err)
}

func TestSearchUsersReturnsIDs(t *testing.T) {
	idx, seen := setupES(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"4"},{"_id":"oops"},{"_id":"9"}]}}`))
	})

	ids, err := idx.SearchUsers(context.Background(), "ali", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 9}, ids)

	req := (*seen)[0]
	assert.True(t, strings.HasSuffix(req.path, "/users/_search"))
	assert.Contains(t, req.body, `"size":10`)
	assert.Contains(t, req.body, `"query":"ali"`)
}

func TestDeleteIgnoresMissingDocument(t *testing.T) {
	idx, seen := setupES(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	require.NoError(t, idx.DeletePost(context.Background(), 5))
	assert.Equal(t, http.MethodDelete, (*seen)[0].method)
	assert.Equal(t, "/posts/_doc/5", (*seen)[0].path)
}

func TestNilClientIsNoop(t *testing.T) {
	idx := NewIndexer(nil, "users", "posts", nil)
	require.NoError(t, idx.IndexUser(context.Background(), &entity.User{ID: 1}))
	ids, err := idx.SearchPosts(context.Background(), "x", 5)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
