package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// Indexer keeps users and posts searchable. Search results carry only ids;
// callers re-read the records through the permission-checked resolvers.
type Indexer struct {
	es         *elasticsearch.Client
	usersIndex string
	postsIndex string
	logger     *logrus.Logger
}

func NewIndexer(es *elasticsearch.Client, usersIndex, postsIndex string, logger *logrus.Logger) *Indexer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Indexer{es: es, usersIndex: usersIndex, postsIndex: postsIndex, logger: logger}
}

func (i *Indexer) IndexUser(ctx context.Context, u *entity.User) error {
	return i.index(ctx, i.usersIndex, u.ID, map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"is_private": u.IsPrivate,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	})
}

func (i *Indexer) IndexPost(ctx context.Context, p *entity.Post) error {
	return i.index(ctx, i.postsIndex, p.ID, map[string]any{
		"id":         p.ID,
		"content":    p.Content,
		"author_id":  p.AuthorID,
		"created_at": p.CreatedAt.Format(time.RFC3339Nano),
	})
}

func (i *Indexer) DeleteUser(ctx context.Context, id int64) error {
	return i.delete(ctx, i.usersIndex, id)
}

func (i *Indexer) DeletePost(ctx context.Context, id int64) error {
	return i.delete(ctx, i.postsIndex, id)
}

// SearchUsers matches q against username and email.
func (i *Indexer) SearchUsers(ctx context.Context, q string, size int) ([]int64, error) {
	return i.search(ctx, i.usersIndex, q, []string{"username^2", "email"}, size)
}

// SearchPosts matches q against post content.
func (i *Indexer) SearchPosts(ctx context.Context, q string, size int) ([]int64, error) {
	return i.search(ctx, i.postsIndex, q, []string{"content"}, size)
}

func (i *Indexer) index(ctx context.Context, index string, id int64, doc map[string]any) error {
	if i.es == nil || index == "" {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: index, DocumentID: strconv.FormatInt(id, 10), Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		i.logger.WithError(err).WithFields(logrus.Fields{"index": index, "id": id}).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		i.logger.WithFields(logrus.Fields{"index": index, "id": id, "status": res.Status()}).Warn("es index response error")
		return fmt.Errorf("es index %s/%d: %s", index, id, res.Status())
	}
	return nil
}

func (i *Indexer) delete(ctx context.Context, index string, id int64) error {
	if i.es == nil || index == "" {
		return nil
	}
	req := esapi.DeleteRequest{Index: index, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete %s/%d: %s", index, id, res.Status())
	}
	return nil
}

func (i *Indexer) search(ctx context.Context, index, q string, fields []string, size int) ([]int64, error) {
	if i.es == nil || index == "" {
		return []int64{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": fields,
			},
		},
		"size":    size,
		"_source": false,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := i.es.Search(i.es.Search.WithContext(c), i.es.Search.WithIndex(index), i.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search %s: %s", index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			i.logger.WithField("id", h.ID).Warn("es hit with non-numeric id")
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
