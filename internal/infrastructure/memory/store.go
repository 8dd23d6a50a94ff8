package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

type record[E any] interface {
	*E
	entity.Record
	Clone() *E
	SetID(id int64)
	Touch(now time.Time)
}

// Store keeps records of one type in process memory. Records are copied on
// the way in and out, so callers never share state with the store.
type Store[E any, P record[E]] struct {
	mu   sync.RWMutex
	seq  int64
	rows map[int64]P
	now  func() time.Time
}

func NewStore[E any, P record[E]]() *Store[E, P] {
	return &Store[E, P]{rows: make(map[int64]P), now: time.Now}
}

func (s *Store[E, P]) FindAll(_ context.Context) ([]P, error) {
	return s.Where(nil), nil
}

func (s *Store[E, P]) FindByID(_ context.Context, id int64) (P, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rows[id]
	if !ok {
		var zero P
		return zero, repository.ErrNotFound
	}
	return P(p.Clone()), nil
}

func (s *Store[E, P]) Create(_ context.Context, fields map[string]any) (P, error) {
	p := P(new(E))
	if err := helpers.DecodeFields(fields, p); err != nil {
		var zero P
		return zero, err
	}
	return p, nil
}

// Save inserts p when its id is zero and replaces the stored copy otherwise.
func (s *Store[E, P]) Save(_ context.Context, p P) (P, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(p)
}

// SaveUnless saves p unless a stored record other than p itself satisfies
// clash, in which case it returns repository.ErrConflict. The check and the
// write happen under the same lock.
func (s *Store[E, P]) SaveUnless(p P, clash func(stored P) bool) (P, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range s.rows {
		if id != p.GetID() && clash(o) {
			var zero P
			return zero, repository.ErrConflict
		}
	}
	return s.saveLocked(p)
}

func (s *Store[E, P]) saveLocked(p P) (P, error) {
	if p.GetID() == 0 {
		s.seq++
		p.SetID(s.seq)
	} else if _, ok := s.rows[p.GetID()]; !ok {
		var zero P
		return zero, repository.ErrNotFound
	}
	p.Touch(s.now())
	s.rows[p.GetID()] = P(p.Clone())
	return p, nil
}

func (s *Store[E, P]) Remove(_ context.Context, p P) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[p.GetID()]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, p.GetID())
	return nil
}

// Where returns copies of the records matching pred, ordered by id.
// A nil pred matches everything.
func (s *Store[E, P]) Where(pred func(P) bool) []P {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]P, 0, len(s.rows))
	for _, p := range s.rows {
		if pred == nil || pred(p) {
			out = append(out, P(p.Clone()))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetID() < out[j].GetID() })
	return out
}

// First returns the lowest-id record matching pred.
func (s *Store[E, P]) First(pred func(P) bool) (P, error) {
	rows := s.Where(pred)
	if len(rows) == 0 {
		var zero P
		return zero, repository.ErrNotFound
	}
	return rows[0], nil
}

// Len reports the number of stored records.
func (s *Store[E, P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
