package crud

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

// Principal is the authenticated caller.
type Principal struct {
	ID       int64
	Username string
	Email    string
	Role     string
}

// Context is the per-request scope handed explicitly to every operation.
// It carries the principal and the resolution chain: the stack of records
// currently being acted upon. A Context belongs to one request and is not
// safe for concurrent use.
type Context struct {
	ctx       context.Context
	principal *Principal
	chain     []entity.Record
	log       *logrus.Entry
}

// NewContext builds a request scope. principal may be nil for anonymous callers.
func NewContext(ctx context.Context, principal *Principal, log *logrus.Entry) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if principal != nil {
		log = log.WithField("user_id", principal.ID)
	}
	return &Context{ctx: ctx, principal: principal, log: log}
}

// Std returns the underlying context for storage calls.
func (c *Context) Std() context.Context { return c.ctx }

func (c *Context) Logger() *logrus.Entry { return c.log }

func (c *Context) Principal() (*Principal, bool) {
	return c.principal, c.principal != nil
}

func (c *Context) Authenticated() bool { return c.principal != nil }

// Current returns the record on top of the resolution chain.
func (c *Context) Current() (entity.Record, bool) {
	if len(c.chain) == 0 {
		return nil, false
	}
	return c.chain[len(c.chain)-1], true
}

// Depth is the number of records on the resolution chain.
func (c *Context) Depth() int { return len(c.chain) }

// Chain returns a copy of the resolution chain, bottom first.
func (c *Context) Chain() []entity.Record {
	out := make([]entity.Record, len(c.chain))
	copy(out, c.chain)
	return out
}

// WithResolverScope pushes rec for the duration of fn. The chain is restored
// to its previous depth on every exit path, panics included.
func (c *Context) WithResolverScope(rec entity.Record, fn func() error) error {
	depth := len(c.chain)
	c.chain = append(c.chain, rec)
	defer func() { c.chain = c.chain[:depth] }()
	return fn()
}
