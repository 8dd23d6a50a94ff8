package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/pkg/mailer"
	mailtpl "github.com/oksasatya/go-social-crud/pkg/mailer/templates"
)

func TestNotifyQueuesEmail(t *testing.T) {
	e := newEnv(t)
	n, err := e.notes.Notify(context.Background(), e.bob.ID, "hello")
	require.NoError(t, err)
	assert.False(t, n.Read)

	require.Equal(t, 1, e.jobs.count())
	job := e.jobs.jobs[0].(mailer.EmailJob)
	assert.Equal(t, "bob@example.com", job.To)
	assert.Equal(t, mailtpl.Notification, job.Template)
	assert.Equal(t, "hello", job.Data["Content"])
	assert.Equal(t, "Social Inc", job.Data["CompanyName"])
}

func TestNotifyWithoutQueue(t *testing.T) {
	e := newEnv(t)
	e.notes.Jobs = nil
	_, err := e.notes.Notify(context.Background(), e.bob.ID, "quiet")
	require.NoError(t, err)
	assert.Zero(t, e.jobs.count())
}

func TestMarkReadOwnerOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first, err := e.notes.Notify(ctx, e.bob.ID, "one")
	require.NoError(t, err)
	_, err = e.notes.Notify(ctx, e.bob.ID, "two")
	require.NoError(t, err)

	mine, err := e.notes.Mine(as(e.bob))
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "two", mine[0].Content)

	_, err = e.notes.MarkRead(as(e.alice), first.ID)
	assert.True(t, crud.IsNotFound(err))

	n, err := e.notes.MarkRead(as(e.bob), first.ID)
	require.NoError(t, err)
	assert.True(t, n.Read)

	_, err = e.notes.MarkRead(as(e.bob), 999)
	assert.True(t, crud.IsNotFound(err))

	_, err = e.notes.Mine(as(nil))
	assert.True(t, crud.IsUnauthorized(err))
}
