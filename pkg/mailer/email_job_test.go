package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-crud/config"
	mailtpl "github.com/oksasatya/go-social-crud/pkg/mailer/templates"
)

type fakeSender struct {
	to, subject string
	err         error
}

func (f *fakeSender) Send(_ context.Context, to, subject, _, _ string) error {
	f.to, f.subject = to, subject
	return f.err
}

func jobBody(t *testing.T, job EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestProcessTemplateJob(t *testing.T) {
	data := mailtpl.NewNotificationData(&config.Config{AppName: "Social"}, "alice", "alice@example.com", "bob wants to follow you")
	sender := &fakeSender{}

	d, err := Process(context.Background(), jobBody(t, EmailJob{Template: mailtpl.Notification, Data: data}), sender)
	require.NoError(t, err)
	assert.Equal(t, Ack, d)
	assert.Equal(t, "alice@example.com", sender.to)
	assert.Equal(t, "Social: bob wants to follow you", sender.subject)
}

func TestProcessDispositions(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		err  error
		want Disposition
	}{
		{"malformed", []byte("{"), nil, Drop},
		{"no recipient", jobBody(t, EmailJob{Subject: "x"}), nil, Drop},
		{"unknown template", jobBody(t, EmailJob{To: "a@example.com", Template: "nope"}), nil, Drop},
		{"send failure", jobBody(t, EmailJob{To: "a@example.com", Subject: "x", Text: "y"}), errors.New("503"), Requeue},
		{"plain", jobBody(t, EmailJob{To: "a@example.com", Subject: "x", Text: "y"}), nil, Ack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := Process(context.Background(), tt.body, &fakeSender{err: tt.err})
			assert.Equal(t, tt.want, d)
		})
	}
}
