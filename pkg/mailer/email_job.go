package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mailtpl "github.com/oksasatya/go-social-crud/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template and Data, or Subject with Text/HTML, must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Disposition is what a consumer does with a delivery after processing it.
type Disposition int

const (
	Ack Disposition = iota
	// Requeue asks the broker to redeliver, for transient send failures.
	Requeue
	// Drop discards a delivery that can never succeed.
	Drop
)

var ErrNoRecipient = errors.New("email job has no recipient")

// Decode parses a queued job and fills To from Data.RecipientEmail when absent.
func Decode(body []byte) (EmailJob, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return EmailJob{}, err
	}
	if strings.TrimSpace(job.To) == "" {
		if v, ok := job.Data["RecipientEmail"].(string); ok {
			job.To = v
		}
	}
	if strings.TrimSpace(job.To) == "" {
		return EmailJob{}, ErrNoRecipient
	}
	return job, nil
}

// Render resolves the subject and bodies of job.
func (job EmailJob) Render() (subject, text, html string, err error) {
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}
	return mailtpl.Render(job.Template, job.Data)
}

// Process handles one delivery body end to end.
func Process(ctx context.Context, body []byte, sender Sender) (Disposition, error) {
	job, err := Decode(body)
	if err != nil {
		return Drop, fmt.Errorf("bad message: %w", err)
	}
	subject, text, html, err := job.Render()
	if err != nil {
		return Drop, fmt.Errorf("render %s: %w", job.Template, err)
	}
	if err := sender.Send(ctx, job.To, subject, text, html); err != nil {
		return Requeue, fmt.Errorf("send: %w", err)
	}
	return Ack, nil
}
