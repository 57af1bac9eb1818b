package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// emailSender is the part of the SES client the channel needs.
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailChannel tells the submitter about review decisions through SES.
type EmailChannel struct {
	client emailSender
	from   string
}

func NewEmailChannel(cfg aws.Config, from string) *EmailChannel {
	return &EmailChannel{client: sesv2.NewFromConfig(cfg), from: from}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Deliver(ctx context.Context, event ModerationEvent) error {
	if event.Type != EventStatusChanged || event.ContactEmail == "" {
		return ErrSkipped
	}

	subject, body := renderStatusEmail(event)
	_, err := e.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.from),
		Destination: &types.Destination{
			ToAddresses: []string{event.ContactEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send status email: %w", err)
	}
	return nil
}

func renderStatusEmail(event ModerationEvent) (string, string) {
	var subject, lead string
	switch event.Status {
	case "approved":
		subject = fmt.Sprintf("%s is now listed", event.ProjectName)
		lead = "Your project was approved and is now visible in the public directory."
	case "rejected":
		subject = fmt.Sprintf("%s was not approved", event.ProjectName)
		lead = "Your project was reviewed and will not be listed."
	case "changes_requested":
		subject = fmt.Sprintf("Changes requested for %s", event.ProjectName)
		lead = "A reviewer asked for changes before your project can be listed. Update it and resubmit."
	default:
		subject = fmt.Sprintf("%s is back in review", event.ProjectName)
		lead = "Your project is waiting for review."
	}

	var b strings.Builder
	b.WriteString(lead)
	if notes := strings.TrimSpace(event.Notes); notes != "" {
		b.WriteString("\n\nReviewer notes:\n")
		b.WriteString(notes)
	}
	b.WriteString("\n")
	return subject, b.String()
}
