// internal/activity/notify/email.go
package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"mergington-activities/internal/activity/events"
	"mergington-activities/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

// SESService is the subset of the SES client used for confirmations.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type template struct {
	subject string
	body    string
}

var templates = map[string]template{
	events.TypeMemberJoined: {
		subject: "You're signed up for {{activity}}",
		body:    "Hello {{email}}, you are now on the roster for {{activity}} at Mergington High School.",
	},
	events.TypeMemberLeft: {
		subject: "You've left {{activity}}",
		body:    "Hello {{email}}, you have been removed from the roster for {{activity}} at Mergington High School.",
	},
}

// EmailNotifier mails the participant named in each roster event.
type EmailNotifier struct {
	sesClient SESService
	fromEmail string
	logger    logger.Logger
}

func NewEmailNotifier(sesClient SESService, fromEmail string, log logger.Logger) *EmailNotifier {
	return &EmailNotifier{
		sesClient: sesClient,
		fromEmail: fromEmail,
		logger:    log.WithFields(map[string]interface{}{"component": "email-notifier"}),
	}
}

// Publish sends one email per event. Unknown event types are ignored.
func (n *EmailNotifier) Publish(ctx context.Context, event events.Event) error {
	tmpl, ok := templates[event.Type]
	if !ok {
		return nil
	}

	data := map[string]string{
		"activity": event.Activity,
		"email":    event.Email,
	}
	subject := renderTemplate(tmpl.subject, data)
	body := renderTemplate(tmpl.body, data)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{event.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.fromEmail),
	})
	if err != nil {
		return fmt.Errorf("%w: %s to %s: %v", ErrNotificationSendFailed, event.Type, event.Email, err)
	}

	n.logger.Debug("notification sent", map[string]interface{}{
		"eventId":  event.ID,
		"type":     event.Type,
		"activity": event.Activity,
	})
	return nil
}

// renderTemplate substitutes {{key}} placeholders in one pass; substituted
// values are never rescanned.
func renderTemplate(tmpl string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
