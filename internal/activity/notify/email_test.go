package notify

import (
	"context"
	"errors"
	"testing"

	"mergington-activities/internal/activity/events"
	"mergington-activities/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock SES
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         []*ses.SendEmailInput
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params, optFns...)
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func createTestNotifier(t *testing.T, sesClient SESService) *EmailNotifier {
	return NewEmailNotifier(sesClient, "activities@mergington.edu", logger.NewTestLogger(t))
}

// ==========================
// Tests
// ==========================

func TestEmailNotifier_Publish(t *testing.T) {
	tests := []struct {
		name        string
		eventType   string
		wantSubject string
		wantBody    string
	}{
		{
			name:        "joined",
			eventType:   events.TypeMemberJoined,
			wantSubject: "You're signed up for Chess Club",
			wantBody:    "Hello newstudent@mergington.edu, you are now on the roster for Chess Club at Mergington High School.",
		},
		{
			name:        "left",
			eventType:   events.TypeMemberLeft,
			wantSubject: "You've left Chess Club",
			wantBody:    "Hello newstudent@mergington.edu, you have been removed from the roster for Chess Club at Mergington High School.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSES := &MockSESService{}
			n := createTestNotifier(t, mockSES)

			err := n.Publish(context.Background(), events.NewEvent(tt.eventType, "Chess Club", "newstudent@mergington.edu"))
			require.NoError(t, err)
			require.Len(t, mockSES.calls, 1)

			input := mockSES.calls[0]
			assert.Equal(t, []string{"newstudent@mergington.edu"}, input.Destination.ToAddresses)
			assert.Equal(t, "activities@mergington.edu", aws.ToString(input.Source))
			assert.Equal(t, tt.wantSubject, aws.ToString(input.Message.Subject.Data))
			assert.Equal(t, tt.wantBody, aws.ToString(input.Message.Body.Text.Data))
		})
	}
}

func TestEmailNotifier_IgnoresUnknownType(t *testing.T) {
	mockSES := &MockSESService{}
	n := createTestNotifier(t, mockSES)

	err := n.Publish(context.Background(), events.NewEvent("activity.renamed", "Chess Club", "a@mergington.edu"))
	assert.NoError(t, err)
	assert.Empty(t, mockSES.calls)
}

func TestEmailNotifier_SendFailure(t *testing.T) {
	mockSES := &MockSESService{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("MessageRejected: Email address is not verified")
		},
	}
	n := createTestNotifier(t, mockSES)

	err := n.Publish(context.Background(), events.NewEvent(events.TypeMemberJoined, "Art Club", "amelia@mergington.edu"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotificationSendFailed)
	assert.Contains(t, err.Error(), "MessageRejected")
}

func TestRenderTemplate(t *testing.T) {
	out := renderTemplate("{{a}}-{{b}}-{{missing}}", map[string]string{"a": "1", "b": "2"})
	assert.Equal(t, "1-2-{{missing}}", out)
}

func TestRenderTemplate_ValuesAreNotRescanned(t *testing.T) {
	data := map[string]string{
		"activity": "{{email}} Club",
		"email":    "{{activity}}@mergington.edu",
	}

	for i := 0; i < 50; i++ {
		assert.Equal(t,
			"{{email}} Club / {{activity}}@mergington.edu",
			renderTemplate("{{activity}} / {{email}}", data),
		)
	}
}
