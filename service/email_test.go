package service

import (
	"context"
	"errors"
	"testing"

	"infraspend/config"
	"infraspend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func newTestEmailService(enabled bool) (*EmailService, *[]*gomail.Message) {
	s := NewEmailService(&config.EmailConfig{Enabled: enabled, Username: "noreply@example.com", From: "Infraspend"}, "https://spend.example.com")
	var sent []*gomail.Message
	s.send = func(m *gomail.Message) error {
		sent = append(sent, m)
		return nil
	}
	return s, &sent
}

func testReviewEvent(status models.ExpenditureStatus) ReviewEvent {
	return ReviewEvent{
		ExpenditureID:  7,
		ProjectName:    "Bridge <North>",
		Category:       "Materials",
		Amount:         decimal.NewFromInt(400000),
		Status:         status,
		ReviewerName:   "Alice",
		SubmitterName:  "Bob",
		SubmitterEmail: "bob@example.com",
		ProjectTotal:   decimal.NewFromInt(400000),
	}
}

func TestGenerateReviewEmailBody(t *testing.T) {
	s, _ := newTestEmailService(true)

	body := s.generateReviewEmailBody(testReviewEvent(models.StatusApproved))
	assert.Contains(t, body, "Bob")
	assert.Contains(t, body, "approved")
	assert.Contains(t, body, "400000.00")
	assert.Contains(t, body, "Bridge &lt;North&gt;")
	assert.Contains(t, body, "https://spend.example.com")

	body = s.generateReviewEmailBody(testReviewEvent(models.StatusRejected))
	assert.Contains(t, body, "rejected")
	assert.Contains(t, body, "#ef4444")
}

func TestExpenditureReviewed_Sends(t *testing.T) {
	s, sent := newTestEmailService(true)

	require.NoError(t, s.ExpenditureReviewed(context.Background(), testReviewEvent(models.StatusApproved)))
	require.Len(t, *sent, 1)
	assert.Equal(t, []string{"bob@example.com"}, (*sent)[0].GetHeader("To"))
	assert.Equal(t, []string{"[Infraspend] Expenditure #7 approved"}, (*sent)[0].GetHeader("Subject"))
}

func TestExpenditureReviewed_Skips(t *testing.T) {
	disabled, sent := newTestEmailService(false)
	require.NoError(t, disabled.ExpenditureReviewed(context.Background(), testReviewEvent(models.StatusApproved)))
	assert.Empty(t, *sent)

	enabled, sent := newTestEmailService(true)
	ev := testReviewEvent(models.StatusApproved)
	ev.SubmitterEmail = ""
	require.NoError(t, enabled.ExpenditureReviewed(context.Background(), ev))
	assert.Empty(t, *sent)
}

func TestExpenditureReviewed_SendError(t *testing.T) {
	s, _ := newTestEmailService(true)
	s.send = func(*gomail.Message) error { return errors.New("smtp down") }

	err := s.ExpenditureReviewed(context.Background(), testReviewEvent(models.StatusApproved))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}
