package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"infraspend/config"
	"infraspend/models"

	"gopkg.in/gomail.v2"
)

// EmailService sends review notifications to the submitter of an expenditure.
type EmailService struct {
	cfg     *config.EmailConfig
	baseURL string
	send    func(*gomail.Message) error
}

// NewEmailService creates the mail notifier. baseURL is used to link back to the app.
func NewEmailService(cfg *config.EmailConfig, baseURL string) *EmailService {
	s := &EmailService{cfg: cfg, baseURL: baseURL}
	s.send = s.dialAndSend
	return s
}

// ExpenditureReviewed implements Notifier. Submitters without an email are skipped.
func (s *EmailService) ExpenditureReviewed(ctx context.Context, ev ReviewEvent) error {
	if !s.cfg.Enabled || ev.SubmitterEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("[Infraspend] Expenditure #%d %s", ev.ExpenditureID, ev.Status)
	if err := s.sendEmail(ev.SubmitterEmail, subject, s.generateReviewEmailBody(ev)); err != nil {
		return err
	}
	slog.InfoContext(ctx, "review email sent", "component", "email", "expenditure_id", ev.ExpenditureID)
	return nil
}

// generateReviewEmailBody renders the notification
func (s *EmailService) generateReviewEmailBody(ev ReviewEvent) string {
	color := "#10b981"
	verdict := "approved"
	if ev.Status == models.StatusRejected {
		color = "#ef4444"
		verdict = "rejected"
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; }
        .header { background: %s; color: white; padding: 24px; text-align: center; }
        .content { padding: 30px; color: #333; line-height: 1.6; }
        table { width: 100%%; border-collapse: collapse; }
        td { padding: 6px 0; border-bottom: 1px solid #eee; }
        .footer { background: #f8f9fa; padding: 16px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>Expenditure %s</h1></div>
        <div class="content">
            <p>Hello <strong>%s</strong>,</p>
            <p>Your expenditure on <strong>%s</strong> was %s by %s.</p>
            <table>
                <tr><td>Category</td><td>%s</td></tr>
                <tr><td>Amount</td><td>%s</td></tr>
                <tr><td>Project total spent</td><td>%s</td></tr>
            </table>
            <p><a href="%s">Open Infraspend</a></p>
        </div>
        <div class="footer"><p>This message was sent automatically, please do not reply.</p></div>
    </div>
</body>
</html>
`, color, verdict,
		html.EscapeString(ev.SubmitterName),
		html.EscapeString(ev.ProjectName), verdict, html.EscapeString(ev.ReviewerName),
		html.EscapeString(ev.Category),
		ev.Amount.StringFixed(2),
		ev.ProjectTotal.StringFixed(2),
		html.EscapeString(s.baseURL))
}

// sendEmail builds and sends one message
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (s *EmailService) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
