package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/mestre-da-redacao/backend/internal/config"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/metrics"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends the platform's transactional email. Failures surface to the
// caller; there is no retry or backoff.
type Mailer interface {
	// SendPasswordReset emails the reset link to a single user
	SendPasswordReset(ctx context.Context, to, resetLink string) error

	// SendEssayNotification alerts one or more professors about a submission
	SendEssayNotification(ctx context.Context, professorEmails []string, studentName, themeTitle string) error
}

// Inline templates, the only two mails the platform sends.
var (
	resetTemplate = template.Must(template.New("reset").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>Redefinição de senha</h2>
  <p>Recebemos um pedido para redefinir a sua senha no Mestre da Redação.</p>
  <p><a href="{{.Link}}" style="background:#1a73e8;color:#fff;padding:12px 24px;border-radius:4px;text-decoration:none;">Redefinir senha</a></p>
  <p>O link expira em 1 hora. Se você não pediu a redefinição, ignore este email.</p>
</div>`))

	essayTemplate = template.Must(template.New("essay").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>Nova redação enviada</h2>
  <p><strong>{{.StudentName}}</strong> enviou uma redação para correção.</p>
  <p>Tema: <strong>{{.ThemeTitle}}</strong></p>
  <p>Acesse o painel de correções para assumir esta redação.</p>
</div>`))
)

// SendGridMailer implements Mailer on top of the SendGrid API
type SendGridMailer struct {
	client          *sendgrid.Client
	fromEmail       string
	fromName        string
	resetTemplateID string
	logger          *logger.Logger
}

// LogMailer implements Mailer by logging instead of sending, used when no
// SendGrid key is configured (local development).
type LogMailer struct {
	logger *logger.Logger
}

// NewMailer returns a SendGrid-backed mailer, or the logging fallback when
// the API key is unset.
func NewMailer(cfg config.MailConfig, log *logger.Logger) Mailer {
	if cfg.SendGridAPIKey == "" {
		log.Warn("SENDGRID_API_KEY not set, emails will be logged only")
		return &LogMailer{logger: log}
	}
	return &SendGridMailer{
		client:          sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail:       cfg.FromEmail,
		fromName:        cfg.FromName,
		resetTemplateID: cfg.ResetTemplateID,
		logger:          log,
	}
}

// SendPasswordReset emails the reset link to a single user. When a SendGrid
// dynamic template is configured the message renders server-side; otherwise
// the inline template is used.
func (m *SendGridMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	var err error
	if m.resetTemplateID != "" {
		err = m.sendMessage(ctx, m.buildResetTemplateMessage(to, resetLink))
	} else {
		var body bytes.Buffer
		if terr := resetTemplate.Execute(&body, map[string]string{"Link": resetLink}); terr != nil {
			return errors.MailError(terr)
		}
		err = m.send(ctx, to, "Redefinição de senha - Mestre da Redação", body.String())
	}
	if err != nil {
		metrics.RecordMailSent("password_reset", "error")
		return err
	}

	metrics.RecordMailSent("password_reset", "sent")
	m.logger.WithFields(map[string]interface{}{
		"to": to,
	}).Info("Password reset email sent")
	return nil
}

// SendEssayNotification alerts professors about a new submission
func (m *SendGridMailer) SendEssayNotification(ctx context.Context, professorEmails []string, studentName, themeTitle string) error {
	if len(professorEmails) == 0 {
		return errors.BadRequest("No professor emails to notify")
	}

	var body bytes.Buffer
	err := essayTemplate.Execute(&body, map[string]string{
		"StudentName": studentName,
		"ThemeTitle":  themeTitle,
	})
	if err != nil {
		return errors.MailError(err)
	}

	subject := fmt.Sprintf("Nova redação de %s", studentName)
	for _, addr := range professorEmails {
		if err := m.send(ctx, addr, subject, body.String()); err != nil {
			metrics.RecordMailSent("essay_notification", "error")
			return err
		}
	}

	metrics.RecordMailSent("essay_notification", "sent")
	m.logger.WithFields(map[string]interface{}{
		"professors": len(professorEmails),
		"student":    studentName,
	}).Info("Essay notification sent")
	return nil
}

// buildResetTemplateMessage assembles the dynamic-template message; the
// template receives the reset link as "resetLink".
func (m *SendGridMailer) buildResetTemplateMessage(to, resetLink string) *mail.SGMailV3 {
	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail(m.fromName, m.fromEmail))
	msg.SetTemplateID(m.resetTemplateID)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", to))
	p.SetDynamicTemplateData("resetLink", resetLink)
	msg.AddPersonalizations(p)

	return msg
}

func (m *SendGridMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	msg := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), stripTags(htmlBody), htmlBody)
	return m.sendMessage(ctx, msg)
}

func (m *SendGridMailer) sendMessage(ctx context.Context, msg *mail.SGMailV3) error {
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return errors.MailError(err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return errors.MailError(fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body))
	}
	return nil
}

// stripTags produces a rough plaintext alternative from the HTML body
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// SendPasswordReset logs the reset link instead of emailing it
func (m *LogMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	m.logger.WithFields(map[string]interface{}{
		"to":   to,
		"link": resetLink,
	}).Info("Password reset email (log only)")
	metrics.RecordMailSent("password_reset", "logged")
	return nil
}

// SendEssayNotification logs the alert instead of emailing it
func (m *LogMailer) SendEssayNotification(ctx context.Context, professorEmails []string, studentName, themeTitle string) error {
	m.logger.WithFields(map[string]interface{}{
		"professors": professorEmails,
		"student":    studentName,
		"theme":      themeTitle,
	}).Info("Essay notification email (log only)")
	metrics.RecordMailSent("essay_notification", "logged")
	return nil
}
