package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/labebook/backend/internal/config"
	"github.com/labebook/backend/pkg/logger"
)

// EmailService sends invitation notifications over SMTP. When SMTP is
// disabled the service silently drops mail, so the invitation flow works
// unchanged in local setups.
type EmailService struct {
	cfg *config.SMTPConfig
}

func NewEmailService(cfg *config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// ProcessInvitationTask satisfies the task queue processor signature. It
// is wired into the SyncQueue or the asynq worker at bootstrap.
func (s *EmailService) ProcessInvitationTask(ctx context.Context, task *InvitationEmailTask) error {
	if !s.cfg.Enabled || s.cfg.Host == "" {
		logger.Debug().Str("email", task.InvitedEmail).Msg("smtp disabled, invitation mail skipped")
		return nil
	}

	subject := fmt.Sprintf("[Labebook] You are invited to join %s", task.TeamName)
	if task.Resend {
		subject = fmt.Sprintf("[Labebook] Reminder: invitation to join %s", task.TeamName)
	}

	body := s.buildInvitationBody(task)
	return s.send([]string{task.InvitedEmail}, subject, body)
}

func (s *EmailService) buildInvitationBody(task *InvitationEmailTask) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have been invited to join the team %q as %s.\r\n\r\n", task.TeamName, task.Role)
	if task.Message != "" {
		fmt.Fprintf(&b, "Message from the inviter:\r\n%s\r\n\r\n", task.Message)
	}
	fmt.Fprintf(&b, "Sign in with this email address to see the invitation (token %s).\r\n", task.Token)
	return b.String()
}

func (s *EmailService) send(recipients []string, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	msg := strings.Builder{}
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseTLS {
		return s.sendTLS(addr, auth, from, recipients, msg.String())
	}
	return smtp.SendMail(addr, auth, from, recipients, []byte(msg.String()))
}

// sendTLS handles servers that expect an implicit TLS connection (465)
// instead of STARTTLS.
func (s *EmailService) sendTLS(addr string, auth smtp.Auth, from string, recipients []string, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
