// Package email sends transactional mail over plain SMTP. Mail is optional;
// when SMTP is not configured the service runs without it.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/formloom/formloom-backend/internal/config"
)

type Service struct {
	host        string
	port        int
	username    string
	password    string
	from        string
	frontendURL string
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.SMTPUser,
		password:    cfg.SMTPPassword,
		from:        cfg.SMTPFrom,
		frontendURL: cfg.FrontendURL,
	}
}

func (s *Service) Enabled() bool {
	return s.host != "" && s.from != ""
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>You've been invited to {{.WorkspaceName}}</h2>
	<p>{{.InviterName}} invited you to join the workspace <strong>{{.WorkspaceName}}</strong> as <strong>{{.Role}}</strong>.</p>
	<p><a href="{{.InviteURL}}" style="background: #4f46e5; color: #fff; padding: 10px 18px; border-radius: 6px; text-decoration: none;">View invitation</a></p>
	<p style="color: #777; font-size: 13px;">This invitation expires in 7 days. If you weren't expecting it you can ignore this email.</p>
</body>
</html>
`))

func (s *Service) SendInvitation(to, inviterName, workspaceName, role, token string) error {
	if !s.Enabled() {
		return nil
	}

	data := struct {
		InviterName   string
		WorkspaceName string
		Role          string
		InviteURL     string
	}{
		InviterName:   inviterName,
		WorkspaceName: workspaceName,
		Role:          role,
		InviteURL:     fmt.Sprintf("%s/invitations?token=%s", s.frontendURL, token),
	}

	var body bytes.Buffer
	if err := invitationTemplate.Execute(&body, data); err != nil {
		return err
	}

	subject := fmt.Sprintf("Invitation to join %s", workspaceName)
	return s.send(to, subject, body.String())
}

func (s *Service) send(to, subject, htmlBody string) error {
	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg.Bytes())
}
