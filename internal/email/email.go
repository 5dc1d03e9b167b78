package email

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/smtp"
	"text/template"

	"github.com/coverwing/membership/config"
	"github.com/coverwing/membership/internal/kafka"
)

type Sender struct {
	cfg config.SMTPConfig
}

func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

var followupTmpl = template.Must(template.New("followup").Parse(`Hi {{.Name}},

You started a membership quote with us but didn't finish. Your quote is
saved — pick up where you left off whenever you're ready.

The Coverwing team`))

var confirmedTmpl = template.Must(template.New("confirmed").Parse(`Hi {{.Name}},

Your membership is active. Your certificate is below.

{{.Document}}

The Coverwing team`))

// Send dispatches the transactional mail matching a notification event.
// Unknown event types are skipped so producers can add event kinds without
// breaking the worker.
func (s *Sender) Send(ctx context.Context, event kafka.MembershipEvent) error {
	var subject string
	var tmpl *template.Template
	switch event.Type {
	case "membership_followup":
		subject = "Your membership quote is waiting"
		tmpl = followupTmpl
	case "membership_confirmed":
		subject = "Welcome to Coverwing — your membership certificate"
		tmpl = confirmedTmpl
	default:
		log.Printf("email: skipping event type %s", event.Type)
		return nil
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, event); err != nil {
		return err
	}
	if err := s.send(event.Email, subject, body.String()); err != nil {
		return err
	}
	log.Printf("[EMAIL] %s sent to %s for membership %s", event.Type, event.Email, event.MembershipID)
	return nil
}

func (s *Sender) send(to, subject, body string) error {
	if s.cfg.Host == "" || s.cfg.User == "" || s.cfg.Password == "" || s.cfg.From == "" {
		return fmt.Errorf("smtp configuration missing")
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.cfg.From, to, subject, body))
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg)
}
