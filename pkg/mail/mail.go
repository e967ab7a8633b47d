package mail

import (
	"context"
	"crypto/tls"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/telekom/geomail/pkg/config"
	"github.com/telekom/geomail/pkg/metrics"
)

// Envelope is a fully assembled message handed to a Sender.
type Envelope struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers a single envelope. Implementations report delivery
// failures as errors and never retry on their own.
type Sender interface {
	Send(ctx context.Context, env Envelope) error
	GetHost() string
	GetPort() int
}

type sender struct {
	dialer     *gomail.Dialer
	senderName string
	log        *zap.SugaredLogger
}

func NewSender(cfg config.Mail, log *zap.SugaredLogger) Sender {
	log = log.Named("mail")
	log.Infow("Initializing mail sender", "host", cfg.Host, "port", cfg.Port, "user", cfg.User)
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	if cfg.InsecureSkipVerify {
		log.Warn("InsecureSkipVerify is enabled for mail TLS connection")
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- explicit opt-in for internal relays
	}
	return &sender{
		dialer:     d,
		senderName: cfg.SenderName,
		log:        log,
	}
}

// Send dials the SMTP server and delivers env exactly once. The context is
// only checked before dialing; gomail has no cancellation hook.
func (s *sender) Send(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	if s.senderName != "" {
		msg.SetAddressHeader("From", env.From, s.senderName)
	} else {
		msg.SetHeader("From", env.From)
	}
	msg.SetHeader("To", env.To)
	msg.SetHeader("Subject", env.Subject)
	msg.SetBody("text/html", env.HTMLBody)

	start := time.Now()
	err := s.dialer.DialAndSend(msg)
	metrics.MailSendDuration.WithLabelValues(s.GetHost()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Errorw("Failed to send mail", "to", env.To, "subject", env.Subject, "error", err)
		metrics.MailSendFailure.WithLabelValues(s.GetHost()).Inc()
		return err
	}

	s.log.Debugw("Mail sent", "to", env.To, "subject", env.Subject)
	metrics.MailSendSuccess.WithLabelValues(s.GetHost()).Inc()
	return nil
}

func (s *sender) GetHost() string {
	return s.dialer.Host
}

func (s *sender) GetPort() int {
	return s.dialer.Port
}
