package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"newsjack/internal/core"

	"github.com/google/uuid"
)

// ErrNoRecipients is returned when a message has nobody to go to.
var ErrNoRecipients = errors.New("no email recipients configured")

// Message is a single HTML email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig configures an SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender sends mail through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now      func() time.Time
}

// NewSMTPSender returns a sender for cfg. Port defaults to 587.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail, now: time.Now}
}

// Send delivers msg. The SMTP exchange itself is not cancellable, so ctx is
// only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	body := BuildMIMEMessage(s.cfg.From, s.cfg.FromName, msg, s.now())
	if err := s.sendMail(addr, auth, s.cfg.From, msg.To, body); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", addr, err)
	}
	return nil
}

// BuildMIMEMessage renders headers and an HTML body as an RFC 5322 message.
func BuildMIMEMessage(from, fromName string, msg Message, date time.Time) []byte {
	var b bytes.Buffer

	sender := (&mail.Address{Name: fromName, Address: from}).String()
	domain := "newsjack.local"
	if _, host, ok := strings.Cut(from, "@"); ok && host != "" {
		domain = host
	}

	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domain)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	b.WriteString("\r\n")

	// Rendered paragraphs are single lines; SMTP caps lines at 998 bytes.
	qp := quotedprintable.NewWriter(&b)
	qp.Write([]byte(msg.HTML))
	qp.Close()
	return b.Bytes()
}

// Notifier emails review notices to the configured reviewers.
type Notifier struct {
	sender Sender
	to     []string
	theme  Theme
	log    *slog.Logger
}

// NewNotifier returns a Notifier that sends to the given reviewers.
func NewNotifier(sender Sender, to []string, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{sender: sender, to: to, theme: DefaultTheme(), log: log}
}

// NotifyReview renders and sends the review email.
func (n *Notifier) NotifyReview(ctx context.Context, notice core.ReviewNotice) error {
	if len(n.to) == 0 {
		return ErrNoRecipients
	}

	body, err := RenderReviewEmail(notice, n.theme)
	if err != nil {
		return err
	}

	msg := Message{To: n.to, Subject: ReviewSubject(notice.Story), HTML: body}
	if err := n.sender.Send(ctx, msg); err != nil {
		return err
	}

	n.log.Info("Review email sent", "story_id", notice.Story.ID, "recipients", len(n.to))
	return nil
}
