// Package notify turns the watcher's signal file into outbound email
// alerts.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/smtp"
	"os"
	"strings"
	"time"

	"camwatch/lib/courier"
	"camwatch/lib/registry"
	"camwatch/lib/telemetry"
	"camwatch/lib/timezone"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("camwatch.services.notify")

var ErrNoRecipients = errors.New("no notification recipients are configured")
var ErrNoChannel = errors.New("no notification channel is configured")

type SmtpConfig struct {
	Server       string
	Port         int
	EmailAddress string
	Password     string
}

type Options struct {
	SignalFile string
	// the listing page the alert links back to
	ListingUrl string
	Recipients []string
	// preferred when configured
	Courier *courier.Client
	// fallback channel when Courier isn't set up
	Smtp SmtpConfig
}

type Service struct {
	signalFile string
	listingUrl string
	recipients []string
	courier    *courier.Client
	smtp       SmtpConfig
}

func NewService(opts Options) Service {
	return Service{
		signalFile: opts.SignalFile,
		listingUrl: opts.ListingUrl,
		recipients: opts.Recipients,
		courier:    opts.Courier,
		smtp:       opts.Smtp,
	}
}

// SplitRecipients parses the comma-separated recipient list the way it
// arrives from the environment.
func SplitRecipients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Run reads the signal file and attempts one alert per recipient when
// it names anything. An empty or absent file means the last run found
// nothing, so no messages go out. The file is consumed only after
// every recipient got their alert, a partial failure keeps it around
// for the next attempt.
func (s Service) Run(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	names, err := registry.ReadSignalFile(s.signalFile)
	if os.IsNotExist(err) {
		slog.DebugContext(ctx, "no signal file yet, nothing to announce", "path", s.signalFile)
		return 0, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read signal file")
		return 0, err
	}
	if len(names) == 0 {
		slog.DebugContext(ctx, "no new cameras to announce")
		return 0, nil
	}

	if len(s.recipients) == 0 {
		span.SetStatus(codes.Error, "no recipients configured")
		return 0, ErrNoRecipients
	}
	if s.courier == nil && s.smtp.Server == "" {
		span.SetStatus(codes.Error, "no channel configured")
		return 0, ErrNoChannel
	}

	subject := subjectLine(len(names))
	body := bodyHtml(names, s.listingUrl, timezone.Now())

	var errs []error
	sent := 0
	for _, to := range s.recipients {
		to = strings.TrimSpace(to)
		if to == "" {
			continue
		}
		err := s.send(ctx, to, subject, body)
		if err != nil {
			slog.ErrorContext(ctx, "failed to send alert", "recipient", to, "err", err)
			errs = append(errs, fmt.Errorf("send to %s: %w", to, err))
			continue
		}
		sent++
	}

	span.SetAttributes(
		attribute.Int("new_cameras", len(names)),
		attribute.Int("sent", sent),
	)
	if err := errors.Join(errs...); err != nil {
		span.SetStatus(codes.Error, "some alerts failed")
		return sent, err
	}

	err = registry.ConsumeSignalFile(s.signalFile)
	if err != nil {
		slog.WarnContext(ctx, "failed to consume signal file", "err", err)
	}
	return sent, nil
}

func (s Service) send(ctx context.Context, to, subject, body string) error {
	if s.courier != nil {
		requestId, err := s.courier.SendEmail(ctx, to, subject, body)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "email queued", "recipient", to, "request_id", requestId)
		return nil
	}
	return s.sendSmtp(ctx, to, subject, body)
}

func (s Service) sendSmtp(ctx context.Context, to, subject, body string) error {
	ctx, span := tracer.Start(ctx, "sendSmtp")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Camwatch <%s>", s.smtp.EmailAddress)
	mail.To = []string{to}
	mail.Subject = subject
	mail.HTML = []byte(body)

	addr := fmt.Sprintf("%s:%d", s.smtp.Server, s.smtp.Port)
	err := mail.Send(addr, smtp.PlainAuth("", s.smtp.EmailAddress, s.smtp.Password, s.smtp.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	slog.InfoContext(ctx, "email sent", "recipient", to)
	return nil
}

func subjectLine(count int) string {
	return fmt.Sprintf("🎥 %d New Camera(s) Found on B&H Photo!", count)
}

func bodyHtml(names []string, listingUrl string, now time.Time) string {
	var list strings.Builder
	list.WriteString("<ul>")
	for _, name := range names {
		list.WriteString("<li>")
		list.WriteString(html.EscapeString(name))
		list.WriteString("</li>")
	}
	list.WriteString("</ul>")

	title := "New Camera Alert - " + now.Format("January 02, 2006")

	return fmt.Sprintf(`<h2>%s</h2>
<p>The following new camera models have been detected on B&H Photo:</p>
%s
<p><a href="%s">View on B&H Photo</a></p>
<hr>
<p style="font-size: 12px; color: #666;">This is an automated notification from your B&H Camera Monitor</p>`,
		title, list.String(), listingUrl)
}
