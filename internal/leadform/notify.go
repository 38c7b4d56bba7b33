package leadform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"nexttripanywhere.com/web/internal/config"
)

const (
	formspreeBase         = "https://formspree.io/f/"
	defaultSubjectPrefix  = "New Travel Inquiry from"
	defaultRelayTimeout   = 8 * time.Second
	defaultFormspreeRetry = 2
)

// Notifier relays a lead to the agency.
type Notifier interface {
	Notify(ctx context.Context, lead Lead) error
	Name() string
}

// NewNotifier wires every configured relay. With nothing configured leads are only logged.
func NewNotifier(cfg config.LeadConfig, logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	var relays []Notifier
	if endpoint := formspreeEndpoint(cfg); endpoint != "" {
		relays = append(relays, NewFormspree(endpoint, cfg.SubjectPrefix, cfg.RelayTimeout))
	}
	if cfg.SMTP.Host != "" && cfg.NotifyAddress != "" {
		relays = append(relays, NewSMTP(cfg.SMTP, cfg.NotifyAddress, cfg.SubjectPrefix))
	}
	log := &LogNotifier{Logger: logger}
	if len(relays) == 0 {
		return log
	}
	return Fanout(append(relays, log)...)
}

func formspreeEndpoint(cfg config.LeadConfig) string {
	if u := strings.TrimSpace(cfg.FormspreeURL); u != "" {
		return u
	}
	if id := strings.TrimSpace(cfg.FormspreeID); id != "" {
		return formspreeBase + id
	}
	return ""
}

// Subject formats the notification subject line.
func Subject(prefix string, lead Lead) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultSubjectPrefix
	}
	return prefix + " " + lead.Name
}

// FormspreeNotifier posts leads to a Formspree form endpoint.
type FormspreeNotifier struct {
	client   *resty.Client
	endpoint string
	prefix   string
}

// NewFormspree returns a Formspree relay posting JSON to endpoint.
func NewFormspree(endpoint, subjectPrefix string, timeout time.Duration) *FormspreeNotifier {
	if timeout <= 0 {
		timeout = defaultRelayTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(defaultFormspreeRetry).
		SetRetryWaitTime(200*time.Millisecond).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	return &FormspreeNotifier{client: client, endpoint: endpoint, prefix: subjectPrefix}
}

func (n *FormspreeNotifier) Name() string { return "formspree" }

type formspreeError struct {
	Error  string `json:"error"`
	Errors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (n *FormspreeNotifier) Notify(ctx context.Context, lead Lead) error {
	payload := map[string]any{
		"reference":     lead.Reference,
		"name":          lead.Name,
		"email":         lead.Email,
		"phone":         lead.Phone,
		"tripType":      lead.TripType,
		"departureDate": lead.DepartureDate,
		"returnDate":    lead.ReturnDate,
		"budget":        lead.Budget,
		"message":       lead.Message,
		"source":        lead.Source,
		"timestamp":     lead.SubmittedAt.Format(time.RFC3339),
		"_subject":      Subject(n.prefix, lead),
		"_replyto":      lead.Email,
		"_template":     "table",
	}
	var failure formspreeError
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(&failure).
		Post(n.endpoint)
	if err != nil {
		return fmt.Errorf("leadform: formspree: %w", err)
	}
	if resp.IsError() {
		msg := failure.Error
		if msg == "" && len(failure.Errors) > 0 {
			msg = failure.Errors[0].Message
		}
		if msg == "" {
			msg = resp.Status()
		}
		return fmt.Errorf("leadform: formspree status %d: %s", resp.StatusCode(), msg)
	}
	return nil
}

// SMTPNotifier emails leads through an SMTP relay.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
	prefix string
}

// NewSMTP returns a mail relay for cfg, addressed to notify.
func NewSMTP(cfg config.SMTPConfig, notify, subjectPrefix string) *SMTPNotifier {
	from := cfg.From
	if from == "" {
		from = notify
	}
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
		to:     notify,
		prefix: subjectPrefix,
	}
}

func (n *SMTPNotifier) Name() string { return "smtp" }

func (n *SMTPNotifier) Notify(ctx context.Context, lead Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.dialer.DialAndSend(n.Message(lead)); err != nil {
		return fmt.Errorf("leadform: smtp: %w", err)
	}
	return nil
}

// Message builds the notification email for lead.
func (n *SMTPNotifier) Message(lead Lead) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", n.from, "Next Trip Anywhere")
	msg.SetHeader("To", n.to)
	msg.SetAddressHeader("Reply-To", lead.Email, lead.Name)
	msg.SetHeader("Subject", Subject(n.prefix, lead))
	msg.SetBody("text/plain", Summary(lead))
	return msg
}

// Summary renders lead as plain text, one field per line.
func Summary(lead Lead) string {
	var b strings.Builder
	line := func(label, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, v)
		}
	}
	line("Reference", lead.Reference)
	line("Name", lead.Name)
	line("Email", lead.Email)
	line("Phone", lead.Phone)
	line("Trip type", lead.TripType)
	line("Departure", lead.DepartureDate)
	line("Return", lead.ReturnDate)
	line("Budget", lead.Budget)
	line("Source", lead.Source)
	line("Submitted", lead.SubmittedAt.Format(time.RFC3339))
	if lead.Message != "" {
		b.WriteString("\n" + lead.Message + "\n")
	}
	return b.String()
}

// LogNotifier writes leads to the structured log. Contact details are omitted.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(_ context.Context, lead Lead) error {
	n.Logger.Info("lead received",
		zap.String("reference", lead.Reference),
		zap.String("tripType", lead.TripType),
		zap.String("source", lead.Source),
		zap.Bool("hasMessage", lead.Message != ""),
	)
	return nil
}

type fanout []Notifier

// Fanout notifies every relay and joins their errors.
func Fanout(notifiers ...Notifier) Notifier {
	return fanout(notifiers)
}

func (f fanout) Name() string {
	names := make([]string, len(f))
	for i, n := range f {
		names[i] = n.Name()
	}
	return strings.Join(names, "+")
}

func (f fanout) Notify(ctx context.Context, lead Lead) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, lead); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
