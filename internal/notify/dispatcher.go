// Package notify renders matched-publication alerts and hands them to
// the configured transport. Each dispatch is independent: one failed
// subscriber or channel never affects another.
package notify

import (
	"context"
	"log/slog"
	"time"

	"MuralNotifier/internal/domain"
	"MuralNotifier/internal/ports"
	"MuralNotifier/pkg/apperrors"
)

// Deps wires the outbound gateways into the dispatcher.
type Deps struct {
	SMS             ports.SMSGateway
	Email           ports.EmailGateway
	Log             ports.NotificationLog
	DefaultTimezone string
	SendTimeout     time.Duration
	Logger          *slog.Logger
}

// Dispatcher selects the channel from the subscriber's contact method
// and delivers one rendered message per matched publication.
type Dispatcher struct {
	sms         ports.SMSGateway
	email       ports.EmailGateway
	log         ports.NotificationLog
	defaultLoc  *time.Location
	sendTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher resolves the default timezone once; an unknown name
// falls back to UTC.
func NewDispatcher(deps Deps) *Dispatcher {
	loc, err := time.LoadLocation(deps.DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	timeout := deps.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		sms:         deps.SMS,
		email:       deps.Email,
		log:         deps.Log,
		defaultLoc:  loc,
		sendTimeout: timeout,
		logger:      deps.Logger,
		now:         time.Now,
	}
}

// Dispatch renders the alert in the subscriber's local civil time and
// sends it over the preferred channel. Skips and transport failures
// are terminal results, never propagated errors.
func (d *Dispatcher) Dispatch(ctx context.Context, prefs domain.SubscriberPreferences, pub domain.Publication, matchedFields []string) domain.DispatchResult {
	detectedAt := d.now().In(d.location(prefs))
	data := buildMessageData(prefs, pub, matchedFields, detectedAt)
	text := renderText(data)

	result := d.send(ctx, prefs, text, data)
	d.record(ctx, prefs, pub, result)

	switch result.Status {
	case domain.DispatchSent:
		d.debug("notification sent", "subscriber", prefs.SubscriberID, "channel", prefs.ContactMethod, "publication", pub.Number)
	case domain.DispatchSkipped:
		d.debug("notification skipped", "subscriber", prefs.SubscriberID, "reason", result.Reason)
	case domain.DispatchFailed:
		if d.logger != nil {
			d.logger.Error("notification failed",
				"subscriber", prefs.SubscriberID,
				"channel", prefs.ContactMethod,
				"publication", pub.Number,
				"error", result.Err)
		}
	}

	return result
}

func (d *Dispatcher) send(ctx context.Context, prefs domain.SubscriberPreferences, text string, data messageData) domain.DispatchResult {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	switch prefs.ContactMethod {
	case domain.ContactSMS:
		if prefs.PhoneNumber == nil || *prefs.PhoneNumber == "" {
			return domain.DispatchResult{Status: domain.DispatchSkipped, Reason: "missing phone"}
		}
		if d.sms == nil {
			return domain.DispatchResult{Status: domain.DispatchSkipped, Reason: "sms gateway disabled"}
		}
		if err := d.sms.SendSMS(sendCtx, *prefs.PhoneNumber, text); err != nil {
			wrapped := apperrors.Wrap(err, apperrors.CodeTransport, "dispatch.sms", "send sms")
			return domain.DispatchResult{Status: domain.DispatchFailed, Err: wrapped}
		}
		return domain.DispatchResult{Status: domain.DispatchSent}

	case domain.ContactEmail:
		if prefs.EmailAddress == nil || *prefs.EmailAddress == "" {
			return domain.DispatchResult{Status: domain.DispatchSkipped, Reason: "missing address"}
		}
		if d.email == nil {
			return domain.DispatchResult{Status: domain.DispatchSkipped, Reason: "email gateway disabled"}
		}
		html, err := renderHTML(data)
		if err != nil {
			wrapped := apperrors.Wrap(err, apperrors.CodeTransport, "dispatch.email", "render message")
			return domain.DispatchResult{Status: domain.DispatchFailed, Err: wrapped}
		}
		if err := d.email.SendEmail(sendCtx, *prefs.EmailAddress, subjectLine, text, html); err != nil {
			wrapped := apperrors.Wrap(err, apperrors.CodeTransport, "dispatch.email", "send email")
			return domain.DispatchResult{Status: domain.DispatchFailed, Err: wrapped}
		}
		return domain.DispatchResult{Status: domain.DispatchSent}

	default:
		return domain.DispatchResult{Status: domain.DispatchSkipped, Reason: "unsupported channel"}
	}
}

// record persists the outcome for audit; failures only get logged.
func (d *Dispatcher) record(ctx context.Context, prefs domain.SubscriberPreferences, pub domain.Publication, result domain.DispatchResult) {
	if d.log == nil {
		return
	}

	detail := result.Reason
	if result.Err != nil {
		detail = result.Err.Error()
	}

	rec := domain.NotificationRecord{
		SubscriberID:      prefs.SubscriberID,
		PublicationNumber: pub.Number,
		Channel:           prefs.ContactMethod,
		Status:            result.Status,
		Detail:            detail,
	}
	if err := d.log.Record(ctx, rec); err != nil && d.logger != nil {
		d.logger.Warn("notification log write failed", "subscriber", prefs.SubscriberID, "error", err)
	}
}

func (d *Dispatcher) location(prefs domain.SubscriberPreferences) *time.Location {
	if prefs.Timezone == nil || *prefs.Timezone == "" {
		return d.defaultLoc
	}
	loc, err := time.LoadLocation(*prefs.Timezone)
	if err != nil {
		d.debug("unknown subscriber timezone", "subscriber", prefs.SubscriberID, "timezone", *prefs.Timezone)
		return d.defaultLoc
	}
	return loc
}

func (d *Dispatcher) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
