package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"MuralNotifier/internal/domain"
	"MuralNotifier/pkg/apperrors"
)

type fakeSMS struct {
	sent []string
	to   []string
	err  error
}

func (f *fakeSMS) SendSMS(_ context.Context, phoneNumber, text string) error {
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, phoneNumber)
	f.sent = append(f.sent, text)
	return nil
}

type fakeEmail struct {
	address string
	subject string
	text    string
	html    string
	err     error
}

func (f *fakeEmail) SendEmail(_ context.Context, address, subject, textBody, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.address = address
	f.subject = subject
	f.text = textBody
	f.html = htmlBody
	return nil
}

type fakeLog struct {
	records []domain.NotificationRecord
	err     error
}

func (f *fakeLog) Record(_ context.Context, rec domain.NotificationRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func strptr(s string) *string { return &s }

func testPublication() domain.Publication {
	return domain.Publication{
		Number:       456,
		Date:         "2026-08-30",
		BodyText:     "Processo julgado",
		DecisionType: strptr("Sentenca"),
	}
}

func fixedDispatcher(deps Deps) *Dispatcher {
	d := NewDispatcher(deps)
	d.now = func() time.Time {
		return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	}
	return d
}

func TestDispatchSMS(t *testing.T) {
	t.Parallel()

	sms := &fakeSMS{}
	log := &fakeLog{}
	d := fixedDispatcher(Deps{SMS: sms, Log: log, DefaultTimezone: "UTC"})

	prefs := domain.SubscriberPreferences{
		SubscriberID:  "u1",
		DisplayName:   strptr("Ana"),
		ContactMethod: domain.ContactSMS,
		PhoneNumber:   strptr("+5511999990000"),
	}

	result := d.Dispatch(context.Background(), prefs, testPublication(), []string{`Keyword: "julgado"`})
	if result.Status != domain.DispatchSent {
		t.Fatalf("status = %s, want sent", result.Status)
	}
	if len(sms.sent) != 1 || sms.to[0] != "+5511999990000" {
		t.Fatalf("unexpected sms delivery: %v", sms.to)
	}

	body := sms.sent[0]
	for _, want := range []string{
		"Hello Ana!",
		"Publication Number: 456",
		"Date: 2026-08-30",
		"Decision Type: Sentenca",
		"Content: Processo julgado",
		`- Keyword: "julgado"`,
		"30/08/2026 12:00:00",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("message missing %q:\n%s", want, body)
		}
	}

	if len(log.records) != 1 || log.records[0].Status != domain.DispatchSent {
		t.Fatalf("notification log not written: %+v", log.records)
	}
}

func TestDispatchEmail(t *testing.T) {
	t.Parallel()

	email := &fakeEmail{}
	d := fixedDispatcher(Deps{Email: email, DefaultTimezone: "UTC"})

	prefs := domain.SubscriberPreferences{
		SubscriberID:  "u2",
		ContactMethod: domain.ContactEmail,
		EmailAddress:  strptr("ana@example.com"),
	}

	result := d.Dispatch(context.Background(), prefs, testPublication(), []string{`Client Name: "empresa x"`})
	if result.Status != domain.DispatchSent {
		t.Fatalf("status = %s, want sent", result.Status)
	}
	if email.address != "ana@example.com" || email.subject != subjectLine {
		t.Fatalf("unexpected email header: %s %s", email.address, email.subject)
	}
	if !strings.Contains(email.text, "Hello Subscriber!") {
		t.Fatalf("text body missing placeholder name:\n%s", email.text)
	}
	if !strings.Contains(email.html, "<li>Client Name: &#34;empresa x&#34;</li>") {
		t.Fatalf("html body missing matched field:\n%s", email.html)
	}
}

func TestDispatchSkips(t *testing.T) {
	t.Parallel()

	d := fixedDispatcher(Deps{SMS: &fakeSMS{}, Email: &fakeEmail{}, DefaultTimezone: "UTC"})

	cases := []struct {
		name   string
		prefs  domain.SubscriberPreferences
		reason string
	}{
		{"sms without phone", domain.SubscriberPreferences{ContactMethod: domain.ContactSMS}, "missing phone"},
		{"email without address", domain.SubscriberPreferences{ContactMethod: domain.ContactEmail}, "missing address"},
		{"unknown channel", domain.SubscriberPreferences{ContactMethod: "pager"}, "unsupported channel"},
	}

	for _, tc := range cases {
		result := d.Dispatch(context.Background(), tc.prefs, testPublication(), nil)
		if result.Status != domain.DispatchSkipped {
			t.Fatalf("%s: status = %s, want skipped", tc.name, result.Status)
		}
		if result.Reason != tc.reason {
			t.Fatalf("%s: reason = %q, want %q", tc.name, result.Reason, tc.reason)
		}
	}
}

func TestDispatchTransportFailure(t *testing.T) {
	t.Parallel()

	sms := &fakeSMS{err: errors.New("network down")}
	log := &fakeLog{}
	d := fixedDispatcher(Deps{SMS: sms, Log: log, DefaultTimezone: "UTC"})

	prefs := domain.SubscriberPreferences{
		SubscriberID:  "u3",
		ContactMethod: domain.ContactSMS,
		PhoneNumber:   strptr("+5511988887777"),
	}

	result := d.Dispatch(context.Background(), prefs, testPublication(), nil)
	if result.Status != domain.DispatchFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if !apperrors.Is(result.Err, apperrors.CodeTransport) {
		t.Fatalf("error not classified as transport: %v", result.Err)
	}
	if len(log.records) != 1 || log.records[0].Status != domain.DispatchFailed {
		t.Fatalf("failed dispatch not logged: %+v", log.records)
	}
}

func TestDispatchLogFailureDoesNotFailDispatch(t *testing.T) {
	t.Parallel()

	d := fixedDispatcher(Deps{SMS: &fakeSMS{}, Log: &fakeLog{err: errors.New("db gone")}, DefaultTimezone: "UTC"})

	prefs := domain.SubscriberPreferences{
		SubscriberID:  "u4",
		ContactMethod: domain.ContactSMS,
		PhoneNumber:   strptr("+5511977776666"),
	}

	if result := d.Dispatch(context.Background(), prefs, testPublication(), nil); result.Status != domain.DispatchSent {
		t.Fatalf("status = %s, want sent despite log failure", result.Status)
	}
}

func TestDispatchSubscriberTimezone(t *testing.T) {
	t.Parallel()

	sms := &fakeSMS{}
	d := fixedDispatcher(Deps{SMS: sms, DefaultTimezone: "UTC"})

	prefs := domain.SubscriberPreferences{
		SubscriberID:  "u5",
		ContactMethod: domain.ContactSMS,
		PhoneNumber:   strptr("+5511966665555"),
		Timezone:      strptr("America/Sao_Paulo"),
	}

	if result := d.Dispatch(context.Background(), prefs, testPublication(), nil); result.Status != domain.DispatchSent {
		t.Fatalf("status = %s, want sent", result.Status)
	}
	// 12:00 UTC is 09:00 in Sao Paulo (UTC-3).
	if !strings.Contains(sms.sent[0], "30/08/2026 09:00:00") {
		t.Fatalf("timestamp not in subscriber local time:\n%s", sms.sent[0])
	}
}
