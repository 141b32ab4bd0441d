package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	mu    sync.Mutex
	errs  []error // по одной ошибке на вызов; после исчерпания — успех
	delay time.Duration
	calls int
	to    []string
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.calls
	f.calls++
	for _, msg := range m {
		f.to = append(f.to, msg.GetHeader("To")...)
	}
	if idx < len(f.errs) {
		return f.errs[idx]
	}
	return nil
}

func (f *fakeSender) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestVerificationTemplateContainsAllCodes(t *testing.T) {
	codes := []string{"482913", "120045", "998877", "310200"}
	body, err := render(verificationTmpl, struct {
		Name    string
		Correct string
		Codes   []string
		Minutes int
	}{"Hana", "998877", codes, 5})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, c := range codes {
		if !strings.Contains(body, c) {
			t.Errorf("body missing code %s", c)
		}
	}
	if !strings.Contains(body, "482913, 120045, 998877, 310200") {
		t.Errorf("codes should be listed comma separated")
	}
	if !strings.Contains(body, "Hello Hana") || !strings.Contains(body, "5 minutes") {
		t.Errorf("body missing greeting or expiry: %s", body)
	}
}

func TestVerificationTemplateEscapesName(t *testing.T) {
	body, err := render(verificationTmpl, struct {
		Name    string
		Correct string
		Codes   []string
		Minutes int
	}{"<script>x</script>", "123456", []string{"123456"}, 5})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Error("name must be html-escaped")
	}
}

func TestSendRetriesTransientFailures(t *testing.T) {
	sender := &fakeSender{errs: []error{errors.New("421 try later"), errors.New("421 try later")}}
	svc := NewEmailServiceWithSender(sender, "noreply@samurai.test", "SAMURAI", SendPolicy{
		Timeout:     time.Second,
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	}, zaptest.NewLogger(t))

	err := svc.SendVerificationCode(context.Background(), "a@x.com", "A", "123456", []string{"123456"}, 5*time.Minute)
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if sender.Calls() != 3 {
		t.Errorf("expected 3 attempts, got %d", sender.Calls())
	}
	if len(sender.to) == 0 || sender.to[0] != "a@x.com" {
		t.Errorf("unexpected recipients %v", sender.to)
	}
}

func TestSendGivesUpAfterMaxAttempts(t *testing.T) {
	boom := errors.New("535 auth failed")
	sender := &fakeSender{errs: []error{boom, boom, boom, boom}}
	svc := NewEmailServiceWithSender(sender, "noreply@samurai.test", "SAMURAI", SendPolicy{
		MaxAttempts: 2,
		Backoff:     time.Millisecond,
	}, zaptest.NewLogger(t))

	err := svc.SendWelcomeEmail(context.Background(), "a@x.com", "A")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if sender.Calls() != 2 {
		t.Errorf("expected 2 attempts, got %d", sender.Calls())
	}
}

func TestSendAttemptTimeout(t *testing.T) {
	sender := &fakeSender{delay: 200 * time.Millisecond}
	svc := NewEmailServiceWithSender(sender, "noreply@samurai.test", "SAMURAI", SendPolicy{
		Timeout:     10 * time.Millisecond,
		MaxAttempts: 1,
	}, zaptest.NewLogger(t))

	start := time.Now()
	err := svc.SendPasswordResetEmail(context.Background(), "a@x.com", "http://x/reset?token=t", time.Hour)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Errorf("send did not honour timeout, took %s", time.Since(start))
	}
}

func TestSendStopsOnCanceledContext(t *testing.T) {
	sender := &fakeSender{errs: []error{errors.New("fail"), errors.New("fail"), errors.New("fail")}}
	svc := NewEmailServiceWithSender(sender, "noreply@samurai.test", "SAMURAI", SendPolicy{
		MaxAttempts: 3,
		Backoff:     time.Hour,
	}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := svc.SendWelcomeEmail(ctx, "a@x.com", "A")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if sender.Calls() != 1 {
		t.Errorf("expected a single attempt before cancel, got %d", sender.Calls())
	}
}
