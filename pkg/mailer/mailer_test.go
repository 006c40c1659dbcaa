package mailer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *recordingSender) Send(ctx context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.sent = append(s.sent, to)
	return s.err
}

func TestNew(t *testing.T) {
	t.Parallel()
	cfg := config.NewForTest()
	_, ok := New(cfg).(*LogSender)
	assert.True(t, ok)

	cfg.SMTPHost = "smtp.example.com"
	_, ok = New(cfg).(*SMTPSender)
	assert.True(t, ok)
}

func TestNotify_OutlivesRequestContext(t *testing.T) {
	t.Parallel()
	sender := &recordingSender{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := Notify(ctx, sender, "a@example.com", "hi", "<p>hi</p>")
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notify did not finish")
	}
	assert.Equal(t, []string{"a@example.com"}, sender.sent)
}

func TestNotify_SwallowsFailure(t *testing.T) {
	t.Parallel()
	sender := &recordingSender{err: errors.New("smtp down")}
	<-Notify(context.Background(), sender, "a@example.com", "hi", "")
	assert.Len(t, sender.sent, 1)
}

func TestLibrarianWelcome(t *testing.T) {
	t.Parallel()
	body, err := LibrarianWelcome{FirstName: "<Ann>", EmailCode: "123456"}.Render()
	require.NoError(t, err)
	assert.Contains(t, body, "&lt;Ann&gt;")
	assert.Contains(t, body, "123456")
}
