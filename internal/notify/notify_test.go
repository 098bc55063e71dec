package notify

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func TestMailer_SendVerification(t *testing.T) {
	rec := &recordingSender{}
	m := NewMailer(rec, "https://app.example.com/")

	require.NoError(t, m.SendVerification(context.Background(), "bob+x@example.com", "bob+x", "tok-1"))
	require.Len(t, rec.sent, 1)

	msg := rec.sent[0]
	assert.Equal(t, "bob+x@example.com", msg.To)
	assert.Equal(t, "Verify your email", msg.Subject)
	assert.Contains(t, msg.HTML, "tok-1")
	assert.Contains(t, msg.Text, "https://app.example.com/verify?")

	i := strings.Index(msg.Text, "https://")
	link := strings.Fields(msg.Text[i:])[0]
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "bob+x@example.com", u.Query().Get("email"))
	assert.Equal(t, "tok-1", u.Query().Get("token"))
}

func TestMailer_EscapesHTML(t *testing.T) {
	rec := &recordingSender{}
	m := NewMailer(rec, "http://localhost")

	require.NoError(t, m.SendPasswordReset(context.Background(), "eve@example.com", "<script>", "t"))
	assert.Equal(t, "Reset your password", rec.sent[0].Subject)
	assert.NotContains(t, rec.sent[0].HTML, "<script>")
}

func TestMailer_PropagatesSenderError(t *testing.T) {
	rec := &recordingSender{err: errors.New("smtp down")}
	m := NewMailer(rec, "http://localhost")

	err := m.SendVerification(context.Background(), "a@example.com", "a", "t")
	require.EqualError(t, err, "smtp down")
}

func TestLogSender(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := NewLogSender(logger)

	require.NoError(t, s.Send(context.Background(), Message{To: "a@example.com", Subject: "hi", Text: "body"}))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "a@example.com", hook.LastEntry().Data["to"])
}
