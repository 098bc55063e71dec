// Package notify delivers account emails: verification links and password
// reset links.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a message to its recipient.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var (
	verifyTemplate = template.Must(template.New("verifyEmail").Parse(
		`<p>Hello {{.Username}},</p>
<p>Confirm your email address to finish setting up your account.</p>
<p><a href="{{.Link}}">Verify your email</a></p>
<p>Or use this code: <strong>{{.Token}}</strong></p>`))

	resetTemplate = template.Must(template.New("resetPassword").Parse(
		`<p>Hello {{.Username}},</p>
<p>We received a request to reset your password.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>If you did not ask for this you can ignore this email.</p>`))
)

type templateData struct {
	Username string
	Token    string
	Link     string
}

// Mailer renders account emails and hands them to a Sender.
type Mailer struct {
	sender  Sender
	baseURL string
}

func NewMailer(sender Sender, baseURL string) *Mailer {
	return &Mailer{sender: sender, baseURL: strings.TrimRight(baseURL, "/")}
}

func (m *Mailer) SendVerification(ctx context.Context, email, username, token string) error {
	data := templateData{Username: username, Token: token, Link: m.link("/verify", email, token)}
	html, err := render(verifyTemplate, data)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, Message{
		To:      email,
		Subject: "Verify your email",
		Text:    fmt.Sprintf("Hello %s,\n\nVerify your email: %s\nCode: %s\n", username, data.Link, token),
		HTML:    html,
	})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email, username, token string) error {
	data := templateData{Username: username, Token: token, Link: m.link("/reset-password", email, token)}
	html, err := render(resetTemplate, data)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, Message{
		To:      email,
		Subject: "Reset your password",
		Text:    fmt.Sprintf("Hello %s,\n\nReset your password: %s\nCode: %s\n", username, data.Link, token),
		HTML:    html,
	})
}

func (m *Mailer) link(path, email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return m.baseURL + path + "?" + q.Encode()
}

func render(t *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
