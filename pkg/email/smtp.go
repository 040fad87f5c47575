package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"quiz-portal/config"
)

// Message is one outgoing email. Body is plain text unless HTML is set.
type Message struct {
	Subject    string
	Body       string
	From       string
	Recipients []string
	HTML       bool
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPClient struct {
	config   *config.SMTPConfig
	sendMail sendFunc
}

func NewSMTPClient(cfg *config.SMTPConfig) *SMTPClient {
	return &SMTPClient{
		config:   cfg,
		sendMail: smtp.SendMail,
	}
}

// Send delivers msg to all recipients in one SMTP transaction. A nil error
// means the server accepted the message for every recipient.
func (c *SMTPClient) Send(ctx context.Context, msg Message) error {
	if len(msg.Recipients) == 0 {
		return fmt.Errorf("failed to send email: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	from := msg.From
	if from == "" {
		from = c.config.From
	}

	var auth smtp.Auth
	if c.config.Username != "" || c.config.Password != "" {
		auth = smtp.PlainAuth("", c.config.Username, c.config.Password, c.config.Host)
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)

	if err := c.sendMail(addr, auth, from, msg.Recipients, c.buildMessage(from, msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (c *SMTPClient) buildMessage(from string, msg Message) []byte {
	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	return []byte(b.String())
}

const welcomeTemplate = `
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Welcome to the Quiz App</h2>
        <p>Welcome {{.Username}},</p>
        <p>You have successfully registered. Please log in to answer the questions.</p>
        <div class="footer">
            <p>This is an automated message.</p>
        </div>
    </div>
</body>
</html>
`

const newQuestionTemplate = `
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .highlight { color: #007bff; font-weight: bold; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h2>New Question Created</h2>
        <p>Welcome Candidate,</p>
        <p>A new question has been added: <span class="highlight">{{.Question}}</span></p>
        <p>Please log in to answer it.</p>
        <div class="footer">
            <p>This is an automated message.</p>
        </div>
    </div>
</body>
</html>
`

func (c *SMTPClient) SendWelcome(ctx context.Context, to, username string) error {
	body, err := render("welcome", welcomeTemplate, map[string]string{"Username": username})
	if err != nil {
		return err
	}

	return c.Send(ctx, Message{
		Subject:    "Welcome to the Quiz App",
		Body:       body,
		Recipients: []string{to},
		HTML:       true,
	})
}

func (c *SMTPClient) SendNewQuestion(ctx context.Context, recipients []string, question string) error {
	body, err := render("new_question", newQuestionTemplate, map[string]string{"Question": question})
	if err != nil {
		return err
	}

	return c.Send(ctx, Message{
		Subject:    "New Question Created",
		Body:       body,
		Recipients: recipients,
		HTML:       true,
	})
}

func render(name, tmpl string, data map[string]string) (string, error) {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return body.String(), nil
}
