package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RetirementReceipt is what the holder sees in the retirement email.
type RetirementReceipt struct {
	CertificateNumber string
	ProjectName       string
	ProjectID         uint64
	Amount            int64
	Reason            string
	RetiredAt         time.Time
}

// Sender sends transactional emails. Nil = no-op.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, displayName string) error
	SendRetirementReceipt(ctx context.Context, toEmail, displayName string, r RetirementReceipt) error
}

// BrevoClient sends emails via Brevo (Sendinblue) API. Env: SENDINBLUE_API_KEY, MAIL_FROM.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Endpoint string // defaults to the Brevo v3 endpoint
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@carbon.exchange"
}

func (c *BrevoClient) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return brevoAPI
}

// send sends one email via Brevo API.
func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Carbon Exchange"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: "support@carbon.exchange", Name: "Carbon Exchange Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome sends the welcome email after account creation.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, displayName string) error {
	if c.APIKey == "" {
		return nil
	}
	if displayName == "" {
		displayName = "there"
	}
	return c.send(ctx, toEmail, "Welcome to Carbon Exchange", EmailLayout(welcomeContent(displayName)))
}

// SendRetirementReceipt confirms a retirement and carries its certificate number.
func (c *BrevoClient) SendRetirementReceipt(ctx context.Context, toEmail, displayName string, r RetirementReceipt) error {
	if c.APIKey == "" {
		return nil
	}
	if displayName == "" {
		displayName = "there"
	}
	subject := fmt.Sprintf("Retirement certificate %s", r.CertificateNumber)
	return c.send(ctx, toEmail, subject, EmailLayout(retirementContent(displayName, r)))
}

func welcomeContent(name string) string {
	return fmt.Sprintf(`
    <h1>Welcome, %s!</h1>
    <p>Your Carbon Exchange account is ready. You can now register offset projects, list credits for sale, buy credits from other holders and retire them as proof of offset.</p>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      If you did not sign up for this account, please contact our support team immediately.
    </p>
`, EscapeHTML(name))
}

func retirementContent(name string, r RetirementReceipt) string {
	return fmt.Sprintf(`
    <h1>Your credits have been retired</h1>
    <p>Hi %s, the following credits were permanently retired from your balance.</p>
    <table role="presentation" width="100%%">
      <tr><td><strong>Certificate</strong></td><td>%s</td></tr>
      <tr><td><strong>Project</strong></td><td>#%d %s</td></tr>
      <tr><td><strong>Credits</strong></td><td>%d</td></tr>
      <tr><td><strong>Reason</strong></td><td>%s</td></tr>
      <tr><td><strong>Retired at</strong></td><td>%s</td></tr>
    </table>
`, EscapeHTML(name), EscapeHTML(r.CertificateNumber), r.ProjectID, EscapeHTML(r.ProjectName),
		r.Amount, EscapeHTML(r.Reason), r.RetiredAt.UTC().Format(time.RFC1123))
}
