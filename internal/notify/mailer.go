// Package notify sends registration confirmation emails. Delivery is
// best-effort: the caller logs failures and never retries synchronously.
package notify

import (
	"fmt"
	"net/smtp"

	"registration-service/internal/models"
)

// SMTPServerConfig holds the configuration for connecting to an SMTP server.
type SMTPServerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// Mailer sends confirmation emails over SMTP.
type Mailer struct {
	config SMTPServerConfig
	auth   smtp.Auth
}

// NewMailer creates a new confirmation mailer.
func NewMailer(config SMTPServerConfig) *Mailer {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)
	return &Mailer{config: config, auth: auth}
}

// SendRegistrationConfirmation emails one participant their ticket details.
func (m *Mailer) SendRegistrationConfirmation(event *models.TicketIssuedEvent) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	subject := fmt.Sprintf("Your entry for %s is confirmed", event.EventName)

	body := fmt.Sprintf(
		"Hi %s,\n\nYour entry for %s (%s) is confirmed.\n\nOrder reference: %s\nTicket number: %d\nAmount: R%s\n\nSee you at the start line!\n%s",
		event.ParticipantName,
		event.EventName,
		event.DistanceName,
		event.OrderReference,
		event.TicketID,
		event.Amount,
		event.OrganiserName,
	)

	message := []byte(
		"To: " + event.ParticipantEmail + "\r\n" +
			"From: " + m.config.Sender + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"\r\n" +
			body + "\r\n")

	err := smtp.SendMail(addr, m.auth, m.config.Sender, []string{event.ParticipantEmail}, message)
	if err != nil {
		return fmt.Errorf("smtp error: %w", err)
	}

	return nil
}
