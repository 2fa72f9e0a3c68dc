// Copyright (c) 2026 Corkboard. All rights reserved.

/*
Package mail provides outbound transactional email delivery.

It wraps the Resend API behind the narrow [auth.Mailer]-shaped contract the
domain layer needs: one HTML message to one recipient. Delivery policy
(retries, suppression, bounce handling) stays on the provider side.
*/
package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Resend sends HTML email through the Resend HTTP API.
type Resend struct {
	client *resend.Client
	from   string
}

// NewResend constructs a Resend-backed mailer.
//
// # Parameters
//   - apiKey: Resend API key.
//   - from: Sender identity, e.g. "Corkboard <no-reply@corkboard.app>".
func NewResend(apiKey, from string) *Resend {
	return &Resend{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

/*
Send delivers a single HTML email.

Parameters:
  - ctx: context.Context
  - to: Recipient address
  - subject: Message subject line
  - html: HTML body

Returns:
  - error: Provider or transport failures
*/
func (mailer *Resend) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    mailer.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	if _, err := mailer.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("mail_send_failed: %w", err)
	}

	return nil
}
