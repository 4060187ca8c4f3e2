package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InviteEmailData holds data for an invite email.
type InviteEmailData struct {
	Email         string
	ChannelID     string
	InviteLink    string
	InviterID     string
	CustomMessage string
	ExpiresAt     string // formatted, empty if the invite never expires
}

// DecisionEmailData holds data for a membership decision notice.
type DecisionEmailData struct {
	Email           string
	Username        string
	ChannelID       string
	RejectionReason string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	// SendInviteEmails sends the invite link to each address. Per-address
	// failures are collected, not fatal.
	SendInviteEmails(ctx context.Context, invite *Invite, link string, emails []string) (sent int, failed []string, err error)
	// SendDecisionNotice informs the requester of the approval outcome.
	SendDecisionNotice(ctx context.Context, req *MembershipRequest) error
}
