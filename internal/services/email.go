package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"channelinvites/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService creates an EmailService over the given mailer and template
// renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{
		mailer:   mailer,
		renderer: renderer,
	}
}

func (s *emailService) SendInviteEmails(ctx context.Context, invite *domain.Invite, link string, emails []string) (sent int, failed []string, err error) {
	for _, email := range emails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		if !emailRegexp.MatchString(email) {
			failed = append(failed, email)
			continue
		}
		data := &domain.InviteEmailData{
			Email:         email,
			ChannelID:     invite.ChannelID,
			InviteLink:    link,
			InviterID:     invite.CreatedBy,
			CustomMessage: invite.CustomMessage,
		}
		if invite.ExpiresAt != nil {
			data.ExpiresAt = invite.ExpiresAt.Format(time.RFC1123)
		}
		if err := s.send(email, "invite", data); err != nil {
			failed = append(failed, email)
			continue
		}
		sent++
	}
	return sent, failed, nil
}

func (s *emailService) SendDecisionNotice(ctx context.Context, req *domain.MembershipRequest) error {
	var template string
	switch req.Status {
	case domain.RequestStatusApproved:
		template = "request_approved"
	case domain.RequestStatusRejected:
		template = "request_rejected"
	default:
		return fmt.Errorf("no decision notice for status %q", req.Status)
	}
	data := &domain.DecisionEmailData{
		Email:           req.Email,
		Username:        req.Username,
		ChannelID:       req.ChannelID,
		RejectionReason: req.RejectionReason,
	}
	return s.send(req.Email, template, data)
}

func (s *emailService) send(to, template string, data any) error {
	subject, html, text, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("render %s email: %w", template, err)
	}
	if err := s.mailer.Send(to, subject, html, text); err != nil {
		return fmt.Errorf("send %s email: %w", template, err)
	}
	return nil
}
