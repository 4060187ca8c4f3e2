package domain

import (
	"context"
	"errors"
)

// ErrInvalidDecision is returned when a decision is neither approve nor reject.
var ErrInvalidDecision = errors.New("invalid decision")

// RedeemerIdentity identifies the authenticated user presenting an invite
// code. It is supplied by the external identity layer.
type RedeemerIdentity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RedeemOutcome is the result kind of a redemption.
type RedeemOutcome string

const (
	RedeemGranted         RedeemOutcome = "granted"
	RedeemPendingApproval RedeemOutcome = "pending_approval"
)

// RedeemResult is returned by a successful redemption. Request is set only
// when Outcome is RedeemPendingApproval.
type RedeemResult struct {
	Outcome RedeemOutcome      `json:"outcome"`
	Invite  *Invite            `json:"invite"`
	Request *MembershipRequest `json:"request,omitempty"`
}

// Decision is an approver's verdict on a membership request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// MembershipEvent is the payload of the membership-granted signal, fired
// exactly once per successful grant (immediate or post-approval).
type MembershipEvent struct {
	ChannelID  string
	UserID     string
	InviteCode string
}

// MembershipNotifier receives the membership-granted signal. The external
// roster system implements this to admit the user to the channel.
type MembershipNotifier interface {
	MembershipGranted(ctx context.Context, event MembershipEvent)
}

// ChangeNotifier lets presentation layers refresh after a policy or invite
// mutation. The payload is deliberately thin: just the affected channel and
// code.
type ChangeNotifier interface {
	PolicyChanged(ctx context.Context, channelID string)
	InviteChanged(ctx context.Context, channelID, code string)
}

// MembershipService is the façade external callers use to redeem invites and
// decide membership requests.
type MembershipService interface {
	// RedeemInvite consumes one use of the code, then either grants
	// membership immediately or enqueues a membership request when the
	// invite's policy snapshot requires approval. The use count increments
	// in both cases: it means "times successfully redeemed" regardless of
	// the approval outcome.
	RedeemInvite(ctx context.Context, code string, redeemer RedeemerIdentity, message string) (*RedeemResult, error)
	// DecideRequest routes the decision to the approval queue.
	DecideRequest(ctx context.Context, requestID, actorID string, decision Decision, reason string) (*MembershipRequest, error)
}
