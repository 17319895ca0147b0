package complaint

import (
	"strings"

	"tradelink/internal/domain"
	"tradelink/internal/domain/access"
)

type Action string

const (
	ActionEscalate Action = "escalate"
	ActionClaim    Action = "claim"
	ActionResolve  Action = "resolve"
	ActionClose    Action = "close"
)

type Input struct {
	Notes       string
	CancelOrder bool
}

// Plan is the outcome of a permitted transition, ready to be persisted.
type Plan struct {
	From            domain.ComplaintStatus
	To              domain.ComplaintStatus
	ClaimManager    bool
	CancelOrder     bool
	HistoryNotes    string
	ResolutionNotes *string
}

// Decide validates action against the complaint's current state and the
// actor, in that order: an action that is not valid from the current state
// is an invalid transition whoever attempts it.
//
//	open        --escalate--> escalated    assigned salesman
//	escalated   --claim-----> in_progress  supplier manager/owner, first wins
//	open        --resolve---> resolved     assigned salesman, no cancel_order
//	in_progress --resolve---> resolved     claiming manager
//	in_progress --close-----> closed       claiming manager
func Decide(c *domain.Complaint, l *domain.Linking, actor *domain.User, action Action, in Input) (*Plan, error) {
	if c == nil || l == nil || actor == nil {
		return nil, ErrComplaintAccessDenied
	}
	notes := strings.TrimSpace(in.Notes)

	switch action {
	case ActionEscalate:
		if c.Status != domain.ComplaintOpen {
			return nil, ErrInvalidTransition
		}
		if c.AssignedSalesmanID != actor.ID {
			return nil, ErrComplaintAccessDenied
		}
		return &Plan{
			From:         c.Status,
			To:           domain.ComplaintEscalated,
			HistoryNotes: orDefault(notes, "Escalated to manager"),
		}, nil

	case ActionClaim:
		if c.IsClaimed() {
			return nil, ErrAlreadyClaimed
		}
		if c.Status != domain.ComplaintEscalated {
			return nil, ErrInvalidTransition
		}
		if !access.CanClaimComplaint(actor, l) {
			return nil, ErrComplaintAccessDenied
		}
		return &Plan{
			From:         c.Status,
			To:           domain.ComplaintInProgress,
			ClaimManager: true,
			HistoryNotes: orDefault(notes, "Manager claimed complaint"),
		}, nil

	case ActionResolve:
		switch c.Status {
		case domain.ComplaintOpen:
			if c.AssignedSalesmanID != actor.ID {
				return nil, ErrComplaintAccessDenied
			}
			if in.CancelOrder {
				return nil, ErrCancelNotAllowed
			}
		case domain.ComplaintInProgress:
			if !c.ClaimedBy(actor.ID) {
				return nil, ErrComplaintAccessDenied
			}
			if in.CancelOrder && !access.MayCancelOrder(actor) {
				return nil, ErrCancelNotAllowed
			}
		default:
			return nil, ErrInvalidTransition
		}
		history := "Resolved"
		if notes != "" {
			history += ": " + notes
		}
		return &Plan{
			From:            c.Status,
			To:              domain.ComplaintResolved,
			CancelOrder:     in.CancelOrder,
			HistoryNotes:    withCancellation(history, in.CancelOrder),
			ResolutionNotes: optional(notes),
		}, nil

	case ActionClose:
		if c.Status != domain.ComplaintInProgress {
			return nil, ErrInvalidTransition
		}
		if !c.ClaimedBy(actor.ID) {
			return nil, ErrComplaintAccessDenied
		}
		if in.CancelOrder && !access.MayCancelOrder(actor) {
			return nil, ErrCancelNotAllowed
		}
		closing := orDefault(notes, "Complaint closed")
		return &Plan{
			From:            c.Status,
			To:              domain.ComplaintClosed,
			CancelOrder:     in.CancelOrder,
			HistoryNotes:    withCancellation(closing, in.CancelOrder),
			ResolutionNotes: &closing,
		}, nil
	}

	return nil, ErrUnknownAction
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func withCancellation(notes string, cancelled bool) string {
	if cancelled {
		return notes + " (Order cancelled)"
	}
	return notes
}
