package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/rbac"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/shared"
)

const approvalModule = "leave"

// RepositoryPort abstracts leave persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, req *Request) error
	Get(ctx context.Context, id int64) (*Request, error)
	Decide(ctx context.Context, id int64, status Status, decidedBy int64, reason string) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]Request, error)
	ListByStatus(ctx context.Context, status Status) ([]Request, error)
}

// ApprovalPort records submit/approve/reject history.
type ApprovalPort interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements the leave request workflow.
type Service struct {
	repo      RepositoryPort
	approvals ApprovalPort
	audit     AuditPort
	logger    *slog.Logger
}

func NewService(repo RepositoryPort, approvals ApprovalPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, approvals: approvals, audit: audit, logger: logger}
}

// SubmitInput carries a new leave request.
type SubmitInput struct {
	UserID    int64
	Type      Type
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// Submit validates and stores a new pending request.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Request, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, in.Type)
	}
	start := midnight(in.StartDate)
	end := midnight(in.EndDate)
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	req := &Request{
		UserID:    in.UserID,
		Type:      in.Type,
		StartDate: start,
		EndDate:   end,
		Reason:    strings.TrimSpace(in.Reason),
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create leave request: %w", err)
	}
	s.recordApproval(ctx, shared.ApprovalLog{
		Module: approvalModule, RefID: req.ID, ActorID: in.UserID,
		Action: shared.ApprovalSubmit, Note: req.Reason,
	})
	return req, nil
}

// Approve marks a pending request approved. The actor needs manage_leaves.
func (s *Service) Approve(ctx context.Context, actor rbac.Principal, id int64) (*Request, error) {
	return s.decide(ctx, actor, id, StatusApproved, "")
}

// Reject marks a pending request rejected. The reason is optional; an empty
// reason is stored as-is.
func (s *Service) Reject(ctx context.Context, actor rbac.Principal, id int64, reason string) (*Request, error) {
	return s.decide(ctx, actor, id, StatusRejected, strings.TrimSpace(reason))
}

func (s *Service) decide(ctx context.Context, actor rbac.Principal, id int64, status Status, reason string) (*Request, error) {
	if !rbac.Authorize(actor, rbac.RequirePermission(rbac.PermManageLeaves)).Allowed() {
		return nil, ErrForbidden
	}

	won, err := s.repo.Decide(ctx, id, status, actor.UserID, reason)
	if err != nil {
		return nil, fmt.Errorf("decide leave request: %w", err)
	}
	if !won {
		// Either the request does not exist or someone decided it first.
		if _, err := s.repo.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyDecided
	}

	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	action := shared.ApprovalApprove
	if status == StatusRejected {
		action = shared.ApprovalReject
	}
	s.recordApproval(ctx, shared.ApprovalLog{
		Module: approvalModule, RefID: id, ActorID: actor.UserID,
		Action: action, Note: reason,
	})
	s.recordAudit(ctx, actor.UserID, "leave."+string(status), id, map[string]any{
		"user_id": req.UserID,
		"type":    req.Type,
	})
	return req, nil
}

// Get returns a single request. Owners can read their own; anyone else needs
// view_leaves or manage_leaves.
func (s *Service) Get(ctx context.Context, actor rbac.Principal, id int64) (*Request, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != actor.UserID && !s.canView(actor) {
		return nil, ErrForbidden
	}
	return req, nil
}

// ListMine returns the actor's own requests, newest first.
func (s *Service) ListMine(ctx context.Context, actor rbac.Principal) ([]Request, error) {
	return s.repo.ListByUser(ctx, actor.UserID)
}

// ListPending returns all pending requests for reviewers.
func (s *Service) ListPending(ctx context.Context, actor rbac.Principal) ([]Request, error) {
	if !s.canView(actor) {
		return nil, ErrForbidden
	}
	return s.repo.ListByStatus(ctx, StatusPending)
}

func (s *Service) canView(actor rbac.Principal) bool {
	return rbac.Authorize(actor, rbac.RequirePermission(rbac.PermViewLeaves)).Allowed() ||
		rbac.Authorize(actor, rbac.RequirePermission(rbac.PermManageLeaves)).Allowed()
}

func (s *Service) recordApproval(ctx context.Context, log shared.ApprovalLog) {
	if s.approvals == nil {
		return
	}
	if err := s.approvals.Record(ctx, log); err != nil {
		s.logger.Warn("record leave approval", slog.Int64("ref_id", log.RefID), slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{ActorID: actorID, Action: action, Entity: "leave_request", EntityID: strconv.FormatInt(id, 10), Meta: meta}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("record leave audit", slog.Int64("leave_id", id), slog.Any("error", err))
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
