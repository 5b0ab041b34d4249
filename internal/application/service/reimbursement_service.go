package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/application/port"
	"github.com/davinrkh/finbook/internal/domain/entity"
	"github.com/davinrkh/finbook/internal/domain/workflow"
	"github.com/davinrkh/finbook/pkg/utils"
)

// ReimbursementService manages expense claims and their approval
// lifecycle. Status transitions are admin-only and serialized by an
// optimistic-concurrency check against the stored status.
type ReimbursementService interface {
	// Submit creates a claim in status PENDING on behalf of the actor.
	Submit(ctx context.Context, actor *entity.User, rb *entity.Reimbursement) error

	// Update edits a claim's details. Permitted only while PENDING, and
	// only by the original requestor or an admin.
	Update(ctx context.Context, actor *entity.User, rb *entity.Reimbursement) error

	// StartProcessing moves PENDING -> PROCESSING and notifies the requestor.
	StartProcessing(ctx context.Context, actor *entity.User, id int64) error

	// Approve finishes the claim. The transfer-proof reference is
	// mandatory: a claim cannot be approved without evidence of payment.
	Approve(ctx context.Context, actor *entity.User, id int64, transferProofRef string) error

	// Reject finishes the claim with a mandatory non-empty reason.
	Reject(ctx context.Context, actor *entity.User, id int64, reason string) error

	Get(ctx context.Context, actor *entity.User, id int64) (*entity.Reimbursement, error)

	// List returns all claims for admins, the actor's own claims otherwise.
	List(ctx context.Context, actor *entity.User) ([]*entity.Reimbursement, error)
}

type reimbursementServiceImpl struct {
	reimbursementRepo port.ReimbursementRepository
	notificationRepo  port.NotificationRepository
	txManager         port.TransactionManager
	logger            Logger
}

// NewReimbursementService creates a new ReimbursementService
func NewReimbursementService(
	reimbursementRepo port.ReimbursementRepository,
	notificationRepo port.NotificationRepository,
	txManager port.TransactionManager,
	logger Logger,
) ReimbursementService {
	return &reimbursementServiceImpl{
		reimbursementRepo: reimbursementRepo,
		notificationRepo:  notificationRepo,
		txManager:         txManager,
		logger:            logger,
	}
}

func (s *reimbursementServiceImpl) Submit(ctx context.Context, actor *entity.User, rb *entity.Reimbursement) error {
	if err := utils.ValidateISODate(rb.Date); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid date", err)
	}
	if rb.Category == "" {
		return apperr.New(apperr.KindValidation, "category is required")
	}

	grandTotal, err := validateAndTotalItems(rb.Items)
	if err != nil {
		return err
	}
	rb.GrandTotal = grandTotal

	rb.RequestorID = actor.ID
	rb.RequestorName = actor.Name
	rb.Status = entity.ReimbursementPending
	rb.TransferProofRef = ""
	rb.RejectionReason = ""

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.reimbursementRepo.Create(txCtx, rb)
	})
	if err != nil {
		s.logger.Error("Failed to submit reimbursement", "error", err)
		return apperr.Wrap(apperr.KindUpstream, "submit reimbursement", err)
	}

	s.logger.Info("Reimbursement submitted",
		"reimbursement_id", rb.ID,
		"requestor_id", rb.RequestorID,
		"grand_total", rb.GrandTotal,
	)
	return nil
}

func (s *reimbursementServiceImpl) Update(ctx context.Context, actor *entity.User, rb *entity.Reimbursement) error {
	existing, err := s.getExisting(ctx, rb.ID)
	if err != nil {
		return err
	}

	if !actor.IsAdmin() && actor.ID != existing.RequestorID {
		return apperr.New(apperr.KindAuthorization, "only the requestor or an admin may edit a reimbursement")
	}
	if existing.Status != entity.ReimbursementPending {
		return apperr.Newf(apperr.KindConflict, "reimbursement %d is %s and can no longer be edited", rb.ID, existing.Status)
	}

	if err := utils.ValidateISODate(rb.Date); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid date", err)
	}
	grandTotal, err := validateAndTotalItems(rb.Items)
	if err != nil {
		return err
	}
	rb.GrandTotal = grandTotal

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.reimbursementRepo.Update(txCtx, rb)
	})
	if err != nil {
		s.logger.Error("Failed to update reimbursement", "reimbursement_id", rb.ID, "error", err)
		return apperr.Wrap(apperr.KindUpstream, "update reimbursement", err)
	}

	s.logger.Info("Reimbursement updated", "reimbursement_id", rb.ID)
	return nil
}

func (s *reimbursementServiceImpl) StartProcessing(ctx context.Context, actor *entity.User, id int64) error {
	message := "Your reimbursement request is now under review"
	return s.transition(ctx, actor, id, workflow.TriggerStartProcessing,
		entity.ReimbursementProcessing, workflow.TransitionInput{},
		entity.NotificationInfo, message)
}

func (s *reimbursementServiceImpl) Approve(ctx context.Context, actor *entity.User, id int64, transferProofRef string) error {
	if transferProofRef == "" {
		return apperr.New(apperr.KindValidation, "a transfer proof reference is required to approve")
	}
	message := "Your reimbursement request has been approved and paid out"
	return s.transition(ctx, actor, id, workflow.TriggerApprove,
		entity.ReimbursementApproved, workflow.TransitionInput{TransferProofRef: transferProofRef},
		entity.NotificationSuccess, message)
}

func (s *reimbursementServiceImpl) Reject(ctx context.Context, actor *entity.User, id int64, reason string) error {
	if reason == "" {
		return apperr.New(apperr.KindValidation, "a rejection reason is required to reject")
	}
	message := fmt.Sprintf("Your reimbursement request was rejected: %s", reason)
	return s.transition(ctx, actor, id, workflow.TriggerReject,
		entity.ReimbursementRejected, workflow.TransitionInput{RejectionReason: reason},
		entity.NotificationError, message)
}

// transition runs a status change end to end: role check, state machine
// validation, the optimistic status update, and the notification to the
// requestor, all inside one database transaction.
func (s *reimbursementServiceImpl) transition(
	ctx context.Context,
	actor *entity.User,
	id int64,
	trigger workflow.Trigger,
	next entity.ReimbursementStatus,
	input workflow.TransitionInput,
	notifType entity.NotificationType,
	message string,
) error {
	if !actor.IsAdmin() {
		return apperr.New(apperr.KindAuthorization, "only admins may change reimbursement status")
	}

	existing, err := s.getExisting(ctx, id)
	if err != nil {
		return err
	}

	machine := workflow.BuildReimbursementStateMachine(workflow.State(existing.Status))
	if err := machine.Fire(workflow.WithInput(ctx, input), trigger); err != nil {
		switch {
		case errors.Is(err, workflow.ErrInvalidTransition):
			return apperr.Newf(apperr.KindConflict, "cannot %s a reimbursement in status %s", trigger, existing.Status)
		case errors.Is(err, workflow.ErrGuardFailed):
			return apperr.Wrap(apperr.KindValidation, "transition rejected", err)
		default:
			return apperr.Wrap(apperr.KindUpstream, "state machine", err)
		}
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		updated, err := s.reimbursementRepo.UpdateStatusIf(txCtx, id, existing.Status, next,
			input.TransferProofRef, input.RejectionReason)
		if err != nil {
			return apperr.Wrap(apperr.KindUpstream, "update status", err)
		}
		if !updated {
			// A concurrent admin moved the claim first.
			return apperr.Newf(apperr.KindConflict, "reimbursement %d changed status concurrently, re-fetch and retry", id)
		}

		notification := &entity.Notification{
			TargetUserID: &existing.RequestorID,
			Message:      message,
			Type:         notifType,
		}
		if err := s.notificationRepo.Create(txCtx, notification); err != nil {
			return apperr.Wrap(apperr.KindUpstream, "create notification", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Reimbursement transition failed",
			"reimbursement_id", id,
			"trigger", trigger.String(),
			"error", err,
		)
		return err
	}

	s.logger.Info("Reimbursement status changed",
		"reimbursement_id", id,
		"from", string(existing.Status),
		"to", string(next),
		"admin_id", actor.ID,
	)
	return nil
}

func (s *reimbursementServiceImpl) Get(ctx context.Context, actor *entity.User, id int64) (*entity.Reimbursement, error) {
	rb, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != rb.RequestorID {
		return nil, apperr.New(apperr.KindAuthorization, "not your reimbursement")
	}
	return rb, nil
}

func (s *reimbursementServiceImpl) List(ctx context.Context, actor *entity.User) ([]*entity.Reimbursement, error) {
	var (
		rbs []*entity.Reimbursement
		err error
	)
	if actor.IsAdmin() {
		rbs, err = s.reimbursementRepo.List(ctx)
	} else {
		rbs, err = s.reimbursementRepo.ListByRequestor(ctx, actor.ID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "list reimbursements", err)
	}
	return rbs, nil
}

func (s *reimbursementServiceImpl) getExisting(ctx context.Context, id int64) (*entity.Reimbursement, error) {
	rb, err := s.reimbursementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "get reimbursement", err)
	}
	if rb == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "reimbursement %d not found", id)
	}
	return rb, nil
}
