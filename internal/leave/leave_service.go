package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-leave/internal/events"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/metrics"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/workday"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateLeaveRequest) (LeaveResponse, error)
	Decide(ctx context.Context, actor Actor, id string, target Status, comment string) (LeaveResponse, error)
	Cancel(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	List(ctx context.Context, actor Actor, filter ListFilter) ([]LeaveResponse, error)
	GetLedger(ctx context.Context, actor Actor, employeeID string) (LedgerResponse, error)
	SetBalance(ctx context.Context, actor Actor, employeeID string, totalBalance int) (LedgerResponse, error)
}

// ServiceOptions carries the optional collaborators of the service. Zero
// values fall back to the Saturday/Sunday weekend, no decision lock and the
// wall clock.
type ServiceOptions struct {
	Weekend workday.WeekendPolicy
	Locker  DecisionLocker
	Now     func() time.Time
}

type service struct {
	db       *sql.DB
	repo     Repository
	ledger   LedgerRepository
	notifier Notifier
	locker   DecisionLocker
	weekend  workday.WeekendPolicy
	now      func() time.Time
	sf       *singleflight.Group
	tracer   trace.Tracer
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, ledger LedgerRepository, notifier Notifier, logger ...*zap.Logger) Service {
	return NewServiceWithOptions(db, repo, ledger, notifier, ServiceOptions{}, logger...)
}

func NewServiceWithOptions(
	db *sql.DB,
	repo Repository,
	ledger LedgerRepository,
	notifier Notifier,
	opts ServiceOptions,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if opts.Weekend == nil {
		opts.Weekend = workday.DefaultWeekend()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		db:       db,
		repo:     repo,
		ledger:   ledger,
		notifier: notifier,
		locker:   opts.Locker,
		weekend:  opts.Weekend,
		now:      opts.Now,
		sf:       &singleflight.Group{},
		tracer:   otel.Tracer("go-leave/internal/leave"),
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	ctx, span := s.tracer.Start(ctx, "leave.Create")
	defer span.End()

	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actor.ID.String()),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	leaveType, startDate, endDate, reason, err := validateCreateRequest(actor, req)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	chargeableDays := workday.ChargeableDays(startDate, endDate, s.weekend)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	now := s.now().UTC()
	l := &LeaveRequest{
		ID:             uuid.New(),
		RequesterID:    actor.ID,
		DepartmentID:   actor.DepartmentID,
		LeaveType:      leaveType,
		StartDate:      startDate,
		EndDate:        endDate,
		ChargeableDays: chargeableDays,
		Reason:         reason,
		Status:         StatusPending,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.WithTx(tx).Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	var quotaWarning string
	if leaveType.ConsumesQuota() {
		ledger, err := s.ledger.WithTx(tx).AdjustReserved(ctx, actor.ID.String(), chargeableDays)
		if err != nil {
			s.logger.Error("create leave reserve quota failed",
				zap.String("employee_id", actor.ID.String()),
				zap.Error(err),
			)
			return LeaveResponse{}, mapRepositoryError(err)
		}
		if ledger.Overdrawn() {
			quotaWarning = fmt.Sprintf(
				"reserved %d days exceed the available balance of %d days",
				ledger.Reserved, ledger.TotalBalance,
			)
			s.logger.Warn("create leave overdraws quota",
				zap.String("employee_id", actor.ID.String()),
				zap.Int("total_balance", ledger.TotalBalance),
				zap.Int("reserved", ledger.Reserved),
			)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	metrics.RecordTransition("", string(StatusPending))
	s.notify(ctx, *l, "", actor)
	span.SetAttributes(attribute.String("leave.id", l.ID.String()))
	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("requester_id", actor.ID.String()),
		zap.Int("chargeable_days", chargeableDays),
	)

	resp := mapToResponse(*l)
	resp.QuotaWarning = quotaWarning
	return resp, nil
}

func (s *service) Decide(ctx context.Context, actor Actor, id string, target Status, comment string) (LeaveResponse, error) {
	return s.transition(ctx, actor, id, target, comment)
}

func (s *service) Cancel(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, actor, id, StatusCancelled, "")
}

func (s *service) transition(ctx context.Context, actor Actor, id string, target Status, comment string) (LeaveResponse, error) {
	ctx, span := s.tracer.Start(ctx, "leave.Decide", trace.WithAttributes(
		attribute.String("leave.id", id),
		attribute.String("leave.target_status", string(target)),
	))
	defer span.End()

	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("transition leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID.String()),
		zap.String("actor_role", string(actor.Role)),
		zap.String("target_status", string(target)),
	)

	if actor.ID == uuid.Nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActor
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	if !target.Valid() || target == StatusPending {
		return LeaveResponse{}, leaveerrors.ErrInvalidTargetStatus
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, id)
		if err != nil {
			if errors.Is(err, leaveerrors.ErrConcurrentDecision) {
				metrics.RecordDecisionConflict()
			}
			s.logger.Warn("transition leave lock not acquired", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
		defer release()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	previous := l.Status

	// a decided request, or one already in the target state, is stale client state
	if previous.IsTerminal() || previous == target {
		s.logger.Warn("transition leave invalid",
			zap.String("leave_id", id),
			zap.String("from_status", string(previous)),
			zap.String("to_status", string(target)),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	if !CanTransition(actor, *l, target) {
		s.logger.Warn("transition leave not permitted",
			zap.String("request_id", rid),
			zap.String("leave_id", id),
			zap.String("actor_id", actor.ID.String()),
			zap.String("actor_role", string(actor.Role)),
			zap.String("actor_department_id", actor.DepartmentID.String()),
			zap.String("leave_department_id", l.DepartmentID.String()),
			zap.String("from_status", string(previous)),
			zap.String("to_status", string(target)),
		)
		return LeaveResponse{}, leaveerrors.ErrNotPermitted
	}

	if target == StatusRejected && strings.TrimSpace(comment) == "" {
		return LeaveResponse{}, leaveerrors.ErrCommentRequired
	}

	now := s.now().UTC()
	decidedBy := actor.ID
	expectedVersion := l.Version
	l.Status = target
	l.DecisionComment = comment
	l.DecidedBy = &decidedBy
	l.DecidedAt = &now
	l.UpdatedAt = now

	if err := qtx.UpdateDecision(ctx, l, expectedVersion); err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, leaveerrors.ErrConcurrentDecision) {
			metrics.RecordDecisionConflict()
			s.logger.Warn("transition leave lost concurrent decision",
				zap.String("leave_id", id),
				zap.Int("expected_version", expectedVersion),
			)
		} else {
			s.logger.Error("transition leave persist failed", zap.String("leave_id", id), zap.Error(err))
		}
		return LeaveResponse{}, mapped
	}

	if target.IsTerminal() && l.LeaveType.ConsumesQuota() {
		if _, err := s.ledger.WithTx(tx).AdjustReserved(ctx, l.RequesterID.String(), -l.ChargeableDays); err != nil {
			s.logger.Error("transition leave release quota failed",
				zap.String("leave_id", id),
				zap.String("employee_id", l.RequesterID.String()),
				zap.Error(err),
			)
			return LeaveResponse{}, mapRepositoryError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("transition leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	metrics.RecordTransition(string(previous), string(target))
	s.notify(ctx, *l, previous, actor)
	s.logger.Info("transition leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("from_status", string(previous)),
		zap.String("to_status", string(target)),
		zap.String("actor_id", actor.ID.String()),
	)

	return mapToResponse(*l), nil
}

// notify hands the transition to the notifier. Failures are logged and
// counted, never returned: the transition is already committed.
func (s *service) notify(ctx context.Context, l LeaveRequest, previous Status, actor Actor) {
	event := events.LeaveTransitionedEvent{
		EventType:      events.LeaveTransitionedEventType,
		RequestID:      contextutil.GetRequestID(ctx),
		LeaveID:        l.ID.String(),
		RequesterID:    l.RequesterID.String(),
		DepartmentID:   l.DepartmentID.String(),
		LeaveType:      string(l.LeaveType),
		ChargeableDays: l.ChargeableDays,
		PreviousStatus: string(previous),
		NewStatus:      string(l.Status),
		ActorID:        actor.ID.String(),
		ActorRole:      string(actor.Role),
		Comment:        l.DecisionComment,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		metrics.RecordNotifyFailure()
		s.logger.Error("notify leave transition failed",
			zap.String("leave_id", event.LeaveID),
			zap.String("new_status", event.NewStatus),
			zap.Error(err),
		)
	}
}

func (s *service) GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if !CanView(actor, *l) {
		s.logger.Warn("get leave not permitted",
			zap.String("leave_id", id),
			zap.String("actor_id", actor.ID.String()),
		)
		return LeaveResponse{}, leaveerrors.ErrNotPermitted
	}
	return mapToResponse(*l), nil
}

func (s *service) List(ctx context.Context, actor Actor, filter ListFilter) ([]LeaveResponse, error) {
	if filter.Status != "" && !Status(filter.Status).Valid() {
		return nil, leaveerrors.ErrInvalidStatusFilter
	}

	switch actor.Role {
	case RoleAdmin:
	case RoleManager:
		filter.DepartmentID = actor.DepartmentID.String()
	case RoleEmployee, RoleAssistant:
		filter.RequesterID = actor.ID.String()
	default:
		return nil, leaveerrors.ErrNotPermitted
	}

	leaves, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list leaves failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetLedger(ctx context.Context, actor Actor, employeeID string) (LedgerResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return LedgerResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	if !CanViewLedger(actor, employeeID) {
		return LedgerResponse{}, leaveerrors.ErrNotPermitted
	}

	// concurrent dashboard reads of the same employee share one query
	v, err, _ := s.sf.Do(employeeID, func() (interface{}, error) {
		q, err := s.ledger.FindByEmployee(ctx, employeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return QuotaLedger{EmployeeID: uuid.MustParse(employeeID)}, nil
			}
			return nil, err
		}
		return *q, nil
	})
	if err != nil {
		s.logger.Error("get ledger failed", zap.String("employee_id", employeeID), zap.Error(err))
		return LedgerResponse{}, mapRepositoryError(err)
	}
	return mapToLedgerResponse(v.(QuotaLedger)), nil
}

func (s *service) SetBalance(ctx context.Context, actor Actor, employeeID string, totalBalance int) (LedgerResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return LedgerResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	if actor.Role != RoleAdmin {
		s.logger.Warn("set balance not permitted",
			zap.String("actor_id", actor.ID.String()),
			zap.String("employee_id", employeeID),
		)
		return LedgerResponse{}, leaveerrors.ErrNotPermitted
	}
	if totalBalance < 0 {
		return LedgerResponse{}, leaveerrors.ErrInvalidBalance
	}

	q, err := s.ledger.SaveBalance(ctx, employeeID, totalBalance)
	if err != nil {
		s.logger.Error("set balance persist failed", zap.String("employee_id", employeeID), zap.Error(err))
		return LedgerResponse{}, mapRepositoryError(err)
	}
	s.logger.Info("set balance success",
		zap.String("employee_id", employeeID),
		zap.Int("total_balance", q.TotalBalance),
		zap.Int("reserved", q.Reserved),
	)
	return mapToLedgerResponse(*q), nil
}

func validateCreateRequest(actor Actor, req CreateLeaveRequest) (LeaveType, time.Time, time.Time, string, error) {
	if actor.ID == uuid.Nil {
		return "", time.Time{}, time.Time{}, "", leaveerrors.ErrInvalidActor
	}
	leaveType := LeaveType(req.LeaveType)
	if !leaveType.Valid() {
		return "", time.Time{}, time.Time{}, "", leaveerrors.ErrInvalidLeaveType
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return "", time.Time{}, time.Time{}, "", err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return "", time.Time{}, time.Time{}, "", err
	}
	if startDate.After(endDate) {
		return "", time.Time{}, time.Time{}, "", leaveerrors.ErrInvalidDateRange
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return "", time.Time{}, time.Time{}, "", leaveerrors.ErrReasonRequired
	}
	return leaveType, startDate, endDate, reason, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, apperror.WithCause(leaveerrors.ErrInvalidDateFormat, err)
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		RequesterID:     l.RequesterID.String(),
		DepartmentID:    l.DepartmentID.String(),
		LeaveType:       string(l.LeaveType),
		StartDate:       l.StartDate.Format(dateLayout),
		EndDate:         l.EndDate.Format(dateLayout),
		ChargeableDays:  l.ChargeableDays,
		Reason:          l.Reason,
		Status:          string(l.Status),
		DecisionComment: l.DecisionComment,
		CreatedAt:       l.CreatedAt.Format(time.RFC3339),
	}
	if l.DecidedBy != nil {
		v := l.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if l.DecidedAt != nil {
		v := l.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}

func mapToLedgerResponse(q QuotaLedger) LedgerResponse {
	return LedgerResponse{
		EmployeeID:   q.EmployeeID.String(),
		TotalBalance: q.TotalBalance,
		Reserved:     q.Reserved,
		Available:    q.Available(),
		Overdrawn:    q.Overdrawn(),
	}
}
