package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/closingdesk/commission-backend/internal/ach"
	"github.com/closingdesk/commission-backend/internal/audit"
	"github.com/closingdesk/commission-backend/internal/commission"
	"github.com/closingdesk/commission-backend/internal/repo"
	"github.com/closingdesk/commission-backend/internal/transactions"
	"github.com/closingdesk/commission-backend/pkg/db"
	"github.com/closingdesk/commission-backend/pkg/db/models"
	"github.com/closingdesk/commission-backend/pkg/enums"
	pkgerrors "github.com/closingdesk/commission-backend/pkg/errors"
	"github.com/closingdesk/commission-backend/pkg/logger"
	"github.com/closingdesk/commission-backend/pkg/metrics"
	"github.com/closingdesk/commission-backend/pkg/pagination"
	"github.com/closingdesk/commission-backend/pkg/visibility"
)

const transactionUniqueConstraint = "uq_commission_payouts_transaction"

var errSimulatedFailure = errors.New("simulated ACH failure")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type achDispatcher interface {
	Supports(name enums.ACHProvider) bool
	Process(ctx context.Context, name enums.ACHProvider, req ach.Request) (*ach.Result, error)
}

// Service drives the payout lifecycle.
type Service interface {
	CreateEnhancedPayout(ctx context.Context, input CreateInput) (*CreateResult, error)
	SchedulePayout(ctx context.Context, input ScheduleInput) (*models.CommissionPayout, error)
	UpdatePayoutStatus(ctx context.Context, input UpdateStatusInput) (*models.CommissionPayout, error)
	ProcessACHPayment(ctx context.Context, input ProcessACHInput) (*ProcessACHResult, error)
	GetPayout(ctx context.Context, id uuid.UUID, actor Actor) (*models.CommissionPayout, error)
	ListPayouts(ctx context.Context, input ListInput) (pagination.Page[models.CommissionPayout], error)
	PreviewCommission(ctx context.Context, transactionID uuid.UUID, actor Actor) (*PreviewResult, error)
	ListEvents(ctx context.Context, transactionID uuid.UUID, actor Actor, agentView bool) ([]models.TransactionEvent, error)
}

// ACHSettings tunes the ACH dispatch path.
type ACHSettings struct {
	DefaultProvider enums.ACHProvider
	Minimum         decimal.Decimal
	TestFailureRate float64
}

// ServiceParams lists the collaborators of the payout service. Lock and Metrics are optional.
type ServiceParams struct {
	Tx           txRunner
	Payouts      Repository
	Transactions transactions.Repository
	Audit        audit.Service
	Registry     *commission.Registry
	Policy       enums.CalculationPolicy
	Dispatcher   achDispatcher
	Lock         CreationLock
	Metrics      *metrics.PayoutMetrics
	Logger       *logger.Logger
	ACH          ACHSettings
	Clock        func() time.Time
	Rand         func() float64
}

type service struct {
	tx           txRunner
	payouts      Repository
	transactions transactions.Repository
	audit        audit.Service
	registry     *commission.Registry
	policy       enums.CalculationPolicy
	dispatcher   achDispatcher
	lock         CreationLock
	metrics      *metrics.PayoutMetrics
	logg         *logger.Logger
	ach          ACHSettings
	now          func() time.Time
	rand         func() float64
}

// NewService builds the payout service with the required dependencies.
func NewService(p ServiceParams) (Service, error) {
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Payouts == nil {
		return nil, fmt.Errorf("payout repository required")
	}
	if p.Transactions == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if p.Audit == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if p.Dispatcher == nil {
		return nil, fmt.Errorf("ach dispatcher required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.Registry == nil {
		p.Registry = commission.DefaultRegistry()
	}
	if p.Policy == "" {
		p.Policy = enums.CalculationPolicyCapAware
	}
	if !p.Policy.IsValid() {
		return nil, fmt.Errorf("invalid calculation policy %q", p.Policy)
	}
	if p.ACH.DefaultProvider == "" {
		p.ACH.DefaultProvider = enums.ACHProviderMock
	}
	if p.ACH.Minimum.IsZero() {
		p.ACH.Minimum = ach.DefaultMinimum
	}
	if p.ACH.TestFailureRate < 0 || p.ACH.TestFailureRate > 1 {
		return nil, fmt.Errorf("ach test failure rate must be between 0 and 1")
	}
	if p.Clock == nil {
		p.Clock = time.Now
	}
	if p.Rand == nil {
		p.Rand = func() float64 { return 1 }
	}
	return &service{
		tx:           p.Tx,
		payouts:      p.Payouts,
		transactions: p.Transactions,
		audit:        p.Audit,
		registry:     p.Registry,
		policy:       p.Policy,
		dispatcher:   p.Dispatcher,
		lock:         p.Lock,
		metrics:      p.Metrics,
		logg:         p.Logger,
		ach:          p.ACH,
		now:          p.Clock,
		rand:         p.Rand,
	}, nil
}

func (s *service) CreateEnhancedPayout(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction_id is required")
	}
	if err := requireWriter(input.Actor); err != nil {
		return nil, err
	}
	ctx = s.logg.WithTransactionID(ctx, input.TransactionID.String())

	txn, err := s.loadTransaction(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != enums.TransactionStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "transaction must be approved before a payout can be created").
			WithDetails(map[string]any{"transaction_status": txn.Status})
	}

	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, txn.ID)
		if err != nil {
			if errors.Is(err, ErrCreationInProgress) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payout creation already in progress for this transaction")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire payout creation lock")
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logg.Warn(ctx, "payout.create_lock_release_failed: "+err.Error())
			}
		}()
	}

	plan := s.registry.Lookup(txn.AgentName)
	if txn.AgentSplitPct != nil {
		plan, err = plan.WithAgentSplit(*txn.AgentSplitPct)
		if err != nil {
			return nil, mapDomainError(err)
		}
	}
	breakdown, err := commission.Calculate(s.policy, DealFromTransaction(txn), plan)
	if err != nil {
		mapped := mapDomainError(err)
		if errors.Is(err, commission.ErrNonPositivePayout) {
			mapped = mapped.WithDetails(breakdown)
		}
		return nil, mapped
	}

	now := s.now().UTC()
	payout := &models.CommissionPayout{
		ID:                uuid.New(),
		TransactionID:     txn.ID,
		AgentID:           txn.AgentID,
		AgentName:         txn.AgentName,
		BrokerageID:       txn.BrokerageID,
		PayoutAmount:      breakdown.AgentNet,
		GrossCommission:   breakdown.GCI,
		ReferralFee:       breakdown.ReferralFee,
		FranchiseFee:      breakdown.FranchiseFee,
		AgentShare:        breakdown.AgentShare,
		BrokerageShare:    breakdown.BrokerageShare,
		DeductionsTotal:   breakdown.DeductionsTotal(),
		CalculationPolicy: breakdown.Policy,
		Status:            enums.PayoutStatusReady,
		Version:           1,
		CreatedBy:         input.Actor.idPtr(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		payoutRepo := s.payouts.WithTx(tx)
		exists, err := payoutRepo.ExistsForTransaction(ctx, txn.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing payout")
		}
		if exists {
			return duplicatePayout(txn.ID)
		}
		if err := payoutRepo.Create(ctx, payout); err != nil {
			if isTransactionUniqueViolation(err) {
				return duplicatePayout(txn.ID)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payout")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithPayoutID(ctx, payout.ID.String())
	s.metrics.IncTransition("new", string(enums.PayoutStatusReady))
	s.recordAudit(ctx, audit.RecordInput{
		TransactionID: txn.ID,
		PayoutID:      &payout.ID,
		EventType:     enums.AuditEventPayoutCreated,
		ActorName:     input.Actor.Name,
		ActorID:       input.Actor.idPtr(),
		Metadata: map[string]any{
			"new_status":         enums.PayoutStatusReady,
			"payout_amount":      payout.PayoutAmount.StringFixed(2),
			"gross_commission":   breakdown.GCI.StringFixed(2),
			"calculation_policy": breakdown.Policy,
		},
	})
	s.logg.Info(ctx, "payout.created")

	return &CreateResult{Payout: payout, Breakdown: breakdown, Plan: plan}, nil
}

func (s *service) SchedulePayout(ctx context.Context, input ScheduleInput) (*models.CommissionPayout, error) {
	if input.PayoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout_id is required")
	}
	if err := requireWriter(input.Actor); err != nil {
		return nil, err
	}
	ctx = s.logg.WithPayoutID(ctx, input.PayoutID.String())

	current, err := s.loadPayout(ctx, input.PayoutID)
	if err != nil {
		return nil, err
	}
	updated, err := Schedule(current, ScheduleRequest{
		ScheduledDate:   input.ScheduledDate,
		PaymentMethod:   input.PaymentMethod,
		ProviderDetails: input.ProviderDetails,
	}, s.now())
	if err != nil {
		s.observeRejection(current.Status, enums.PayoutStatusScheduled, err)
		return nil, mapDomainError(err)
	}
	if err := s.persist(ctx, updated, current.Version); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, current, updated, input.Actor, map[string]any{
		"scheduled_date": updated.ScheduledDate.Format(time.RFC3339),
		"payment_method": input.PaymentMethod,
	})
	return updated, nil
}

func (s *service) UpdatePayoutStatus(ctx context.Context, input UpdateStatusInput) (*models.CommissionPayout, error) {
	if input.PayoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout_id is required")
	}
	if !input.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid new_status %q", input.NewStatus))
	}
	if input.ACHProvider != nil && !input.ACHProvider.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnsupportedProvider, fmt.Sprintf("unsupported ach provider %q", *input.ACHProvider))
	}
	if err := requireWriter(input.Actor); err != nil {
		return nil, err
	}
	ctx = s.logg.WithPayoutID(ctx, input.PayoutID.String())

	current, err := s.loadPayout(ctx, input.PayoutID)
	if err != nil {
		return nil, err
	}
	updated, err := Transition(current, input.NewStatus, TransitionExtra{
		PaidAt:           input.PaidAt,
		PaymentReference: input.PaymentReference,
		ACHProvider:      input.ACHProvider,
		FailureReason:    input.FailureReason,
	}, s.now())
	if err != nil {
		s.observeRejection(current.Status, input.NewStatus, err)
		return nil, mapDomainError(err)
	}
	if err := s.persist(ctx, updated, current.Version); err != nil {
		return nil, err
	}

	extra := map[string]any{}
	if input.FailureReason != nil {
		extra["failure_reason"] = *input.FailureReason
	}
	if input.PaymentReference != nil {
		extra["payment_reference"] = *input.PaymentReference
	}
	if input.ACHProvider != nil {
		extra["ach_provider"] = *input.ACHProvider
	}
	s.afterTransition(ctx, current, updated, input.Actor, extra)
	return updated, nil
}

func (s *service) ProcessACHPayment(ctx context.Context, input ProcessACHInput) (*ProcessACHResult, error) {
	if input.PayoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout_id is required")
	}
	if err := requireWriter(input.Actor); err != nil {
		return nil, err
	}
	ctx = s.logg.WithPayoutID(ctx, input.PayoutID.String())

	provider := s.ach.DefaultProvider
	if input.ACHProvider != nil {
		provider = *input.ACHProvider
	}

	current, err := s.loadPayout(ctx, input.PayoutID)
	if err != nil {
		return nil, err
	}
	processing, err := StartProcessing(current, provider, input.ForceProcess, s.now())
	if err != nil {
		s.observeRejection(current.Status, enums.PayoutStatusProcessing, err)
		return nil, mapDomainError(err)
	}
	if err := ach.CheckMinimum(current.PayoutAmount, s.ach.Minimum); err != nil {
		return nil, mapDomainError(err)
	}
	if !s.dispatcher.Supports(provider) {
		return nil, mapDomainError(fmt.Errorf("%w: %q", ach.ErrUnsupportedProvider, provider))
	}

	if err := s.persist(ctx, processing, current.Version); err != nil {
		return nil, err
	}
	// processing is committed: the dispatch and its outcome are recorded even if the caller goes away
	ctx = context.WithoutCancel(ctx)
	s.afterTransition(ctx, current, processing, input.Actor, map[string]any{
		"ach_provider":  provider,
		"force_process": input.ForceProcess,
		"test_mode":     input.TestMode,
	})

	result, dispatchErr := s.dispatch(ctx, provider, processing, input)
	if dispatchErr != nil {
		return s.failDispatch(ctx, processing, input.Actor, provider, dispatchErr)
	}

	if result.Status == ach.StatusCompleted {
		paid, err := Transition(processing, enums.PayoutStatusPaid, TransitionExtra{
			PaymentReference: &result.ReferenceID,
			ACHProvider:      &provider,
		}, s.now())
		if err != nil {
			return nil, mapDomainError(err)
		}
		applyACHResult(paid, result)
		if err := s.persist(ctx, paid, processing.Version); err != nil {
			return nil, err
		}
		s.afterTransition(ctx, processing, paid, input.Actor, map[string]any{
			"ach_provider":      provider,
			"payment_reference": result.ReferenceID,
		})
		return &ProcessACHResult{Payout: paid, Outcome: OutcomePaid, ACH: result}, nil
	}

	pending := processing.Clone()
	applyACHResult(pending, result)
	pending.PaymentReference = stringPtr(result.ReferenceID)
	pending.Version++
	pending.UpdatedAt = s.now().UTC()
	if err := s.persist(ctx, pending, processing.Version); err != nil {
		return nil, err
	}
	s.logg.Info(ctx, "payout.ach_pending")
	return &ProcessACHResult{Payout: pending, Outcome: OutcomeProcessing, ACH: result}, nil
}

func (s *service) dispatch(ctx context.Context, provider enums.ACHProvider, payout *models.CommissionPayout, input ProcessACHInput) (*ach.Result, error) {
	start := time.Now()
	if input.TestMode && s.ach.TestFailureRate > 0 && s.rand() < s.ach.TestFailureRate {
		s.metrics.ObserveDispatch(string(provider), "simulated_failure", time.Since(start))
		return nil, errSimulatedFailure
	}
	result, err := s.dispatcher.Process(ctx, provider, ach.Request{
		Amount:         payout.PayoutAmount,
		PayoutID:       payout.ID,
		AccountDetails: input.AccountDetails,
		Metadata: map[string]any{
			"transaction_id": payout.TransactionID.String(),
			"agent_id":       payout.AgentID.String(),
			"test_mode":      input.TestMode,
		},
	})
	if err != nil {
		s.metrics.ObserveDispatch(string(provider), "error", time.Since(start))
		return nil, err
	}
	s.metrics.ObserveDispatch(string(provider), string(result.Status), time.Since(start))
	return result, nil
}

func (s *service) failDispatch(ctx context.Context, processing *models.CommissionPayout, actor Actor, provider enums.ACHProvider, cause error) (*ProcessACHResult, error) {
	reason := cause.Error()
	s.logg.Warn(ctx, "payout.ach_failed: "+reason)
	failed, err := Transition(processing, enums.PayoutStatusFailed, TransitionExtra{FailureReason: &reason}, s.now())
	if err != nil {
		return nil, mapDomainError(err)
	}
	if err := s.persist(ctx, failed, processing.Version); err != nil {
		return nil, err
	}
	s.afterTransition(ctx, processing, failed, actor, map[string]any{
		"ach_provider":   provider,
		"failure_reason": reason,
	})
	return &ProcessACHResult{Payout: failed, Outcome: OutcomeFailed, FailureReason: reason}, nil
}

func (s *service) GetPayout(ctx context.Context, id uuid.UUID, actor Actor) (*models.CommissionPayout, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id is required")
	}
	payout, err := s.loadPayout(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := visibility.EnsurePayoutVisible(actor.viewer(), payout); err != nil {
		return nil, err
	}
	return payout, nil
}

func (s *service) ListPayouts(ctx context.Context, input ListInput) (pagination.Page[models.CommissionPayout], error) {
	filter := ListFilter{Status: input.Status}
	if input.Actor.viewer().IsAgent() {
		agentID := input.Actor.ID
		filter.AgentID = &agentID
	}
	rows, err := s.payouts.List(ctx, filter, input.Page)
	if err != nil {
		return pagination.Page[models.CommissionPayout]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payouts")
	}
	return pagination.BuildPage(rows, input.Page.Limit, func(p models.CommissionPayout) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	}), nil
}

func (s *service) PreviewCommission(ctx context.Context, transactionID uuid.UUID, actor Actor) (*PreviewResult, error) {
	if transactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	txn, err := s.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := visibility.EnsureTransactionVisible(actor.viewer(), txn); err != nil {
		return nil, err
	}

	plan := s.registry.Lookup(txn.AgentName)
	if txn.AgentSplitPct != nil {
		if plan, err = plan.WithAgentSplit(*txn.AgentSplitPct); err != nil {
			return nil, mapDomainError(err)
		}
	}
	deal := DealFromTransaction(txn)
	out := &PreviewResult{
		TransactionID: txn.ID,
		AgentName:     txn.AgentName,
		Deal:          deal,
		Plan:          plan,
		ActivePolicy:  s.policy,
		Policies:      map[enums.CalculationPolicy]PolicyPreview{},
	}
	var nets []decimal.Decimal
	for _, policy := range []enums.CalculationPolicy{enums.CalculationPolicyCapAware, enums.CalculationPolicySimpleSplit} {
		breakdown, err := commission.Calculate(policy, deal, plan)
		if err != nil {
			out.Policies[policy] = PolicyPreview{Error: err.Error()}
			continue
		}
		b := breakdown
		out.Policies[policy] = PolicyPreview{Breakdown: &b}
		nets = append(nets, b.AgentNet)
	}
	out.Diverges = len(nets) == 2 && !nets[0].Equal(nets[1])
	return out, nil
}

func (s *service) ListEvents(ctx context.Context, transactionID uuid.UUID, actor Actor, agentView bool) ([]models.TransactionEvent, error) {
	if transactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	txn, err := s.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	viewer := actor.viewer()
	if err := visibility.EnsureTransactionVisible(viewer, txn); err != nil {
		return nil, err
	}
	if viewer.IsAgent() {
		agentView = true
	}
	events, err := s.audit.List(ctx, txn.ID, agentView)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transaction events")
	}
	return events, nil
}

func (s *service) loadTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	txn, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return txn, nil
}

func (s *service) loadPayout(ctx context.Context, id uuid.UUID) (*models.CommissionPayout, error) {
	payout, err := s.payouts.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout")
	}
	return payout, nil
}

// persist writes updated only if the row still holds expectedVersion.
func (s *service) persist(ctx context.Context, updated *models.CommissionPayout, expectedVersion int) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.payouts.WithTx(tx).UpdateWithVersion(ctx, updated, expectedVersion); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payout was modified by another request; reload and retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payout")
		}
		return nil
	})
}

// afterTransition runs once the new status is committed: metrics, then one audit event.
func (s *service) afterTransition(ctx context.Context, before, after *models.CommissionPayout, actor Actor, extra map[string]any) {
	s.metrics.IncTransition(string(before.Status), string(after.Status))
	eventType, err := enums.AuditEventForStatus(after.Status)
	if err != nil {
		s.logg.Error(ctx, "audit.event_type_unknown", err)
		return
	}
	s.recordAudit(ctx, audit.RecordInput{
		TransactionID: after.TransactionID,
		PayoutID:      &after.ID,
		EventType:     eventType,
		ActorName:     actor.Name,
		ActorID:       actor.idPtr(),
		Metadata:      audit.TransitionMetadata(before.Status, after.Status, extra),
	})
	s.logg.Info(ctx, fmt.Sprintf("payout.transition %s -> %s", before.Status, after.Status))
}

// recordAudit never fails the caller; the state change has already committed.
func (s *service) recordAudit(ctx context.Context, input audit.RecordInput) {
	ctx = context.WithoutCancel(ctx)
	if _, err := s.audit.Record(ctx, input); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "event_type", input.EventType), "audit.record_failed", err)
	}
}

func (s *service) observeRejection(from, to enums.PayoutStatus, err error) {
	if errors.Is(err, ErrInvalidTransition) {
		s.metrics.IncRejection(string(from), string(to))
	}
}

func applyACHResult(p *models.CommissionPayout, result *ach.Result) {
	eta := result.EstimatedCompletion
	p.EstimatedCompletion = &eta
	if result.ProviderFee != nil {
		fee := *result.ProviderFee
		p.ProviderFee = &fee
	}
}

func requireWriter(actor Actor) error {
	if actor.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.Role.CanManagePayouts() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot modify payouts")
	}
	return nil
}

func duplicatePayout(transactionID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeDuplicatePayout, "a payout already exists for this transaction").
		WithDetails(map[string]any{"transaction_id": transactionID})
}

func isTransactionUniqueViolation(err error) bool {
	return db.IsUniqueViolation(err, transactionUniqueConstraint) ||
		db.IsUniqueViolation(err, "commission_payouts.transaction_id")
}

func mapDomainError(err error) *pkgerrors.Error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	var transitionErr *TransitionError
	switch {
	case errors.As(err, &transitionErr):
		return pkgerrors.Wrap(pkgerrors.CodeInvalidTransition, err,
			fmt.Sprintf("cannot move payout from %s to %s", transitionErr.From, transitionErr.To)).
			WithDetails(map[string]any{
				"current_status": transitionErr.From,
				"allowed":        AllowedTargets(transitionErr.From),
			})
	case errors.Is(err, ErrInvalidSchedule):
		return pkgerrors.Wrap(pkgerrors.CodeInvalidSchedule, err, err.Error())
	case errors.Is(err, ErrInvalidPaymentMethod):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	case errors.Is(err, ErrNonPositiveAmount),
		errors.Is(err, commission.ErrNonPositivePayout),
		errors.Is(err, commission.ErrInvalidDeal),
		errors.Is(err, commission.ErrInvalidPlan),
		errors.Is(err, commission.ErrUnknownPolicy):
		return pkgerrors.Wrap(pkgerrors.CodeCalculation, err, err.Error())
	case errors.Is(err, ach.ErrUnsupportedProvider):
		return pkgerrors.Wrap(pkgerrors.CodeUnsupportedProvider, err, err.Error())
	case errors.Is(err, ach.ErrBelowMinimum):
		return pkgerrors.Wrap(pkgerrors.CodeBelowMinimum, err, err.Error())
	case errors.Is(err, ErrVersionConflict):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, err.Error())
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected payout error")
	}
}
