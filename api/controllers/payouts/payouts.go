package payouts

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/closingdesk/commission-backend/api/middleware"
	"github.com/closingdesk/commission-backend/api/responses"
	"github.com/closingdesk/commission-backend/api/validators"
	internalpayouts "github.com/closingdesk/commission-backend/internal/payouts"
	"github.com/closingdesk/commission-backend/pkg/db/models"
	"github.com/closingdesk/commission-backend/pkg/enums"
	pkgerrors "github.com/closingdesk/commission-backend/pkg/errors"
	"github.com/closingdesk/commission-backend/pkg/logger"
	"github.com/closingdesk/commission-backend/pkg/pagination"
	"github.com/closingdesk/commission-backend/pkg/types"
)

const maxReasonLength = 500

type createPayoutRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,uuid"`
}

type schedulePayoutRequest struct {
	PayoutID        string             `json:"payout_id" validate:"required,uuid"`
	ScheduledDate   types.FlexibleTime `json:"scheduled_date"`
	PaymentMethod   string             `json:"payment_method" validate:"required,oneof=ach wire check manual"`
	ProviderDetails json.RawMessage    `json:"provider_details,omitempty"`
}

type updateStatusRequest struct {
	PayoutID         string              `json:"payout_id" validate:"required,uuid"`
	NewStatus        string              `json:"new_status" validate:"required"`
	PaidAt           *types.FlexibleTime `json:"paid_at,omitempty"`
	PaymentReference *string             `json:"payment_reference,omitempty"`
	ACHProvider      *string             `json:"ach_provider,omitempty"`
	FailureReason    *string             `json:"failure_reason,omitempty"`
}

type processACHRequest struct {
	PayoutID       string         `json:"payout_id" validate:"required,uuid"`
	ACHProvider    *string        `json:"ach_provider,omitempty"`
	AccountDetails map[string]any `json:"account_details,omitempty"`
	ForceProcess   bool           `json:"force_process"`
	TestMode       bool           `json:"test_mode"`
}

type payoutResponse struct {
	Payout *models.CommissionPayout `json:"payout"`
}

type eventsResponse struct {
	TransactionID uuid.UUID                 `json:"transaction_id"`
	AgentView     bool                      `json:"agent_view"`
	Events        []models.TransactionEvent `json:"events"`
}

// CreateEnhanced computes the commission for an approved deal and stores a ready payout.
func CreateEnhanced(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createPayoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateEnhancedPayout(r.Context(), internalpayouts.CreateInput{
			TransactionID: uuid.MustParse(req.TransactionID),
			Actor:         actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Schedule moves a ready payout into the payable queue for a date and payment method.
func Schedule(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req schedulePayoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.ScheduledDate.IsZero() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"scheduled_date": "is required"}))
			return
		}

		payout, err := svc.SchedulePayout(r.Context(), internalpayouts.ScheduleInput{
			PayoutID:        uuid.MustParse(req.PayoutID),
			ScheduledDate:   req.ScheduledDate.Time,
			PaymentMethod:   enums.PaymentMethod(req.PaymentMethod),
			ProviderDetails: req.ProviderDetails,
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payoutResponse{Payout: payout})
	}
}

// UpdateStatus applies a manual status transition.
func UpdateStatus(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePayoutStatus(req.NewStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid new_status").
				WithDetails(map[string]any{"allowed": enums.PayoutStatuses()}))
			return
		}
		provider, err := parseProvider(req.ACHProvider)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalpayouts.UpdateStatusInput{
			PayoutID:         uuid.MustParse(req.PayoutID),
			NewStatus:        status,
			PaymentReference: trimmed(req.PaymentReference),
			ACHProvider:      provider,
			FailureReason:    trimmed(req.FailureReason),
			Actor:            actor,
		}
		if req.PaidAt != nil {
			input.PaidAt = req.PaidAt.Ptr()
		}

		payout, err := svc.UpdatePayoutStatus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payoutResponse{Payout: payout})
	}
}

// ProcessACH dispatches the payout through an ACH provider and reports the outcome.
func ProcessACH(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req processACHRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		provider, err := parseProvider(req.ACHProvider)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ProcessACHPayment(r.Context(), internalpayouts.ProcessACHInput{
			PayoutID:       uuid.MustParse(req.PayoutID),
			ACHProvider:    provider,
			AccountDetails: req.AccountDetails,
			ForceProcess:   req.ForceProcess,
			TestMode:       req.TestMode,
			Actor:          actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Get returns a single payout.
func Get(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "payoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payout, err := svc.GetPayout(r.Context(), id, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payoutResponse{Payout: payout})
	}
}

// List pages payouts newest first. Agents only ever see their own.
func List(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))
		if _, err := pagination.ParseCursor(cursor); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		input := internalpayouts.ListInput{
			Page:  pagination.Params{Limit: limit, Cursor: cursor},
			Actor: actor,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParsePayoutStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			input.Status = &status
		}

		page, err := svc.ListPayouts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// Preview shows the commission breakdown for a transaction without storing anything.
func Preview(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		preview, err := svc.PreviewCommission(r.Context(), id, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// Events returns the audit trail for a transaction; agents get the filtered view.
func Events(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agentView, err := validators.ParseQueryBool(r, "agent_view", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !actor.Role.CanManagePayouts() {
			agentView = true
		}

		events, err := svc.ListEvents(r.Context(), id, actor, agentView)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, eventsResponse{TransactionID: id, AgentView: agentView, Events: events})
	}
}

func actorFromRequest(r *http.Request) (internalpayouts.Actor, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || identity.UserID == uuid.Nil {
		return internalpayouts.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return internalpayouts.Actor{ID: identity.UserID, Name: identity.Name, Role: identity.Role}, nil
}

func parseProvider(raw *string) (*enums.ACHProvider, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	provider, err := enums.ParseACHProvider(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnsupportedProvider, err, "unsupported ach provider").
			WithDetails(map[string]any{"ach_provider": *raw})
	}
	return &provider, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := validators.SanitizeString(*value, maxReasonLength)
	if v == "" {
		return nil
	}
	return &v
}
