package banking

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/property-server/internal/operator/actions"
)

// ConfirmMatchBody is the request body for confirming a match.
type ConfirmMatchBody struct {
	TransactionID string `json:"transactionID" required:"true" doc:"Bank transaction UUID"`
	BillID        string `json:"billID" required:"true" doc:"Bill UUID"`
}

// ConfirmMatchInput is the Huma input for confirming a match.
type ConfirmMatchInput struct {
	Body ConfirmMatchBody
}

// DismissTransactionBody is the request body for dismissing a transaction.
type DismissTransactionBody struct {
	TransactionID string `json:"transactionID" required:"true" doc:"Bank transaction UUID"`
}

// DismissTransactionInput is the Huma input for dismissing a transaction.
type DismissTransactionInput struct {
	Body DismissTransactionBody
}

// ReviewOutput is the Huma output for the review endpoints.
type ReviewOutput struct {
	Status int `json:"status" doc:"HTTP status"`
}

type matchReviewer interface {
	ConfirmMatch(ctx context.Context, transactionID, billID uuid.UUID) error
	DismissTransaction(ctx context.Context, transactionID uuid.UUID) error
}

// ReviewHandler handles POST /v1/banking/confirm and POST /v1/banking/dismiss.
type ReviewHandler struct {
	BankingService matchReviewer
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(svc matchReviewer) *ReviewHandler {
	return &ReviewHandler{BankingService: svc}
}

// Register registers the review endpoints with the Huma API.
func (h *ReviewHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "confirm-bank-match",
		Method:      http.MethodPost,
		Path:        "/v1/banking/confirm",
		Summary:     "Confirm match",
		Description: "Links a bank transaction to a bill and marks the bill as paid.",
		Tags:        []string{"Banking"},
	}, h.confirm)

	huma.Register(api, huma.Operation{
		OperationID: "dismiss-bank-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/banking/dismiss",
		Summary:     "Dismiss transaction",
		Description: "Marks a bank transaction as reviewed and not a bill payment.",
		Tags:        []string{"Banking"},
	}, h.dismiss)
}

func (h *ReviewHandler) confirm(ctx context.Context, input *ConfirmMatchInput) (*ReviewOutput, error) {
	transactionID, err := uuid.FromString(input.Body.TransactionID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid transactionID", err)
	}
	billID, err := uuid.FromString(input.Body.BillID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid billID", err)
	}

	if err := h.BankingService.ConfirmMatch(ctx, transactionID, billID); err != nil {
		return nil, reviewError(err, "failed to confirm match")
	}
	return &ReviewOutput{Status: http.StatusOK}, nil
}

func (h *ReviewHandler) dismiss(ctx context.Context, input *DismissTransactionInput) (*ReviewOutput, error) {
	transactionID, err := uuid.FromString(input.Body.TransactionID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid transactionID", err)
	}

	if err := h.BankingService.DismissTransaction(ctx, transactionID); err != nil {
		return nil, reviewError(err, "failed to dismiss transaction")
	}
	return &ReviewOutput{Status: http.StatusOK}, nil
}

func reviewError(err error, msg string) error {
	if errors.Is(err, actions.ErrTransactionNotFound) || errors.Is(err, actions.ErrBillNotFound) {
		return huma.NewError(http.StatusNotFound, err.Error())
	}
	return huma.NewError(http.StatusInternalServerError, msg, err)
}
