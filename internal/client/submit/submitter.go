// Package submit turns raw form input into money-movement requests and
// normalizes every possible failure into a single outcome shape.
package submit

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atinyakov/NovaBank/internal/client/accounts"
	"github.com/atinyakov/NovaBank/internal/client/api"
	"github.com/atinyakov/NovaBank/internal/client/session"
	"github.com/atinyakov/NovaBank/internal/models"
)

// Kind classifies why a submission did not succeed.
type Kind int

const (
	// KindNone marks a successful outcome.
	KindNone Kind = iota
	// KindValidation means the form never left the client.
	KindValidation
	// KindAuth means the credential was missing or rejected.
	KindAuth
	// KindNetwork means the backend could not be reached.
	KindNetwork
	// KindBusiness means the backend refused the operation.
	KindBusiness
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindBusiness:
		return "business"
	default:
		return "none"
	}
}

// Outcome is the uniform result of a submission attempt.
type Outcome struct {
	OK      bool
	Kind    Kind
	Message string
}

// TransferForm is raw transfer input, exactly as the user typed it.
type TransferForm struct {
	SenderAccountID       string
	ReceiverAccountNumber string
	ReceiverName          string
	ReceiverBank          string
	Amount                string
	Description           string
}

// PaymentForm is raw bill-payment input.
type PaymentForm struct {
	SenderAccountID   string
	PaymentEntityName string
	Amount            string
	ReferenceNumber   string
	Description       string
}

// moneyMover is the slice of the API client the submitter needs.
type moneyMover interface {
	Transfer(ctx context.Context, token string, req models.TransferRequest) (string, error)
	Payment(ctx context.Context, token string, req models.PaymentRequest) (string, error)
}

// Submitter validates, dispatches and normalizes money movements. Each form
// type holds its own latch: at most one transfer and one payment may be in
// flight at a time, and concurrent attempts on the same form are rejected
// without reaching the backend.
type Submitter struct {
	api     moneyMover
	auth    *session.Authority
	catalog *accounts.Catalog
	log     *zap.Logger

	transferInFlight atomic.Bool
	paymentInFlight  atomic.Bool
}

// NewSubmitter returns an idle Submitter.
func NewSubmitter(api moneyMover, auth *session.Authority, catalog *accounts.Catalog, log *zap.Logger) *Submitter {
	return &Submitter{api: api, auth: auth, catalog: catalog, log: log}
}

// Transfer submits a transfer described by form.
func (s *Submitter) Transfer(ctx context.Context, form TransferForm) Outcome {
	req, outcome := s.validateTransfer(form)
	if !outcome.OK {
		return outcome
	}
	return s.dispatch(ctx, "transfer", &s.transferInFlight, func(token string) (string, error) {
		return s.api.Transfer(ctx, token, req)
	})
}

// Payment submits a bill payment described by form.
func (s *Submitter) Payment(ctx context.Context, form PaymentForm) Outcome {
	req, outcome := s.validatePayment(form)
	if !outcome.OK {
		return outcome
	}
	return s.dispatch(ctx, "payment", &s.paymentInFlight, func(token string) (string, error) {
		return s.api.Payment(ctx, token, req)
	})
}

func (s *Submitter) validateTransfer(form TransferForm) (models.TransferRequest, Outcome) {
	if form.SenderAccountID == "" || form.ReceiverAccountNumber == "" || form.Amount == "" {
		return models.TransferRequest{}, validation("all required fields must be filled in")
	}

	senderID, err := strconv.ParseInt(form.SenderAccountID, 10, 64)
	if err != nil {
		return models.TransferRequest{}, validation("sender account is not valid")
	}

	amount, outcome := parseAmount(form.Amount)
	if !outcome.OK {
		return models.TransferRequest{}, outcome
	}

	// Catch self-transfers locally when the receiver number resolves to
	// one of the sender's own accounts. The backend re-checks regardless.
	if own, ok := s.catalog.AccountByNumber(form.ReceiverAccountNumber); ok && own.ID == senderID {
		return models.TransferRequest{}, validation("cannot transfer to the same account")
	}

	return models.TransferRequest{
		SenderAccountID:       senderID,
		ReceiverAccountNumber: form.ReceiverAccountNumber,
		ReceiverName:          form.ReceiverName,
		ReceiverBank:          form.ReceiverBank,
		Amount:                amount,
		Description:           form.Description,
	}, Outcome{OK: true}
}

func (s *Submitter) validatePayment(form PaymentForm) (models.PaymentRequest, Outcome) {
	if form.SenderAccountID == "" || form.PaymentEntityName == "" || form.Amount == "" || form.ReferenceNumber == "" {
		return models.PaymentRequest{}, validation("all required fields must be filled in")
	}

	senderID, err := strconv.ParseInt(form.SenderAccountID, 10, 64)
	if err != nil {
		return models.PaymentRequest{}, validation("sender account is not valid")
	}

	amount, outcome := parseAmount(form.Amount)
	if !outcome.OK {
		return models.PaymentRequest{}, outcome
	}

	return models.PaymentRequest{
		SenderAccountID:   senderID,
		PaymentEntityName: form.PaymentEntityName,
		Amount:            amount,
		ReferenceNumber:   form.ReferenceNumber,
		Description:       form.Description,
	}, Outcome{OK: true}
}

// dispatch runs one guarded round trip and maps the result to an Outcome.
func (s *Submitter) dispatch(ctx context.Context, op string, latch *atomic.Bool, send func(token string) (string, error)) Outcome {
	if !latch.CompareAndSwap(false, true) {
		return validation("a submission is already in progress")
	}
	defer latch.Store(false)

	token, ok := s.auth.BearerToken()
	if !ok {
		return Outcome{Kind: KindAuth, Message: "please log in first"}
	}

	message, err := send(token)
	if err != nil {
		return s.normalize(op, err)
	}

	s.log.Info("submission accepted", zap.String("operation", op))
	return Outcome{OK: true, Message: message}
}

func (s *Submitter) normalize(op string, err error) Outcome {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.IsAuth():
		s.log.Warn("credential rejected during submission", zap.String("operation", op))
		s.auth.Invalidate()
		return Outcome{Kind: KindAuth, Message: "session expired, please log in again"}
	case errors.As(err, &apiErr):
		return Outcome{Kind: KindBusiness, Message: apiErr.Message}
	default:
		s.log.Warn("submission failed to reach backend", zap.String("operation", op), zap.Error(err))
		return Outcome{Kind: KindNetwork, Message: "could not reach the bank, please try again"}
	}
}

func parseAmount(raw string) (decimal.Decimal, Outcome) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, validation("amount is not a number")
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, validation("amount must be greater than zero")
	}
	return amount, Outcome{OK: true}
}

func validation(message string) Outcome {
	return Outcome{Kind: KindValidation, Message: message}
}
