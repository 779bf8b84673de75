package submit

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/NovaBank/internal/client/accounts"
	"github.com/atinyakov/NovaBank/internal/client/api"
	"github.com/atinyakov/NovaBank/internal/client/credstore"
	"github.com/atinyakov/NovaBank/internal/client/session"
	"github.com/atinyakov/NovaBank/internal/models"
	"github.com/atinyakov/NovaBank/internal/token"
)

// fakeMoneyMover implements moneyMover for testing.
type fakeMoneyMover struct {
	transferMsg   string
	transferErr   error
	transferCalls int
	lastTransfer  models.TransferRequest
	paymentMsg    string
	paymentErr    error
	paymentCalls  int
	started       chan struct{} // when set, receives once Transfer is entered
	block         chan struct{} // when set, Transfer blocks until closed
}

func (f *fakeMoneyMover) Transfer(ctx context.Context, token string, req models.TransferRequest) (string, error) {
	f.transferCalls++
	f.lastTransfer = req
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.transferMsg, f.transferErr
}

func (f *fakeMoneyMover) Payment(ctx context.Context, token string, req models.PaymentRequest) (string, error) {
	f.paymentCalls++
	return f.paymentMsg, f.paymentErr
}

// fakeDashboard feeds the catalog a fixed snapshot.
type fakeDashboard struct {
	response models.DashboardResponse
}

func (f *fakeDashboard) Dashboard(ctx context.Context, token string) (models.DashboardResponse, error) {
	return f.response, nil
}

func newTestSubmitter(t *testing.T, mover *fakeMoneyMover, owned []models.Account) (*Submitter, *session.Authority) {
	t.Helper()

	store := credstore.New(filepath.Join(t.TempDir(), "credentials.json"))
	auth := session.NewAuthority(store, zap.NewNop())
	auth.Bootstrap()

	provider := token.NewProvider("submit-test-secret", time.Hour)
	signed, _, err := provider.Issue(models.ClientProfile{ID: 7})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if _, err := auth.Establish(signed, nil); err != nil {
		t.Fatalf("failed to establish session: %v", err)
	}

	catalog := accounts.NewCatalog(&fakeDashboard{response: models.DashboardResponse{Accounts: owned}}, auth, zap.NewNop())
	if owned != nil {
		if _, err := catalog.Refresh(context.Background()); err != nil {
			t.Fatalf("failed to prime catalog: %v", err)
		}
	}

	return NewSubmitter(mover, auth, catalog, zap.NewNop()), auth
}

func validTransferForm() TransferForm {
	return TransferForm{
		SenderAccountID:       "1",
		ReceiverAccountNumber: "002-1",
		ReceiverName:          "Ben Ortiz",
		ReceiverBank:          "NovaBank",
		Amount:                "50.00",
		Description:           "rent",
	}
}

func TestSubmitter_Transfer_Success(t *testing.T) {
	mover := &fakeMoneyMover{transferMsg: "transfer completed successfully"}
	submitter, _ := newTestSubmitter(t, mover, nil)

	outcome := submitter.Transfer(context.Background(), validTransferForm())
	if !outcome.OK {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if outcome.Message != "transfer completed successfully" {
		t.Errorf("unexpected message %q", outcome.Message)
	}
	if mover.transferCalls != 1 {
		t.Errorf("expected 1 API call, got %d", mover.transferCalls)
	}
	if mover.lastTransfer.SenderAccountID != 1 || mover.lastTransfer.Amount.String() != "50" {
		t.Errorf("unexpected request: %+v", mover.lastTransfer)
	}
}

func TestSubmitter_Transfer_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TransferForm)
	}{
		{name: "missing sender", mutate: func(f *TransferForm) { f.SenderAccountID = "" }},
		{name: "missing receiver", mutate: func(f *TransferForm) { f.ReceiverAccountNumber = "" }},
		{name: "missing amount", mutate: func(f *TransferForm) { f.Amount = "" }},
		{name: "sender not numeric", mutate: func(f *TransferForm) { f.SenderAccountID = "first" }},
		{name: "amount not numeric", mutate: func(f *TransferForm) { f.Amount = "fifty" }},
		{name: "amount zero", mutate: func(f *TransferForm) { f.Amount = "0" }},
		{name: "amount negative", mutate: func(f *TransferForm) { f.Amount = "-5" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mover := &fakeMoneyMover{}
			submitter, _ := newTestSubmitter(t, mover, nil)

			form := validTransferForm()
			tt.mutate(&form)

			outcome := submitter.Transfer(context.Background(), form)
			if outcome.OK || outcome.Kind != KindValidation {
				t.Fatalf("expected validation failure, got %+v", outcome)
			}
			if mover.transferCalls != 0 {
				t.Errorf("validation failure must not reach the backend, got %d calls", mover.transferCalls)
			}
		})
	}
}

func TestSubmitter_Transfer_SelfTransfer(t *testing.T) {
	mover := &fakeMoneyMover{}
	owned := []models.Account{{ID: 1, ClientID: 7, AccountNumber: "007-1"}}
	submitter, _ := newTestSubmitter(t, mover, owned)

	form := validTransferForm()
	form.SenderAccountID = "1"
	form.ReceiverAccountNumber = "007-1"

	outcome := submitter.Transfer(context.Background(), form)
	if outcome.OK || outcome.Kind != KindValidation {
		t.Fatalf("expected validation failure, got %+v", outcome)
	}
	if mover.transferCalls != 0 {
		t.Error("self-transfer must be caught before the backend")
	}
}

func TestSubmitter_Transfer_NotLoggedIn(t *testing.T) {
	mover := &fakeMoneyMover{}
	submitter, auth := newTestSubmitter(t, mover, nil)
	auth.Invalidate()

	outcome := submitter.Transfer(context.Background(), validTransferForm())
	if outcome.OK || outcome.Kind != KindAuth {
		t.Fatalf("expected auth failure, got %+v", outcome)
	}
	if mover.transferCalls != 0 {
		t.Error("expected no API call without a credential")
	}
}

func TestSubmitter_Transfer_CredentialRejected(t *testing.T) {
	mover := &fakeMoneyMover{transferErr: &api.Error{Status: http.StatusUnauthorized, Message: "token expired"}}
	submitter, auth := newTestSubmitter(t, mover, nil)

	outcome := submitter.Transfer(context.Background(), validTransferForm())
	if outcome.OK || outcome.Kind != KindAuth {
		t.Fatalf("expected auth failure, got %+v", outcome)
	}
	if auth.Current().State != session.StateAnonymous {
		t.Error("credential rejection must invalidate the session")
	}
}

func TestSubmitter_Transfer_BusinessRejection(t *testing.T) {
	mover := &fakeMoneyMover{transferErr: &api.Error{Status: http.StatusBadRequest, Message: "insufficient funds"}}
	submitter, auth := newTestSubmitter(t, mover, nil)

	outcome := submitter.Transfer(context.Background(), validTransferForm())
	if outcome.OK || outcome.Kind != KindBusiness {
		t.Fatalf("expected business failure, got %+v", outcome)
	}
	if outcome.Message != "insufficient funds" {
		t.Errorf("expected server message to surface, got %q", outcome.Message)
	}
	if auth.Current().State != session.StateAuthenticated {
		t.Error("business rejection must not invalidate the session")
	}
}

func TestSubmitter_Transfer_NetworkFailure(t *testing.T) {
	mover := &fakeMoneyMover{transferErr: errors.New("dial tcp: connection refused")}
	submitter, auth := newTestSubmitter(t, mover, nil)

	outcome := submitter.Transfer(context.Background(), validTransferForm())
	if outcome.OK || outcome.Kind != KindNetwork {
		t.Fatalf("expected network failure, got %+v", outcome)
	}
	if auth.Current().State != session.StateAuthenticated {
		t.Error("network failure must not invalidate the session")
	}
}

func TestSubmitter_Transfer_SingleFlight(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)
	mover := &fakeMoneyMover{transferMsg: "transfer completed successfully", started: started, block: block}
	submitter, _ := newTestSubmitter(t, mover, nil)

	first := make(chan Outcome, 1)
	go func() {
		first <- submitter.Transfer(context.Background(), validTransferForm())
	}()

	// Wait until the first submission holds the latch.
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never reached the backend")
	}

	second := submitter.Transfer(context.Background(), validTransferForm())
	if second.OK || second.Kind != KindValidation {
		t.Fatalf("expected concurrent submission to be rejected, got %+v", second)
	}

	// Each form holds its own latch: a payment proceeds while the
	// transfer is still in flight.
	payment := submitter.Payment(context.Background(), PaymentForm{
		SenderAccountID:   "1",
		PaymentEntityName: "City Power",
		Amount:            "30.00",
		ReferenceNumber:   "REF-42",
	})
	if !payment.OK {
		t.Fatalf("expected payment to proceed during a transfer, got %+v", payment)
	}
	if mover.paymentCalls != 1 {
		t.Errorf("expected 1 payment call, got %d", mover.paymentCalls)
	}

	close(block)
	if outcome := <-first; !outcome.OK {
		t.Fatalf("expected first submission to succeed, got %+v", outcome)
	}
	if mover.transferCalls != 1 {
		t.Errorf("expected exactly 1 API call, got %d", mover.transferCalls)
	}

	// The latch must be released after completion.
	if outcome := submitter.Transfer(context.Background(), validTransferForm()); !outcome.OK {
		t.Errorf("expected latch to be free after completion, got %+v", outcome)
	}
}

func TestSubmitter_Payment_Success(t *testing.T) {
	mover := &fakeMoneyMover{paymentMsg: "payment completed successfully"}
	submitter, _ := newTestSubmitter(t, mover, nil)

	outcome := submitter.Payment(context.Background(), PaymentForm{
		SenderAccountID:   "1",
		PaymentEntityName: "City Power",
		Amount:            "30.00",
		ReferenceNumber:   "REF-42",
	})
	if !outcome.OK {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if mover.paymentCalls != 1 {
		t.Errorf("expected 1 API call, got %d", mover.paymentCalls)
	}
}

func TestSubmitter_Payment_MissingReference(t *testing.T) {
	mover := &fakeMoneyMover{}
	submitter, _ := newTestSubmitter(t, mover, nil)

	outcome := submitter.Payment(context.Background(), PaymentForm{
		SenderAccountID:   "1",
		PaymentEntityName: "City Power",
		Amount:            "30.00",
	})
	if outcome.OK || outcome.Kind != KindValidation {
		t.Fatalf("expected validation failure, got %+v", outcome)
	}
	if mover.paymentCalls != 0 {
		t.Error("validation failure must not reach the backend")
	}
}
