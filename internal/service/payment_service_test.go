package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/gateway"
	"github.com/rallyhq/rally-core/internal/mail"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
	"gorm.io/gorm"
)

type fakeGateway struct {
	failCheckout bool
	lastParams   gateway.CheckoutParams
	sessionSeq   int
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, p gateway.CheckoutParams) (*gateway.CheckoutSession, error) {
	if f.failCheckout {
		return nil, errors.New("gateway down")
	}
	f.lastParams = p
	f.sessionSeq++
	return &gateway.CheckoutSession{
		ID:  "cs_test_1",
		URL: "https://checkout.example/cs_test_1",
	}, nil
}

func (f *fakeGateway) CreateConnectAccount(context.Context, string) (string, error) {
	return "acct_test", nil
}

func (f *fakeGateway) CreateOnboardingLink(context.Context, string) (string, error) {
	return "https://onboard.example/acct_test", nil
}

func newPaymentFixture(t *testing.T, db *gorm.DB, gw gateway.Client) *PaymentService {
	t.Helper()
	registrations := NewRegistrationService(db, testLogger())
	return NewPaymentService(db, gw, mail.NopMailer{}, registrations, testLogger())
}

func attachAccount(t *testing.T, db *gorm.DB, user *model.User, accountID string) {
	t.Helper()
	if err := repository.NewStore(db).Users.UpdateGatewayAccount(context.Background(), user.ID, accountID); err != nil {
		t.Fatalf("attach account: %v", err)
	}
}

func TestInitiateFreeEvent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newPaymentFixture(t, db, &fakeGateway{})

	_, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	buyer, _ := seedUser(t, db, "buyer@example.com", model.RoleUser)
	event := seedEvent(t, db, owner, 0, 5)

	result, err := svc.InitiatePaidRegistration(ctx, event.ID, buyer.ID)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if result.Registration.PaymentStatus != model.PaymentStatusFree {
		t.Fatalf("expected free status, got %s", result.Registration.PaymentStatus)
	}
	if result.CheckoutURL != "" {
		t.Fatalf("free event must not open a checkout session")
	}
}

func TestInitiateNoGatewayAccount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newPaymentFixture(t, db, &fakeGateway{})

	_, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	buyer, buyerProfile := seedUser(t, db, "buyer@example.com", model.RoleUser)
	event := seedEvent(t, db, owner, 20, 5)

	_, err := svc.InitiatePaidRegistration(ctx, event.ID, buyer.ID)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict without onboarding, got %v", err)
	}

	// no registration row may exist after the refusal
	reg, err := repository.NewStore(db).Registrations.GetByProfileAndEvent(ctx, buyerProfile.ID, event.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if reg != nil {
		t.Fatalf("refused checkout left a registration behind")
	}
}

func TestInitiatePaidEvent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := newPaymentFixture(t, db, gw)

	organizer, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	buyer, _ := seedUser(t, db, "buyer@example.com", model.RoleUser)
	attachAccount(t, db, organizer, "acct_org")
	event := seedEvent(t, db, owner, 20, 5)

	result, err := svc.InitiatePaidRegistration(ctx, event.ID, buyer.ID)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if result.Registration.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("expected pending status, got %s", result.Registration.PaymentStatus)
	}
	if result.CheckoutURL == "" {
		t.Fatalf("expected a checkout url")
	}

	if gw.lastParams.AmountCents != 2000 {
		t.Fatalf("expected 2000 cents gross, got %d", gw.lastParams.AmountCents)
	}
	if gw.lastParams.FeeCents != 100 {
		t.Fatalf("expected 100 cents fee, got %d", gw.lastParams.FeeCents)
	}
	if gw.lastParams.DestinationAccount != "acct_org" {
		t.Fatalf("wrong destination account %q", gw.lastParams.DestinationAccount)
	}
	if gw.lastParams.Metadata["registration_id"] != result.Registration.ID.String() {
		t.Fatalf("metadata missing registration id")
	}

	payment, err := repository.NewStore(db).Payments.GetBySessionID(ctx, result.SessionID)
	if err != nil || payment == nil {
		t.Fatalf("payment row missing: %v", err)
	}
	if payment.Status != model.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %s", payment.Status)
	}
	if payment.Amount != 19 || payment.Fee != 1 || payment.BrutAmount != 20 {
		t.Fatalf("wrong split: net=%v fee=%v gross=%v", payment.Amount, payment.Fee, payment.BrutAmount)
	}
}

func TestInitiateGatewayFailureCompensates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newPaymentFixture(t, db, &fakeGateway{failCheckout: true})

	organizer, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	buyer, buyerProfile := seedUser(t, db, "buyer@example.com", model.RoleUser)
	attachAccount(t, db, organizer, "acct_org")
	event := seedEvent(t, db, owner, 20, 5)

	_, err := svc.InitiatePaidRegistration(ctx, event.ID, buyer.ID)
	if apperr.KindOf(err) != apperr.KindGateway {
		t.Fatalf("expected gateway error, got %v", err)
	}

	reg, err := repository.NewStore(db).Registrations.GetByProfileAndEvent(ctx, buyerProfile.ID, event.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if reg != nil {
		t.Fatalf("failed checkout left a registration behind")
	}
}

func TestInitiateExistingRegistrationConflicts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newPaymentFixture(t, db, &fakeGateway{})

	organizer, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	buyer, _ := seedUser(t, db, "buyer@example.com", model.RoleUser)
	attachAccount(t, db, organizer, "acct_org")
	event := seedEvent(t, db, owner, 20, 5)

	if _, err := svc.InitiatePaidRegistration(ctx, event.ID, buyer.ID); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := svc.InitiatePaidRegistration(ctx, event.ID, buyer.ID); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict on second checkout, got %v", err)
	}
}

func checkoutFixture(t *testing.T, db *gorm.DB, svc *PaymentService) (*CheckoutResult, *model.User) {
	t.Helper()
	ctx := context.Background()
	organizer, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	buyer, _ := seedUser(t, db, "buyer@example.com", model.RoleUser)
	attachAccount(t, db, organizer, "acct_org")
	event := seedEvent(t, db, owner, 20, 5)

	result, err := svc.InitiatePaidRegistration(ctx, event.ID, buyer.ID)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	return result, buyer
}

func TestWebhookCompletedThenReplay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newPaymentFixture(t, db, &fakeGateway{})
	result, _ := checkoutFixture(t, db, svc)

	ev := &gateway.WebhookEvent{
		Type:            gateway.EventCheckoutCompleted,
		SessionID:       result.SessionID,
		PaymentIntentID: "pi_1",
		Metadata:        map[string]string{"registration_id": result.Registration.ID.String()},
	}
	if err := svc.HandleWebhook(ctx, ev); err != nil {
		t.Fatalf("webhook: %v", err)
	}

	store := repository.NewStore(db)
	payment, err := store.Payments.GetBySessionID(ctx, result.SessionID)
	if err != nil || payment == nil {
		t.Fatalf("payment lookup: %v", err)
	}
	if payment.Status != model.PaymentStatusSuccess {
		t.Fatalf("expected success, got %s", payment.Status)
	}
	if payment.PaymentIntentID != "pi_1" {
		t.Fatalf("intent id not recorded")
	}
	reg, err := store.Registrations.GetByID(ctx, result.Registration.ID)
	if err != nil {
		t.Fatalf("registration lookup: %v", err)
	}
	if reg.PaymentStatus != model.PaymentStatusSuccess {
		t.Fatalf("expected success registration, got %s", reg.PaymentStatus)
	}

	// terminal replay must change nothing
	ev.Type = gateway.EventCheckoutFailed
	if err := svc.HandleWebhook(ctx, ev); err != nil {
		t.Fatalf("replay: %v", err)
	}
	payment, _ = store.Payments.GetBySessionID(ctx, result.SessionID)
	if payment.Status != model.PaymentStatusSuccess {
		t.Fatalf("terminal status overwritten to %s", payment.Status)
	}
	if reg, _ := store.Registrations.GetByID(ctx, result.Registration.ID); reg == nil {
		t.Fatalf("replayed failure purged a confirmed registration")
	}
}

func TestWebhookFailedPurgesRegistration(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newPaymentFixture(t, db, &fakeGateway{})
	result, _ := checkoutFixture(t, db, svc)

	ev := &gateway.WebhookEvent{
		Type:      gateway.EventCheckoutFailed,
		SessionID: result.SessionID,
		Metadata:  map[string]string{"registration_id": result.Registration.ID.String()},
	}
	if err := svc.HandleWebhook(ctx, ev); err != nil {
		t.Fatalf("webhook: %v", err)
	}

	store := repository.NewStore(db)
	payment, _ := store.Payments.GetBySessionID(ctx, result.SessionID)
	if payment.Status != model.PaymentStatusFailed {
		t.Fatalf("expected failed payment, got %s", payment.Status)
	}
	if _, err := store.Registrations.GetByID(ctx, result.Registration.ID); err == nil {
		t.Fatalf("failed payment left the registration in place")
	}
}

func TestWebhookFailureRollsBackPayment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newPaymentFixture(t, db, &fakeGateway{})
	result, _ := checkoutFixture(t, db, svc)

	// break the audit table so the last write inside the transaction fails
	if err := db.Migrator().DropTable(&model.ActionLog{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	ev := &gateway.WebhookEvent{
		Type:            gateway.EventCheckoutCompleted,
		SessionID:       result.SessionID,
		PaymentIntentID: "pi_1",
		Metadata:        map[string]string{"registration_id": result.Registration.ID.String()},
	}
	if err := svc.HandleWebhook(ctx, ev); err == nil {
		t.Fatalf("expected the webhook to fail")
	}

	store := repository.NewStore(db)
	payment, err := store.Payments.GetBySessionID(ctx, result.SessionID)
	if err != nil || payment == nil {
		t.Fatalf("payment lookup: %v", err)
	}
	if payment.Status != model.PaymentStatusPending {
		t.Fatalf("payment status committed without the registration, got %s", payment.Status)
	}
	reg, err := store.Registrations.GetByID(ctx, result.Registration.ID)
	if err != nil {
		t.Fatalf("registration lookup: %v", err)
	}
	if reg.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("registration status committed without the payment, got %s", reg.PaymentStatus)
	}
}

func TestWebhookUnknownSessionIgnored(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentFixture(t, db, &fakeGateway{})

	ev := &gateway.WebhookEvent{
		Type:      gateway.EventCheckoutCompleted,
		SessionID: "cs_unknown",
	}
	if err := svc.HandleWebhook(context.Background(), ev); err != nil {
		t.Fatalf("unknown session must be dropped, got %v", err)
	}
}

func TestWebhookAccountUpdated(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newPaymentFixture(t, db, &fakeGateway{})

	user, _ := seedUser(t, db, "planner@example.com", model.RoleUser)

	ev := &gateway.WebhookEvent{
		Type:             gateway.EventAccountUpdated,
		AccountID:        "acct_new",
		Email:            user.Email,
		DetailsSubmitted: true,
	}
	if err := svc.HandleWebhook(ctx, ev); err != nil {
		t.Fatalf("webhook: %v", err)
	}

	updated, err := repository.NewStore(db).Users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if updated.GatewayAccountID != "acct_new" {
		t.Fatalf("account id not attached, got %q", updated.GatewayAccountID)
	}
}

func TestOnboard(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newPaymentFixture(t, db, &fakeGateway{})

	user, _ := seedUser(t, db, "planner@example.com", model.RoleUser)

	link, err := svc.Onboard(ctx, user.ID)
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if link == "" {
		t.Fatalf("expected an onboarding link")
	}

	updated, err := repository.NewStore(db).Users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if updated.GatewayAccountID != "acct_test" {
		t.Fatalf("connect account not persisted, got %q", updated.GatewayAccountID)
	}
}
