package service

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/gateway"
	"github.com/rallyhq/rally-core/internal/mail"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

// Platform cut withheld from each ticket sale.
const platformFeeRate = 0.05

type PaymentService struct {
	db            *gorm.DB
	store         *repository.Store
	gateway       gateway.Client
	mailer        mail.Mailer
	registrations *RegistrationService
	log           *zap.Logger
}

func NewPaymentService(db *gorm.DB, gw gateway.Client, mailer mail.Mailer, registrations *RegistrationService, log *zap.Logger) *PaymentService {
	return &PaymentService{
		db:            db,
		store:         repository.NewStore(db),
		gateway:       gw,
		mailer:        mailer,
		registrations: registrations,
		log:           log,
	}
}

// CheckoutResult is what the buyer gets back. Free events have no URL; the
// registration is already final.
type CheckoutResult struct {
	Registration *model.Registration
	CheckoutURL  string
	SessionID    string
}

// InitiatePaidRegistration reserves a place and, for paid events, opens a
// checkout session. The reserved place is released again if the gateway or
// the payment record fails.
func (s *PaymentService) InitiatePaidRegistration(ctx context.Context, eventID, buyerUserID uuid.UUID) (*CheckoutResult, error) {
	buyer, err := resolveUser(ctx, s.store, buyerUserID)
	if err != nil {
		return nil, err
	}
	buyerProfile, err := resolveProfileByUser(ctx, s.store, buyer.ID)
	if err != nil {
		return nil, err
	}
	event, err := resolveEvent(ctx, s.store, eventID)
	if err != nil {
		return nil, err
	}

	if event.Price == 0 {
		registration, err := s.registrations.create(ctx, buyerProfile, event, model.PaymentStatusFree, true)
		if err != nil {
			return nil, err
		}
		return &CheckoutResult{Registration: registration}, nil
	}

	organizerProfile, err := resolveProfile(ctx, s.store, event.ProfileID)
	if err != nil {
		return nil, err
	}
	organizer, err := resolveUser(ctx, s.store, organizerProfile.UserID)
	if err != nil {
		return nil, err
	}
	if organizer.GatewayAccountID == "" {
		return nil, apperr.Conflict("organizer has not completed payment onboarding")
	}

	registration, err := s.registrations.create(ctx, buyerProfile, event, model.PaymentStatusPending, false)
	if err != nil {
		return nil, err
	}

	grossCents := int64(math.Round(event.Price * 100))
	feeCents := int64(math.Round(event.Price * 100 * platformFeeRate))
	fee := event.Price * platformFeeRate
	net := event.Price - fee

	session, err := s.gateway.CreateCheckoutSession(ctx, gateway.CheckoutParams{
		AmountCents:        grossCents,
		FeeCents:           feeCents,
		Description:        event.Title,
		DestinationAccount: organizer.GatewayAccountID,
		Metadata: map[string]string{
			"buyer_id":        buyer.ID.String(),
			"organizer_id":    organizer.ID.String(),
			"event_id":        event.ID.String(),
			"registration_id": registration.ID.String(),
			"brut_amount":     strconv.FormatFloat(event.Price, 'f', 2, 64),
			"fee":             strconv.FormatFloat(fee, 'f', 2, 64),
		},
	})
	if err != nil {
		s.compensate(ctx, registration.ID)
		return nil, apperr.Gateway("create checkout session", err)
	}

	payment := &model.Payment{
		EventID:        &event.ID,
		EventTitle:     event.Title,
		BuyerID:        &buyer.ID,
		BuyerEmail:     buyer.Email,
		OrganizerID:    &organizer.ID,
		OrganizerEmail: organizer.Email,
		Amount:         net,
		Fee:            fee,
		BrutAmount:     event.Price,
		SessionID:      session.ID,
		Status:         model.PaymentStatusPending,
	}
	if err := s.store.Payments.Create(ctx, payment); err != nil {
		s.compensate(ctx, registration.ID)
		return nil, apperr.Internal("create payment", err)
	}

	s.log.Info("checkout session opened",
		zap.String("session_id", session.ID),
		zap.String("event_id", event.ID.String()),
		zap.String("buyer_id", buyer.ID.String()),
	)
	return &CheckoutResult{
		Registration: registration,
		CheckoutURL:  session.URL,
		SessionID:    session.ID,
	}, nil
}

// compensate releases a reserved place after a failed checkout setup.
func (s *PaymentService) compensate(ctx context.Context, registrationID uuid.UUID) {
	if err := s.store.Registrations.Delete(ctx, registrationID); err != nil {
		s.log.Error("compensating registration delete failed",
			zap.String("registration_id", registrationID.String()),
			zap.Error(err),
		)
	}
}

// HandleWebhook applies an inbound gateway notification. Replays of a
// terminal notification are no-ops, unknown sessions are logged and dropped.
func (s *PaymentService) HandleWebhook(ctx context.Context, ev *gateway.WebhookEvent) error {
	switch ev.Type {
	case gateway.EventAccountUpdated:
		return s.handleAccountUpdated(ctx, ev)
	case gateway.EventCheckoutCompleted:
		return s.handleCheckoutResolved(ctx, ev, model.PaymentStatusSuccess)
	case gateway.EventCheckoutPending:
		return s.handleCheckoutResolved(ctx, ev, model.PaymentStatusPending)
	case gateway.EventCheckoutFailed, gateway.EventCheckoutExpired:
		return s.handleCheckoutResolved(ctx, ev, model.PaymentStatusFailed)
	default:
		return nil
	}
}

func (s *PaymentService) handleAccountUpdated(ctx context.Context, ev *gateway.WebhookEvent) error {
	if !ev.DetailsSubmitted || ev.Email == "" {
		return nil
	}
	user, err := s.store.Users.GetByEmail(ctx, ev.Email)
	if err != nil {
		s.log.Warn("account update for unknown user", zap.String("email", ev.Email))
		return nil
	}
	if err := s.store.Users.UpdateGatewayAccount(ctx, user.ID, ev.AccountID); err != nil {
		return apperr.Internal("attach gateway account", err)
	}
	s.log.Info("gateway account attached",
		zap.String("user_id", user.ID.String()),
		zap.String("account_id", ev.AccountID),
	)
	return nil
}

func (s *PaymentService) handleCheckoutResolved(ctx context.Context, ev *gateway.WebhookEvent, status model.PaymentStatus) error {
	payment, err := s.store.Payments.GetBySessionID(ctx, ev.SessionID)
	if err != nil {
		return apperr.Internal("load payment", err)
	}
	if payment == nil {
		s.log.Warn("webhook for unknown session", zap.String("session_id", ev.SessionID))
		return nil
	}
	if payment.Status == model.PaymentStatusSuccess || payment.Status == model.PaymentStatusFailed {
		return nil
	}

	registrationID, hasRegistration := parseRegistrationID(ev.Metadata)

	// Payment status and registration state move together or not at all.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		if err := st.Payments.UpdateStatus(ctx, payment.ID, status, ev.PaymentIntentID); err != nil {
			return apperr.Internal("update payment status", err)
		}
		switch status {
		case model.PaymentStatusSuccess:
			if hasRegistration {
				if err := st.Registrations.UpdateStatus(ctx, registrationID, model.PaymentStatusSuccess); err != nil {
					return apperr.Internal("update registration status", err)
				}
			}
			return recordAction(ctx, st.ActionLogs, payment.BuyerID, model.LogLevelInfo, model.ActionEventRegistered,
				"paid registration confirmed",
				map[string]any{"session_id": payment.SessionID})
		case model.PaymentStatusPending:
			if hasRegistration {
				if err := st.Registrations.UpdateStatus(ctx, registrationID, model.PaymentStatusPending); err != nil {
					return apperr.Internal("update registration status", err)
				}
			}
			return nil
		case model.PaymentStatusFailed:
			if hasRegistration {
				if err := st.Registrations.Delete(ctx, registrationID); err != nil {
					return apperr.Internal("purge registration", err)
				}
			}
			return recordAction(ctx, st.ActionLogs, payment.BuyerID, model.LogLevelWarning, model.ActionRegistrationPurged,
				"registration purged after failed payment",
				map[string]any{"session_id": payment.SessionID})
		}
		return nil
	})
	if err != nil {
		return err
	}

	switch status {
	case model.PaymentStatusSuccess:
		s.sendReceipt(ctx, payment)
		s.log.Info("payment completed", zap.String("session_id", payment.SessionID))
	case model.PaymentStatusFailed:
		s.log.Warn("payment failed, registration purged", zap.String("session_id", payment.SessionID))
	}
	return nil
}

func parseRegistrationID(metadata map[string]string) (uuid.UUID, bool) {
	raw, ok := metadata["registration_id"]
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// sendReceipt is best-effort; a failed delivery never affects payment state.
func (s *PaymentService) sendReceipt(ctx context.Context, payment *model.Payment) {
	body := fmt.Sprintf(
		"<p>Your payment of %.2f EUR for <strong>%s</strong> is confirmed.</p>",
		payment.BrutAmount, payment.EventTitle,
	)
	if err := s.mailer.Send(ctx, payment.BuyerEmail, "Your ticket is confirmed", body); err != nil {
		s.log.Warn("receipt email failed",
			zap.String("buyer_email", payment.BuyerEmail),
			zap.Error(err),
		)
	}
}

// Onboard provisions a connected account for the user if needed and returns
// a fresh onboarding link.
func (s *PaymentService) Onboard(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := resolveUser(ctx, s.store, userID)
	if err != nil {
		return "", err
	}

	accountID := user.GatewayAccountID
	if accountID == "" {
		accountID, err = s.gateway.CreateConnectAccount(ctx, user.Email)
		if err != nil {
			return "", apperr.Gateway("create connect account", err)
		}
		if err := s.store.Users.UpdateGatewayAccount(ctx, user.ID, accountID); err != nil {
			return "", apperr.Internal("attach gateway account", err)
		}
	}

	link, err := s.gateway.CreateOnboardingLink(ctx, accountID)
	if err != nil {
		return "", apperr.Gateway("create onboarding link", err)
	}
	return link, nil
}

func (s *PaymentService) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]model.Payment, error) {
	payments, err := s.store.Payments.ListByBuyer(ctx, buyerID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("list payments", err)
	}
	return payments, nil
}
