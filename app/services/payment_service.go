package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentService struct {
	gateway PaymentGateway
	users   repositories.UserRepositoryImpl
	log     *zap.Logger
}

func NewPaymentService(gateway PaymentGateway, users repositories.UserRepositoryImpl, log *zap.Logger) *PaymentService {
	return &PaymentService{gateway: gateway, users: users, log: log}
}

// CreatePaymentIntent asks the processor for a client handle for amount.
// No local state is written and failed calls are not retried.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID uint64, amount decimal.Decimal) (*PaymentIntent, error) {
	if !amount.IsPositive() {
		return nil, NewValidationError("total_amount", "Amount must be greater than 0.")
	}
	minor := calc.ToMinorUnits(amount)
	if minor <= 0 {
		return nil, NewValidationError("total_amount", "Amount is too small to charge.")
	}

	if !s.gateway.Configured() {
		s.log.Error("payment intent requested but the processor key is not configured")
		return nil, &PaymentError{Kind: PaymentErrConfig, Message: "payment processor is not configured"}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}

	intent, err := s.gateway.CreateIntent(ctx, PaymentIntentRequest{
		AmountMinor: minor,
		Amount:      amount,
		UserID:      user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
	})
	if err != nil {
		var perr *PaymentError
		if !errors.As(err, &perr) {
			perr = &PaymentError{Kind: PaymentErrProcessor, Message: "payment processor request failed", Err: err}
		}
		s.log.Error("failed to create payment intent",
			zap.Uint64("user_id", user.ID),
			zap.String("kind", string(perr.Kind)),
			zap.Error(err),
		)
		return nil, perr
	}

	s.log.Info("payment intent created",
		zap.Uint64("user_id", user.ID),
		zap.String("payment_intent_id", intent.PaymentIntentID),
		zap.Int64("amount_minor", minor),
	)
	return intent, nil
}
