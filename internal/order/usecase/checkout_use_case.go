package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"cozycup/internal/domain"
	"cozycup/internal/dto"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/infrastructure/mysql"
)

const (
	maxLines        = 100
	maxLineQuantity = 1000
	maxNotesLength  = 500
	mailTimeout     = 30 * time.Second
)

type Transactor interface {
	WithinTx(ctx context.Context, fn mysql.TxFunc) error
}

type CheckoutService interface {
	PlaceOrder(ctx context.Context, tx *sql.Tx, customer domain.User, req dto.CheckoutRequest, ids []uint) (*dto.CheckoutResult, error)
}

type MenuInvalidator interface {
	InvalidateMenu(ctx context.Context)
}

type TokenIssuer interface {
	EnsureSnapToken(ctx context.Context, order *domain.Order) (string, error)
}

type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type CheckoutUseCase struct {
	tx       Transactor
	checkout CheckoutService
	menu     MenuInvalidator
	tokens   TokenIssuer
	mailer   Mailer
	logger   *zap.Logger
	async    func(func())
}

func NewCheckoutUseCase(
	tx Transactor,
	checkout CheckoutService,
	menu MenuInvalidator,
	tokens TokenIssuer,
	mailer Mailer,
	logger *zap.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		tx:       tx,
		checkout: checkout,
		menu:     menu,
		tokens:   tokens,
		mailer:   mailer,
		logger:   logger,
		async:    func(f func()) { go f() },
	}
}

// PlaceOrder validates the cart, persists the order in one transaction and
// then runs the side effects that must not roll it back: cache
// invalidation, admin email and the snap token request.
func (uc *CheckoutUseCase) PlaceOrder(ctx context.Context, customer domain.User, req dto.CheckoutRequest) (*dto.CheckoutResult, error) {
	uc.logger.Info("checkout started",
		zap.Uint("userId", customer.ID),
		zap.Int("lineCount", len(req.Lines)),
		zap.String("paymentMethod", req.PaymentMethod),
	)

	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	// ascending ids keep lock order stable across checkouts
	ids := distinctSortedIDs(req.Lines)

	var result *dto.CheckoutResult
	err := uc.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		result, err = uc.checkout.PlaceOrder(ctx, tx, customer, req, ids)
		return err
	})
	if err != nil {
		uc.logger.Warn("checkout rolled back", zap.Uint("userId", customer.ID), zap.Error(err))
		return nil, err
	}

	uc.menu.InvalidateMenu(ctx)

	if len(result.Admins) > 0 {
		buyer := result.Customer
		if buyer.ID == 0 {
			buyer = customer
		}
		uc.emailAdmins(ctx, buyer, result.Order, result.Admins)
	}

	if req.PaymentMethod != domain.PaymentMethodCash {
		token, err := uc.tokens.EnsureSnapToken(ctx, result.Order)
		if err != nil {
			uc.logger.Warn("snap token deferred", zap.Uint("orderId", result.Order.ID), zap.Error(err))
		} else {
			result.SnapToken = token
		}
	}

	return result, nil
}

func (uc *CheckoutUseCase) emailAdmins(ctx context.Context, customer domain.User, order *domain.Order, admins []domain.User) {
	to := make([]string, 0, len(admins))
	for _, a := range admins {
		if a.Email != "" {
			to = append(to, a.Email)
		}
	}
	if len(to) == 0 {
		return
	}

	n := domain.NewOrderNotification(0, *order, customer.DisplayName())
	body := fmt.Sprintf("%s\n\nOrder number: %s\nTotal: %s\n", n.Message, order.OrderNumber, order.TotalAmount.StringFixed(2))
	mailCtx := context.WithoutCancel(ctx)

	uc.async(func() {
		ctx, cancel := context.WithTimeout(mailCtx, mailTimeout)
		defer cancel()
		if err := uc.mailer.Send(ctx, to, n.Title, body); err != nil {
			uc.logger.Warn("admin order email failed", zap.Uint("orderId", order.ID), zap.Error(err))
		}
	})
}

func validateCheckout(req dto.CheckoutRequest) error {
	var details []apperrors.ValidationDetail

	field := req.LinesField
	if field == "" {
		field = "items"
	}

	if len(req.Lines) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   field,
			Message: field + " must not be empty",
		})
	}
	if len(req.Lines) > maxLines {
		details = append(details, apperrors.ValidationDetail{
			Field:   field,
			Message: field + " exceeds maximum of " + strconv.Itoa(maxLines),
		})
	}

	for idx, line := range req.Lines {
		prefix := field + "[" + strconv.Itoa(idx) + "]"
		if line.MenuItemID == 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   prefix + ".menu_item_id",
				Message: "menu_item_id is required",
			})
		}
		if line.Quantity < 1 || line.Quantity > maxLineQuantity {
			details = append(details, apperrors.ValidationDetail{
				Field:   prefix + ".quantity",
				Message: "quantity must be between 1 and " + strconv.Itoa(maxLineQuantity),
			})
		}
		if line.Price != nil && line.Price.IsNegative() {
			details = append(details, apperrors.ValidationDetail{
				Field:   prefix + ".price",
				Message: "price must be non-negative",
			})
		}
		if line.Notes != nil && utf8.RuneCountInString(*line.Notes) > maxNotesLength {
			details = append(details, apperrors.ValidationDetail{
				Field:   prefix + ".notes",
				Message: "notes must not exceed " + strconv.Itoa(maxNotesLength) + " characters",
			})
		}
	}

	if strings.TrimSpace(req.PaymentMethod) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "payment_method",
			Message: "payment_method is required",
		})
	} else if !domain.ValidPaymentMethod(req.PaymentMethod) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "payment_method",
			Message: "payment_method is invalid",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func distinctSortedIDs(lines []dto.CheckoutLine) []uint {
	seen := make(map[uint]struct{}, len(lines))
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.MenuItemID]; ok {
			continue
		}
		seen[l.MenuItemID] = struct{}{}
		ids = append(ids, l.MenuItemID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
