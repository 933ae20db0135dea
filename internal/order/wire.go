package order

import (
	"database/sql"

	"go.uber.org/zap"

	"cozycup/internal/config"
	"cozycup/internal/infrastructure/mysql"
	menurepo "cozycup/internal/menu/repository"
	notificationrepo "cozycup/internal/notification/repository"
	"cozycup/internal/order/controller"
	orderrepo "cozycup/internal/order/repository"
	"cozycup/internal/order/service"
	"cozycup/internal/order/usecase"
	paymentrepo "cozycup/internal/payment/repository"
	userrepo "cozycup/internal/user/repository"
)

func NewModule(
	db *sql.DB,
	tx *mysql.Transactor,
	cfg *config.Config,
	menu usecase.MenuInvalidator,
	tokens service.TokenIssuer,
	mailer usecase.Mailer,
	logger *zap.Logger,
) *controller.OrderController {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	orderItemRepo := orderrepo.NewMySQLOrderItemRepository(db)
	paymentRepo := paymentrepo.NewMySQLPaymentRepository(db)

	checkoutSvc := service.NewCheckoutService(
		menurepo.NewMySQLMenuItemRepository(db),
		orderRepo,
		orderItemRepo,
		paymentRepo,
		userrepo.NewMySQLUserRepository(db),
		notificationrepo.NewMySQLNotificationRepository(db),
		cfg.Checkout.StrictStock,
		logger,
	)
	orderSvc := service.NewOrderService(orderRepo, orderRepo, orderItemRepo, paymentRepo, tokens, logger)

	checkout := usecase.NewCheckoutUseCase(tx, checkoutSvc, menu, tokens, mailer, logger)

	return controller.NewOrderController(checkout, orderSvc, logger)
}
