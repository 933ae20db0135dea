package payment

import (
	"database/sql"

	"go.uber.org/zap"

	"cozycup/internal/config"
	"cozycup/internal/infrastructure/mysql"
	orderrepo "cozycup/internal/order/repository"
	"cozycup/internal/payment/controller"
	"cozycup/internal/payment/gateway"
	paymentrepo "cozycup/internal/payment/repository"
	"cozycup/internal/payment/service"
	userrepo "cozycup/internal/user/repository"
)

type Module struct {
	Payments *controller.PaymentController
	Webhook  *controller.WebhookController
	Tokens   *service.TokenService
}

func NewModule(db *sql.DB, tx *mysql.Transactor, gw service.Gateway, cfg config.MidtransConfig, logger *zap.Logger) *Module {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	paymentRepo := paymentrepo.NewMySQLPaymentRepository(db)
	userRepo := userrepo.NewMySQLUserRepository(db)

	reconciler := service.NewReconciliationService(tx, orderRepo, paymentRepo, gw, cfg.VerifyPolledStatus, logger)
	payments := service.NewPaymentService(tx, orderRepo, paymentRepo, logger)

	return &Module{
		Payments: controller.NewPaymentController(payments, reconciler, logger),
		Webhook:  controller.NewWebhookController(reconciler, gateway.NewSignatureVerifier(cfg.ServerKey), logger),
		Tokens:   service.NewTokenService(paymentRepo, userRepo, gw, logger),
	}
}
