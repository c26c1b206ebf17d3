package services

import (
	"context"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/ledger"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/metrics"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
)

// WalletServiceProvider defines the interface for wallet operations against the ledger.
type WalletServiceProvider interface {
	CreateAccount(ctx context.Context) (models.Account, error)
	GetBalances(ctx context.Context, publicKey string) ([]models.Balance, error)
	SendPayment(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error)
}

// WalletService forwards wallet operations to the ledger gateway and counts failures.
type WalletService struct {
	gateway ledger.Gateway
	metrics *metrics.Metrics
}

// NewWalletService creates a new WalletService. m may be nil.
func NewWalletService(gateway ledger.Gateway, m *metrics.Metrics) *WalletService {
	return &WalletService{gateway: gateway, metrics: m}
}

// CreateAccount generates and funds a new testnet account.
func (s *WalletService) CreateAccount(ctx context.Context) (models.Account, error) {
	acc, err := s.gateway.CreateFundedAccount(ctx)
	if err != nil {
		s.failed("create_account")
		return models.Account{}, err
	}
	return acc, nil
}

// GetBalances lists the balances of publicKey.
func (s *WalletService) GetBalances(ctx context.Context, publicKey string) ([]models.Balance, error) {
	balances, err := s.gateway.GetBalances(ctx, publicKey)
	if err != nil {
		s.failed("balance")
		return nil, err
	}
	return balances, nil
}

// SendPayment submits a payment.
func (s *WalletService) SendPayment(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	res, err := s.gateway.SendPayment(ctx, req)
	if err != nil {
		s.failed("send")
		return models.PaymentResult{}, err
	}
	return res, nil
}

func (s *WalletService) failed(op string) {
	if s.metrics != nil {
		s.metrics.GatewayFailures.WithLabelValues(op).Inc()
	}
}
