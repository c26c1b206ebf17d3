// Package ledger adapts the Stellar Horizon API and the Friendbot faucet to the
// three operations the wallet needs.
package ledger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/apperr"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
)

const (
	// DefaultHorizonURL is the public testnet Horizon instance.
	DefaultHorizonURL = "https://horizon-testnet.stellar.org"

	// DefaultFriendbotURL is the public testnet faucet.
	DefaultFriendbotURL = "https://friendbot.stellar.org"

	// paymentTimeout bounds the validity window of submitted transactions, in seconds.
	paymentTimeout = 60

	// maxFaucetBody caps how much of a faucet error body is echoed back.
	maxFaucetBody = 4 << 10
)

// Gateway is the wallet's view of the ledger.
type Gateway interface {
	CreateFundedAccount(ctx context.Context) (models.Account, error)
	GetBalances(ctx context.Context, publicKey string) ([]models.Balance, error)
	SendPayment(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error)
}

// Config holds the endpoints and network the gateway talks to.
type Config struct {
	HorizonURL        string
	FriendbotURL      string
	NetworkPassphrase string
	Timeout           time.Duration
}

// HorizonGateway implements Gateway with the Stellar Go SDK.
type HorizonGateway struct {
	horizon    horizonclient.ClientInterface
	httpClient *http.Client
	friendbot  string
	passphrase string
}

// New builds a gateway from cfg, filling testnet defaults for empty fields.
func New(cfg Config) *HorizonGateway {
	if cfg.HorizonURL == "" {
		cfg.HorizonURL = DefaultHorizonURL
	}
	if cfg.FriendbotURL == "" {
		cfg.FriendbotURL = DefaultFriendbotURL
	}
	if cfg.NetworkPassphrase == "" {
		cfg.NetworkPassphrase = network.TestNetworkPassphrase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	horizon := &horizonclient.Client{
		HorizonURL: strings.TrimSuffix(cfg.HorizonURL, "/") + "/",
		HTTP:       httpClient,
	}
	return NewWithClient(horizon, httpClient, cfg.FriendbotURL, cfg.NetworkPassphrase)
}

// NewWithClient builds a gateway around an existing Horizon client.
func NewWithClient(horizon horizonclient.ClientInterface, httpClient *http.Client, friendbotURL, passphrase string) *HorizonGateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HorizonGateway{
		horizon:    horizon,
		httpClient: httpClient,
		friendbot:  friendbotURL,
		passphrase: passphrase,
	}
}

// CreateFundedAccount generates a keypair and asks the faucet to fund it.
func (g *HorizonGateway) CreateFundedAccount(ctx context.Context) (models.Account, error) {
	kp, err := keypair.Random()
	if err != nil {
		return models.Account{}, apperr.Wrap(apperr.KindFundingFailed, "generate keypair", err)
	}

	if err := g.fund(ctx, kp.Address()); err != nil {
		return models.Account{}, err
	}

	return models.Account{
		PublicKey: kp.Address(),
		SecretKey: kp.Seed(),
		Funded:    true,
	}, nil
}

func (g *HorizonGateway) fund(ctx context.Context, address string) error {
	u, err := url.Parse(g.friendbot)
	if err != nil {
		return apperr.Wrap(apperr.KindFundingFailed, "invalid friendbot url", err)
	}
	q := u.Query()
	q.Set("addr", address)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return apperr.Wrap(apperr.KindFundingFailed, "build friendbot request", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindFundingFailed, "friendbot request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxFaucetBody))
		return apperr.New(apperr.KindFundingFailed,
			fmt.Sprintf("Friendbot failed: %d %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// GetBalances loads the account and lists its balances. The native asset is labelled
// XLM, issued assets by their code.
func (g *HorizonGateway) GetBalances(ctx context.Context, publicKey string) ([]models.Balance, error) {
	if strings.TrimSpace(publicKey) == "" {
		return nil, apperr.Invalid("public key is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	account, err := g.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: publicKey})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAccountLookupFailed, "Failed to fetch balance", err).WithDetail(problemDetail(err))
	}

	balances := make([]models.Balance, 0, len(account.Balances))
	for _, b := range account.Balances {
		balances = append(balances, models.Balance{
			Asset:  assetLabel(b),
			Amount: b.Balance,
		})
	}
	return balances, nil
}

func assetLabel(b hProtocol.Balance) string {
	if b.Asset.Type == "native" {
		return models.NativeAsset
	}
	return b.Asset.Code
}

// SendPayment signs and submits a single payment operation from the account owning
// req.Secret and returns the transaction hash.
func (g *HorizonGateway) SendPayment(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	if req.Secret == "" || req.To == "" || !req.Amount.IsPositive() {
		return models.PaymentResult{}, apperr.Invalid("secret, to, amount are required")
	}

	sender, err := keypair.ParseFull(req.Secret)
	if err != nil {
		return models.PaymentResult{}, paymentFailed(err)
	}
	if err := ctx.Err(); err != nil {
		return models.PaymentResult{}, err
	}

	source, err := g.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: sender.Address()})
	if err != nil {
		return models.PaymentResult{}, paymentFailed(err)
	}

	var asset txnbuild.Asset = txnbuild.NativeAsset{}
	if !req.IsNative() {
		asset = txnbuild.CreditAsset{Code: req.AssetCode, Issuer: req.AssetIssuer}
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &source,
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(paymentTimeout)},
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: req.To,
				Amount:      req.Amount.String(),
				Asset:       asset,
			},
		},
	})
	if err != nil {
		return models.PaymentResult{}, paymentFailed(err)
	}

	tx, err = tx.Sign(g.passphrase, sender)
	if err != nil {
		return models.PaymentResult{}, paymentFailed(err)
	}

	resp, err := g.horizon.SubmitTransaction(tx)
	if err != nil {
		return models.PaymentResult{}, paymentFailed(err)
	}

	return models.PaymentResult{From: sender.Address(), Hash: resp.Hash}, nil
}

func paymentFailed(err error) error {
	return apperr.Wrap(apperr.KindPaymentFailed, "Payment failed", err).WithDetail(problemDetail(err))
}

// problemDetail extracts Horizon's problem document from err, falling back to the
// error text.
func problemDetail(err error) any {
	if herr := horizonclient.GetError(err); herr != nil {
		return herr.Problem
	}
	return err.Error()
}
