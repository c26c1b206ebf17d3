package ledger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/protocols/horizon/base"
	"github.com/stellar/go/support/render/problem"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/apperr"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
)

func newFriendbot(t *testing.T, status int, body string) (*httptest.Server, *[]string) {
	t.Helper()
	var funded []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		funded = append(funded, r.URL.Query().Get("addr"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &funded
}

func TestCreateFundedAccount(t *testing.T) {
	fb, funded := newFriendbot(t, http.StatusOK, `{"hash":"abc"}`)
	g := NewWithClient(&horizonclient.MockClient{}, fb.Client(), fb.URL, network.TestNetworkPassphrase)

	acc, err := g.CreateFundedAccount(context.Background())
	require.NoError(t, err)
	assert.True(t, acc.Funded)
	assert.True(t, strings.HasPrefix(acc.PublicKey, "G"))
	assert.True(t, strings.HasPrefix(acc.SecretKey, "S"))
	require.Len(t, *funded, 1)
	assert.Equal(t, acc.PublicKey, (*funded)[0])

	kp, err := keypair.ParseFull(acc.SecretKey)
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey, kp.Address())
}

func TestCreateFundedAccount_FaucetRefuses(t *testing.T) {
	fb, _ := newFriendbot(t, http.StatusBadRequest, "createAccountAlreadyExist")
	g := NewWithClient(&horizonclient.MockClient{}, fb.Client(), fb.URL, network.TestNetworkPassphrase)

	_, err := g.CreateFundedAccount(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindFundingFailed))
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "createAccountAlreadyExist")
}

func TestCreateFundedAccount_FaucetUnreachable(t *testing.T) {
	fb, _ := newFriendbot(t, http.StatusOK, "")
	url := fb.URL
	fb.Close()
	g := NewWithClient(&horizonclient.MockClient{}, nil, url, network.TestNetworkPassphrase)

	_, err := g.CreateFundedAccount(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindFundingFailed))
}

func TestGetBalances(t *testing.T) {
	hc := &horizonclient.MockClient{}
	pub := keypair.MustRandom().Address()
	hc.On("AccountDetail", horizonclient.AccountRequest{AccountID: pub}).Return(hProtocol.Account{
		AccountID: pub,
		Balances: []hProtocol.Balance{
			{Balance: "9999.9999900", Asset: base.Asset{Type: "native"}},
			{Balance: "12.5000000", Asset: base.Asset{Type: "credit_alphanum4", Code: "USDC", Issuer: "GISSUER"}},
		},
	}, nil)
	g := NewWithClient(hc, nil, DefaultFriendbotURL, network.TestNetworkPassphrase)

	balances, err := g.GetBalances(context.Background(), pub)
	require.NoError(t, err)
	assert.Equal(t, []models.Balance{
		{Asset: "XLM", Amount: "9999.9999900"},
		{Asset: "USDC", Amount: "12.5000000"},
	}, balances)
	hc.AssertExpectations(t)
}

func TestGetBalances_UnknownAccount(t *testing.T) {
	hc := &horizonclient.MockClient{}
	hc.On("AccountDetail", mock.Anything).Return(hProtocol.Account{}, &horizonclient.Error{
		Problem: problem.P{Title: "Resource Missing", Status: http.StatusNotFound},
	})
	g := NewWithClient(hc, nil, DefaultFriendbotURL, network.TestNetworkPassphrase)

	_, err := g.GetBalances(context.Background(), "GNOPE")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindAccountLookupFailed))
}

func TestSendPayment_Native(t *testing.T) {
	sender := keypair.MustRandom()
	dest := keypair.MustRandom().Address()

	hc := &horizonclient.MockClient{}
	hc.On("AccountDetail", horizonclient.AccountRequest{AccountID: sender.Address()}).
		Return(hProtocol.Account{AccountID: sender.Address(), Sequence: 41}, nil)
	hc.On("SubmitTransaction", mock.MatchedBy(func(tx *txnbuild.Transaction) bool {
		ops := tx.Operations()
		if len(ops) != 1 || tx.SequenceNumber() != 42 {
			return false
		}
		p, ok := ops[0].(*txnbuild.Payment)
		return ok && p.Destination == dest && p.Amount == "5" && p.Asset.IsNative()
	})).Return(hProtocol.Transaction{Hash: "deadbeef"}, nil)

	g := NewWithClient(hc, nil, DefaultFriendbotURL, network.TestNetworkPassphrase)
	res, err := g.SendPayment(context.Background(), models.PaymentRequest{
		Secret: sender.Seed(),
		To:     dest,
		Amount: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", res.Hash)
	assert.Equal(t, sender.Address(), res.From)
	hc.AssertExpectations(t)
}

func TestSendPayment_IssuedAsset(t *testing.T) {
	sender := keypair.MustRandom()
	issuer := keypair.MustRandom().Address()
	dest := keypair.MustRandom().Address()

	hc := &horizonclient.MockClient{}
	hc.On("AccountDetail", mock.Anything).Return(hProtocol.Account{AccountID: sender.Address(), Sequence: 1}, nil)
	hc.On("SubmitTransaction", mock.MatchedBy(func(tx *txnbuild.Transaction) bool {
		p, ok := tx.Operations()[0].(*txnbuild.Payment)
		return ok && p.Asset.GetCode() == "USDC" && p.Asset.GetIssuer() == issuer && p.Amount == "12.5"
	})).Return(hProtocol.Transaction{Hash: "cafe"}, nil)

	g := NewWithClient(hc, nil, DefaultFriendbotURL, network.TestNetworkPassphrase)
	res, err := g.SendPayment(context.Background(), models.PaymentRequest{
		Secret:      sender.Seed(),
		To:          dest,
		Amount:      decimal.RequireFromString("12.5"),
		AssetCode:   "USDC",
		AssetIssuer: issuer,
	})
	require.NoError(t, err)
	assert.Equal(t, "cafe", res.Hash)
}

func TestSendPayment_MissingFieldsNeverCallsHorizon(t *testing.T) {
	hc := &horizonclient.MockClient{}
	g := NewWithClient(hc, nil, DefaultFriendbotURL, network.TestNetworkPassphrase)

	cases := []models.PaymentRequest{
		{To: "GDEST", Amount: decimal.NewFromInt(5)},
		{Secret: "SSECRET", Amount: decimal.NewFromInt(5)},
		{Secret: "SSECRET", To: "GDEST"},
	}
	for _, req := range cases {
		_, err := g.SendPayment(context.Background(), req)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
		assert.Contains(t, err.Error(), "secret, to, amount are required")
	}
	hc.AssertNotCalled(t, "AccountDetail", mock.Anything)
	hc.AssertNotCalled(t, "SubmitTransaction", mock.Anything)
}

func TestSendPayment_MalformedSecret(t *testing.T) {
	hc := &horizonclient.MockClient{}
	g := NewWithClient(hc, nil, DefaultFriendbotURL, network.TestNetworkPassphrase)

	_, err := g.SendPayment(context.Background(), models.PaymentRequest{Secret: "not-a-seed", To: "GDEST", Amount: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPaymentFailed))

	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "Payment failed", ae.Message)
	assert.NotEmpty(t, ae.Detail)
	hc.AssertNotCalled(t, "AccountDetail", mock.Anything)
}

func TestSendPayment_SubmissionRejected(t *testing.T) {
	sender := keypair.MustRandom()
	extras := map[string]interface{}{
		"result_codes": map[string]interface{}{
			"transaction": "tx_failed",
			"operations":  []string{"op_underfunded"},
		},
	}

	hc := &horizonclient.MockClient{}
	hc.On("AccountDetail", mock.Anything).Return(hProtocol.Account{AccountID: sender.Address(), Sequence: 7}, nil)
	hc.On("SubmitTransaction", mock.Anything).Return(hProtocol.Transaction{}, &horizonclient.Error{
		Problem: problem.P{Title: "Transaction Failed", Status: http.StatusBadRequest, Extras: extras},
	})

	g := NewWithClient(hc, nil, DefaultFriendbotURL, network.TestNetworkPassphrase)
	_, err := g.SendPayment(context.Background(), models.PaymentRequest{
		Secret: sender.Seed(),
		To:     keypair.MustRandom().Address(),
		Amount: decimal.NewFromInt(100000),
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPaymentFailed))

	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	detail, ok := ae.Detail.(problem.P)
	require.True(t, ok)
	assert.Equal(t, "Transaction Failed", detail.Title)
	assert.Equal(t, extras, detail.Extras)
}

func TestSendPayment_SourceAccountMissing(t *testing.T) {
	hc := &horizonclient.MockClient{}
	hc.On("AccountDetail", mock.Anything).Return(hProtocol.Account{}, errors.New("connection refused"))

	g := NewWithClient(hc, nil, DefaultFriendbotURL, network.TestNetworkPassphrase)
	_, err := g.SendPayment(context.Background(), models.PaymentRequest{
		Secret: keypair.MustRandom().Seed(),
		To:     keypair.MustRandom().Address(),
		Amount: decimal.NewFromInt(1),
	})
	assert.True(t, apperr.Is(err, apperr.KindPaymentFailed))

	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "connection refused", ae.Detail)
}
