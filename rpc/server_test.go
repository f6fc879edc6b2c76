package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"milkchain/config"
	"milkchain/core"
	"milkchain/crypto"
	"milkchain/native/rewards"
	"milkchain/storage"
)

const testSecret = "test-secret"

func testAddr(fill byte) [20]byte {
	var out [20]byte
	copy(out[:], bytes.Repeat([]byte{fill}, 20))
	return out
}

type fixture struct {
	node     *core.Node
	handler  http.Handler
	deployer [20]byte
	player   [20]byte
	now      time.Time
}

func newFixture(t *testing.T, withAuth bool) *fixture {
	t.Helper()
	node, err := core.NewNode(storage.NewMemDB(), core.Options{})
	require.NoError(t, err)

	deployer, player := testAddr(0x01), testAddr(0x0a)
	g := &config.Genesis{
		Deployer: crypto.FormatAccount(deployer),
		ItemFactory: config.RegistryGrants{Grants: []config.RoleGrant{
			{Role: "ADMIN_ROLE", Account: crypto.FormatAccount(deployer)},
		}},
		Rewards: []config.RewardSeed{
			{Category: "item", Tier: "common", Min: "1", Max: "1", IDs: []string{"7", "8"}},
		},
	}
	for _, tier := range rewards.Tiers {
		g.Rewards = append(g.Rewards, config.RewardSeed{Category: "milk", Tier: tier.String(), Min: "2", Max: "2"})
	}
	require.NoError(t, node.Bootstrap(context.Background(), g))

	f := &fixture{node: node, deployer: deployer, player: player, now: time.Unix(1_700_000_000, 0)}
	cfg := Config{Clock: func() time.Time { return f.now }}
	if withAuth {
		cfg.Auth = &AuthConfig{HMACSecret: testSecret, Issuer: "milkchain-test"}
	}
	f.handler = NewServer(node, cfg).Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)
	return res
}

func signToken(t *testing.T, subject [20]byte, issuer string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   crypto.FormatAccount(subject),
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func decode(t *testing.T, res *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), out))
}

func TestQueryRoutes(t *testing.T) {
	f := newFixture(t, false)

	res := f.do(t, http.MethodGet, "/v1/token", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var token tokenResponse
	decode(t, res, &token)
	require.Equal(t, "MILK", token.Symbol)
	require.Equal(t, uint8(18), token.Decimals)
	require.Equal(t, "0", token.TotalSupply)

	res = f.do(t, http.MethodGet, "/v1/rarity", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var rarity rarityResponse
	decode(t, res, &rarity)
	require.Equal(t, uint64(60), rarity.Common)
	require.Equal(t, uint64(100), rarity.MaxRoll)

	res = f.do(t, http.MethodGet, "/v1/reward/item/common", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var reward rewardResponse
	decode(t, res, &reward)
	require.Equal(t, []string{"7", "8"}, reward.IDs)

	res = f.do(t, http.MethodGet, "/v1/reward/item/rare", "", nil)
	require.Equal(t, http.StatusNotFound, res.Code)

	res = f.do(t, http.MethodGet, "/v1/reward/gold/common", "", nil)
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = f.do(t, http.MethodGet, "/v1/balance/"+crypto.FormatBech32(f.player), "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var balance balanceResponse
	decode(t, res, &balance)
	require.Equal(t, crypto.FormatAccount(f.player), balance.Account)
	require.True(t, strings.HasPrefix(balance.Bech32, "milk1"))
	require.Equal(t, "0", balance.Balance)

	res = f.do(t, http.MethodGet, "/v1/balance/not-an-account", "", nil)
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = f.do(t, http.MethodGet, "/v1/claims/"+crypto.FormatAccount(f.player), "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var status claimStatusResponse
	decode(t, res, &status)
	require.False(t, status.Claimed)

	res = f.do(t, http.MethodGet, "/v1/roles/milk/contract_role/"+crypto.FormatAccount(crypto.ModuleAddress("itemfactory")), "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var role roleResponse
	decode(t, res, &role)
	require.True(t, role.Held)

	res = f.do(t, http.MethodGet, "/v1/roles/bank/admin_role/"+crypto.FormatAccount(f.player), "", nil)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestMutationsHiddenWithoutAuth(t *testing.T) {
	f := newFixture(t, false)
	res := f.do(t, http.MethodPost, "/v1/claim", "", nil)
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestClaimRequiresValidToken(t *testing.T) {
	f := newFixture(t, true)

	res := f.do(t, http.MethodPost, "/v1/claim", "", nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)

	expired := signToken(t, f.player, "milkchain-test", time.Now().Add(-time.Hour))
	res = f.do(t, http.MethodPost, "/v1/claim", expired, nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)

	wrongIssuer := signToken(t, f.player, "someone-else", time.Now().Add(time.Hour))
	res = f.do(t, http.MethodPost, "/v1/claim", wrongIssuer, nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestClaimAndTransferFlow(t *testing.T) {
	f := newFixture(t, true)
	token := signToken(t, f.player, "milkchain-test", time.Now().Add(time.Hour))

	res := f.do(t, http.MethodPost, "/v1/claim", token, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var claim claimResponse
	decode(t, res, &claim)
	require.Equal(t, uint64(f.now.Unix()), claim.Timestamp)
	require.Equal(t, "2000000000000000000", claim.Milk)

	res = f.do(t, http.MethodPost, "/v1/claim", token, nil)
	require.Equal(t, http.StatusConflict, res.Code)
	var claimErr errorResponse
	decode(t, res, &claimErr)
	require.Equal(t, uint64(f.now.Unix())+86400, claimErr.RetryAfter)
	require.Equal(t, "1700086400", res.Header().Get("Retry-After"))

	recipient := testAddr(0x0b)
	res = f.do(t, http.MethodPost, "/v1/transfer", token, amountRequest{
		To:     crypto.FormatAccount(recipient),
		Amount: "500000000000000000",
	})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	balance, err := f.node.BalanceOf(recipient)
	require.NoError(t, err)
	require.Equal(t, 0, balance.Cmp(big.NewInt(500000000000000000)))

	res = f.do(t, http.MethodPost, "/v1/withdraw", token, amountRequest{Amount: "9000000000000000000"})
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = f.do(t, http.MethodPost, "/v1/transfer", token, map[string]string{"to": "x", "amount": "1", "memo": "hi"})
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRequestIDHeader(t *testing.T) {
	f := newFixture(t, false)

	res := f.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	_, err := uuid.Parse(res.Header().Get(requestIDHeader))
	require.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/v1/supply", nil)
	req.Header.Set(requestIDHeader, id)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, id, rec.Header().Get(requestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, false)
	res := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, strings.Contains(res.Body.String(), "milkchain_"))
}
