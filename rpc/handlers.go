package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"milkchain/core"
	"milkchain/crypto"
	"milkchain/native/access"
	"milkchain/native/rewards"
)

type tokenResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
}

type balanceResponse struct {
	Account string `json:"account"`
	Bech32  string `json:"bech32"`
	Balance string `json:"balance"`
}

type allowanceResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance string `json:"allowance"`
}

type rarityResponse struct {
	Common    uint64 `json:"common"`
	Uncommon  uint64 `json:"uncommon"`
	Rare      uint64 `json:"rare"`
	Epic      uint64 `json:"epic"`
	Legendary uint64 `json:"legendary"`
	MaxRoll   uint64 `json:"maxRoll"`
}

type rewardResponse struct {
	Category string   `json:"category"`
	Tier     string   `json:"tier"`
	Min      string   `json:"min"`
	Max      string   `json:"max"`
	IDs      []string `json:"ids,omitempty"`
}

type claimStatusResponse struct {
	Account     string `json:"account"`
	Claimed     bool   `json:"claimed"`
	LastClaim   uint64 `json:"lastClaim"`
	NextClaimAt uint64 `json:"nextClaimAt"`
}

type itemResponse struct {
	Account string `json:"account"`
	ID      string `json:"id"`
	Balance string `json:"balance"`
	Supply  string `json:"supply"`
	URI     string `json:"uri"`
}

type roleResponse struct {
	Namespace string `json:"namespace"`
	Role      string `json:"role"`
	Account   string `json:"account"`
	Held      bool   `json:"held"`
}

type claimResponse struct {
	Account      string `json:"account"`
	Timestamp    uint64 `json:"timestamp"`
	Nonce        uint64 `json:"nonce"`
	Roll         uint64 `json:"roll"`
	Tier         string `json:"tier"`
	Milk         string `json:"milk"`
	ItemID       string `json:"itemId,omitempty"`
	ItemQuantity string `json:"itemQuantity,omitempty"`
}

type amountRequest struct {
	To      string `json:"to,omitempty"`
	Spender string `json:"spender,omitempty"`
	Amount  string `json:"amount"`
}

type itemTransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	ID     string `json:"id"`
	Amount string `json:"amount"`
}

func (s *Server) handleToken(w http.ResponseWriter, _ *http.Request) {
	var resp tokenResponse
	err := s.node.View(func(c *core.Components) error {
		meta := c.Ledger.Metadata()
		supply, err := c.Ledger.TotalSupply()
		if err != nil {
			return err
		}
		resp = tokenResponse{Name: meta.Name, Symbol: meta.Symbol, Decimals: meta.Decimals, TotalSupply: formatBig(supply)}
		return nil
	})
	s.respond(w, resp, err)
}

func (s *Server) handleSupply(w http.ResponseWriter, _ *http.Request) {
	supply, err := s.node.TotalSupply()
	s.respond(w, map[string]string{"totalSupply": formatBig(supply)}, err)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r, "account")
	if !ok {
		return
	}
	balance, err := s.node.BalanceOf(account)
	s.respond(w, balanceResponse{
		Account: crypto.FormatAccount(account),
		Bech32:  crypto.FormatBech32(account),
		Balance: formatBig(balance),
	}, err)
}

func (s *Server) handleAllowance(w http.ResponseWriter, r *http.Request) {
	owner, ok := accountParam(w, r, "owner")
	if !ok {
		return
	}
	spender, ok := accountParam(w, r, "spender")
	if !ok {
		return
	}
	var allowance *big.Int
	err := s.node.View(func(c *core.Components) error {
		var err error
		allowance, err = c.Ledger.Allowance(owner, spender)
		return err
	})
	s.respond(w, allowanceResponse{
		Owner:     crypto.FormatAccount(owner),
		Spender:   crypto.FormatAccount(spender),
		Allowance: formatBig(allowance),
	}, err)
}

func (s *Server) handleRarity(w http.ResponseWriter, _ *http.Request) {
	var t rewards.Thresholds
	err := s.node.View(func(c *core.Components) error {
		var err error
		t, err = c.Rewards.RarityRolls()
		return err
	})
	s.respond(w, rarityResponse{
		Common:    t.Common,
		Uncommon:  t.Uncommon,
		Rare:      t.Rare,
		Epic:      t.Epic,
		Legendary: t.Legendary,
		MaxRoll:   t.MaxRoll,
	}, err)
}

func (s *Server) handleReward(w http.ResponseWriter, r *http.Request) {
	category, ok := rewards.ParseCategory(strings.ToLower(chi.URLParam(r, "category")))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown category %q", chi.URLParam(r, "category")))
		return
	}
	tier, ok := rewards.ParseTier(strings.ToLower(chi.URLParam(r, "tier")))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown tier %q", chi.URLParam(r, "tier")))
		return
	}
	resp := rewardResponse{Category: category.String(), Tier: tier.String()}
	err := s.node.View(func(c *core.Components) error {
		payload, found, err := c.Rewards.Reward(category, tier)
		if err != nil {
			return err
		}
		if !found {
			return errNotFound
		}
		decoded, err := rewards.DecodePayload(category, payload)
		if err != nil {
			return err
		}
		switch reward := decoded.(type) {
		case rewards.MilkReward:
			resp.Min, resp.Max = formatBig(reward.Min), formatBig(reward.Max)
		case rewards.ItemReward:
			resp.Min, resp.Max = formatBig(reward.Min), formatBig(reward.Max)
			for _, id := range reward.IDs {
				resp.IDs = append(resp.IDs, formatBig(id))
			}
		}
		return nil
	})
	s.respond(w, resp, err)
}

func (s *Server) handleClaimStatus(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r, "account")
	if !ok {
		return
	}
	resp := claimStatusResponse{Account: crypto.FormatAccount(account)}
	err := s.node.View(func(c *core.Components) error {
		last, claimed, err := c.Factory.LastClaim(account)
		if err != nil {
			return err
		}
		next, err := c.Factory.NextClaimAt(account)
		if err != nil {
			return err
		}
		resp.Claimed, resp.LastClaim, resp.NextClaimAt = claimed, last, next
		return nil
	})
	s.respond(w, resp, err)
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r, "account")
	if !ok {
		return
	}
	id, err := parseAmount(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("item id: %w", err))
		return
	}
	resp := itemResponse{Account: crypto.FormatAccount(account), ID: id.String()}
	err = s.node.View(func(c *core.Components) error {
		balance, err := c.Factory.ItemBalance(account, id)
		if err != nil {
			return err
		}
		supply, err := c.Factory.ItemSupply(id)
		if err != nil {
			return err
		}
		resp.Balance, resp.Supply, resp.URI = formatBig(balance), formatBig(supply), c.Factory.URI(id)
		return nil
	})
	s.respond(w, resp, err)
}

func (s *Server) handleRole(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r, "account")
	if !ok {
		return
	}
	ns := core.Namespace(strings.ToLower(chi.URLParam(r, "namespace")))
	role := access.ParseRole(strings.ToUpper(chi.URLParam(r, "role")))
	held, err := s.node.HasRole(ns, role, account)
	s.respond(w, roleResponse{
		Namespace: string(ns),
		Role:      role.String(),
		Account:   crypto.FormatAccount(account),
		Held:      held,
	}, err)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, nil)
		return
	}
	now := s.clock().Unix()
	if now < 0 {
		now = 0
	}
	result, err := s.node.Claim(r.Context(), caller, uint64(now))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	resp := claimResponse{
		Account:   crypto.FormatAccount(result.Account),
		Timestamp: result.Timestamp,
		Nonce:     result.Nonce,
		Roll:      result.Roll,
		Tier:      result.Tier.String(),
		Milk:      formatBig(result.Milk),
	}
	if result.ItemID != nil {
		resp.ItemID, resp.ItemQuantity = result.ItemID.String(), formatBig(result.ItemQuantity)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, req, amount, ok := s.amountRequest(w, r)
	if !ok {
		return
	}
	to, err := crypto.ParseAccount(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("to: %w", err))
		return
	}
	s.respondMutation(w, s.node.Transfer(r.Context(), caller, to, amount))
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	caller, req, amount, ok := s.amountRequest(w, r)
	if !ok {
		return
	}
	spender, err := crypto.ParseAccount(req.Spender)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("spender: %w", err))
		return
	}
	_, err = s.node.Apply(r.Context(), "milk.approve", func(c *core.Components) error {
		return c.Ledger.Approve(caller, spender, amount)
	})
	s.respondMutation(w, err)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, _, amount, ok := s.amountRequest(w, r)
	if !ok {
		return
	}
	s.respondMutation(w, s.node.Withdraw(r.Context(), caller, amount))
}

func (s *Server) handleItemTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, nil)
		return
	}
	var req itemTransferRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	from, err := crypto.ParseAccount(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("from: %w", err))
		return
	}
	to, err := crypto.ParseAccount(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("to: %w", err))
		return
	}
	id, err := parseAmount(req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("id: %w", err))
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	_, err = s.node.Apply(r.Context(), "itemfactory.transfer", func(c *core.Components) error {
		return c.Factory.SafeTransferFrom(caller, from, to, id, amount)
	})
	s.respondMutation(w, err)
}

func (s *Server) amountRequest(w http.ResponseWriter, r *http.Request) ([20]byte, amountRequest, *big.Int, bool) {
	var req amountRequest
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, nil)
		return caller, req, nil, false
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return caller, req, nil, false
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return caller, req, nil, false
	}
	return caller, req, amount, true
}

func (s *Server) respond(w http.ResponseWriter, body interface{}, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("request failed", slog.Any("error", err))
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) respondMutation(w http.ResponseWriter, err error) {
	s.respond(w, map[string]bool{"ok": true}, err)
}

func accountParam(w http.ResponseWriter, r *http.Request, name string) ([20]byte, bool) {
	account, err := crypto.ParseAccount(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%s: %w", name, err))
		return [20]byte{}, false
	}
	return account, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}
