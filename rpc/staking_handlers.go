package rpc

import (
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type depositParams struct {
	Caller   string `json:"caller"`
	TokenID  string `json:"tokenId"`
	Amount   string `json:"amount"`
	Attached string `json:"attached,omitempty"`
}

type approveAndCallParams struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
	Data   string `json:"data"`
}

type positionOpParams struct {
	Caller  string `json:"caller"`
	TokenID string `json:"tokenId"`
	Amount  string `json:"amount"`
}

type claimParams struct {
	TokenID string `json:"tokenId"`
}

type nextEpochParams struct {
	Caller      string `json:"caller"`
	PendingRate string `json:"pendingRewardRate"`
	Length      uint64 `json:"length"`
}

type callerParams struct {
	Caller string `json:"caller"`
}

type botParams struct {
	Caller string `json:"caller"`
	Bot    string `json:"bot"`
}

type botLoanParams struct {
	Caller string `json:"caller"`
	Bot    string `json:"bot"`
	Amount string `json:"amount"`
}

type positionQueryParams struct {
	TokenID string `json:"tokenId"`
}

type addressQueryParams struct {
	Address string `json:"address"`
}

type positionResult struct {
	TokenID            string `json:"tokenId"`
	Owner              string `json:"owner"`
	Amount             string `json:"amount"`
	LastUpdate         uint64 `json:"lastUpdate"`
	RewardsDue         string `json:"rewardsDue"`
	WithdrawnThisEpoch bool   `json:"withdrawnThisEpoch"`
}

type infoResult struct {
	EpochNumber        uint64 `json:"epochNumber"`
	EpochStart         uint64 `json:"epochStart"`
	EpochEnd           uint64 `json:"epochEnd"`
	WithdrawPhase      bool   `json:"withdrawPhase"`
	RewardRate         string `json:"rewardRate"`
	PendingRewardRate  string `json:"pendingRewardRate"`
	TotalStaked        string `json:"totalStaked"`
	BotBalance         string `json:"botBalance"`
	WithdrawPercentage string `json:"withdrawPercentage"`
}

type botQueryResult struct {
	Whitelisted bool `json:"whitelisted"`
	Registered  bool `json:"registered"`
}

type txResult struct {
	Status string `json:"status"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, req *RPCRequest) {
	var params depositParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := parseAmount(params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid tokenId: "+err.Error(), nil)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid amount: "+err.Error(), nil)
		return
	}
	attached := big.NewInt(0)
	if strings.TrimSpace(params.Attached) != "" {
		if attached, err = parseAmount(params.Attached); err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid attached: "+err.Error(), nil)
			return
		}
	}
	if err := s.node.Deposit(caller, id, amount, attached); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, txResult{Status: "ok"})
}

func (s *Server) handleApproveAndCall(w http.ResponseWriter, req *RPCRequest) {
	var params approveAndCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid amount: "+err.Error(), nil)
		return
	}
	data, err := hexutil.Decode(params.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid data: "+err.Error(), nil)
		return
	}
	if err := s.node.ApproveAndCall(caller, amount, data); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, txResult{Status: "ok"})
}

func (s *Server) handleIncreasePosition(w http.ResponseWriter, req *RPCRequest) {
	s.handlePositionOp(w, req, s.node.IncreasePosition)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, req *RPCRequest) {
	s.handlePositionOp(w, req, s.node.Withdraw)
}

func (s *Server) handlePositionOp(w http.ResponseWriter, req *RPCRequest, op func(common.Address, *big.Int, *big.Int) error) {
	var params positionOpParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := parseAmount(params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid tokenId: "+err.Error(), nil)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid amount: "+err.Error(), nil)
		return
	}
	if err := op(caller, id, amount); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, txResult{Status: "ok"})
}

func (s *Server) handleClaimRewards(w http.ResponseWriter, req *RPCRequest) {
	var params claimParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := parseAmount(params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid tokenId: "+err.Error(), nil)
		return
	}
	paid, err := s.node.ClaimRewards(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]string{"paid": paid.String()})
}

func (s *Server) handleNextEpoch(w http.ResponseWriter, req *RPCRequest) {
	var params nextEpochParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	rate, err := parseAmount(params.PendingRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid pendingRewardRate: "+err.Error(), nil)
		return
	}
	if err := s.node.NextEpoch(caller, rate, params.Length); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, txResult{Status: "ok"})
}

func (s *Server) handleApplyNewRewardRate(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.ApplyNewRewardRate(caller); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, txResult{Status: "ok"})
}

func (s *Server) handleWithdrawToBot(w http.ResponseWriter, req *RPCRequest) {
	var params botLoanParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	bot, err := parseAddress(params.Bot)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid amount: "+err.Error(), nil)
		return
	}
	if err := s.node.WithdrawLiquidityToBot(caller, bot, amount); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, txResult{Status: "ok"})
}

func (s *Server) handleAddBot(w http.ResponseWriter, req *RPCRequest) {
	s.handleBotOp(w, req, s.node.AddBot)
}

func (s *Server) handleRemoveBot(w http.ResponseWriter, req *RPCRequest) {
	s.handleBotOp(w, req, s.node.RemoveBot)
}

func (s *Server) handleBotOp(w http.ResponseWriter, req *RPCRequest, op func(common.Address, common.Address) error) {
	var params botParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	bot, err := parseAddress(params.Bot)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := op(caller, bot); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, txResult{Status: "ok"})
}

func (s *Server) handleRegisterAsBot(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.RegisterAsBot(caller); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, txResult{Status: "ok"})
}

func (s *Server) handlePosition(w http.ResponseWriter, req *RPCRequest) {
	var params positionQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := parseAmount(params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid tokenId: "+err.Error(), nil)
		return
	}
	stats, err := s.node.Engine().Stats(id)
	if err != nil {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, err.Error(), nil)
		return
	}
	owner, err := s.node.Positions().OwnerOf(id)
	if err != nil {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, positionResult{
		TokenID:            id.String(),
		Owner:              owner.Hex(),
		Amount:             stats.Amount.String(),
		LastUpdate:         stats.LastUpdate,
		RewardsDue:         stats.RewardsDue.String(),
		WithdrawnThisEpoch: stats.WithdrawnThisEpoch,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, req *RPCRequest) {
	eng := s.node.Engine()
	window, err := eng.CurrentEpoch()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	number, err := eng.EpochNumber()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	withdrawPhase, err := eng.IsWithdrawPhase()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	rate, err := eng.RewardRate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	pending, err := eng.PendingRewardRate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	total, err := eng.TotalStaked()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	botBalance, err := eng.GetBotBalance()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	pct, err := eng.CurrentWithdrawPercentage()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, infoResult{
		EpochNumber:        number,
		EpochStart:         window.Start,
		EpochEnd:           window.End,
		WithdrawPhase:      withdrawPhase,
		RewardRate:         rate.String(),
		PendingRewardRate:  pending.String(),
		TotalStaked:        total.String(),
		BotBalance:         botBalance.String(),
		WithdrawPercentage: pct.String(),
	})
}

func (s *Server) handleIsBot(w http.ResponseWriter, req *RPCRequest) {
	var params addressQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	whitelisted, err := s.node.Engine().IsBot(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	registered, err := s.node.Engine().IsRegisteredBot(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, botQueryResult{Whitelisted: whitelisted, Registered: registered})
}

func parseAddress(value string) (common.Address, error) {
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("invalid address %q", value)
	}
	return common.HexToAddress(trimmed), nil
}

func parseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("value must not be empty")
	}
	parsed, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("value must be a base-10 integer")
	}
	if parsed.Sign() < 0 {
		return nil, fmt.Errorf("value must not be negative")
	}
	return parsed, nil
}
