package service

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"

	"github.com/bankcore/transfer-service/internal/biz"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewTransferService)

// TransferRequest is the transfer operation payload.
type TransferRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Amount      int64  `json:"amount"`
}

// TransferReply acknowledges a committed transfer.
type TransferReply struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Amount      int64  `json:"amount"`
}

// BalanceReply carries a single account balance.
type BalanceReply struct {
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// TransferService exposes the transfer operation over HTTP.
type TransferService struct {
	uc  *biz.TransferUsecase
	log *log.Helper
}

// NewTransferService creates a transfer service.
func NewTransferService(uc *biz.TransferUsecase, logger log.Logger) *TransferService {
	return &TransferService{
		uc:  uc,
		log: log.NewHelper(log.With(logger, "module", "service/transfer")),
	}
}

// RegisterHTTP mounts the service routes on the HTTP server.
func (s *TransferService) RegisterHTTP(srv *http.Server) {
	r := srv.Route("/v1")
	r.POST("/transfers", s.Transfer)
	r.GET("/accounts/{name}/balance", s.GetBalance)
}

// Transfer handles POST /v1/transfers.
func (s *TransferService) Transfer(ctx http.Context) error {
	var req TransferRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	if err := s.uc.Transfer(ctx, req.Source, req.Destination, req.Amount); err != nil {
		return err
	}

	return ctx.Result(200, &TransferReply{
		Source:      req.Source,
		Destination: req.Destination,
		Amount:      req.Amount,
	})
}

// GetBalance handles GET /v1/accounts/{name}/balance.
func (s *TransferService) GetBalance(ctx http.Context) error {
	name := ctx.Vars().Get("name")

	balance, err := s.uc.GetBalance(ctx, name)
	if err != nil {
		return err
	}

	return ctx.Result(200, &BalanceReply{Name: name, Balance: balance})
}
