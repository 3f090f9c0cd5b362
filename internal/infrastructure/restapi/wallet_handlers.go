package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/app/view"
	"wallet_dashboard/internal/domain/entity"
)

// APIWalletResponse is the response body of every wallet endpoint.
type APIWalletResponse struct {
	Data struct {
		State entity.DashboardState `json:"state"`
		View  view.Dashboard        `json:"view"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// WalletHandler serves the wallet dashboard endpoints.
type WalletHandler struct {
	sessionService port.SessionService
	logger         *zap.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ss port.SessionService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		sessionService: ss,
		logger:         logger.Named("WalletHandler"),
	}
}

// GetWalletHandler returns the current dashboard state.
func (h *WalletHandler) GetWalletHandler(c *gin.Context) {
	h.respond(c, http.StatusOK, "OK")
}

// ConnectWalletHandler triggers ConnectWallet.
func (h *WalletHandler) ConnectWalletHandler(c *gin.Context) {
	session, err := h.sessionService.ConnectWallet(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Debug("Wallet connected via API", zap.String("address", session.Address))
	h.respond(c, http.StatusOK, "Wallet connected.")
}

// FetchTokensHandler triggers FetchTokenBalances.
func (h *WalletHandler) FetchTokensHandler(c *gin.Context) {
	balances, err := h.sessionService.FetchTokenBalances(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	failed := 0
	for _, b := range balances {
		if b.Failed {
			failed++
		}
	}
	switch {
	case len(balances) == 0:
		h.respond(c, http.StatusOK, "No tokens configured.")
	case failed > 0:
		h.respond(c, http.StatusOK, "Token balances retrieved. Some tokens could not be read.")
	default:
		h.respond(c, http.StatusOK, "Token balances retrieved successfully.")
	}
}

func (h *WalletHandler) fail(c *gin.Context, err error) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Warn("Wallet request failed", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	h.respond(c, status, entity.UserMessage(err))
}

func (h *WalletHandler) respond(c *gin.Context, status int, message string) {
	state := h.sessionService.State()
	var resp APIWalletResponse
	resp.Data.State = state
	resp.Data.View = view.Render(state)
	resp.StatusMessage = message
	c.JSON(status, resp)
}

// StatusForError maps a session error kind to an HTTP status code.
func StatusForError(err error) int {
	kind := entity.KindOf(err)
	switch {
	case kind == nil:
		return http.StatusInternalServerError
	case errors.Is(kind, entity.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(kind, entity.ErrNoAccountAuthorized):
		return http.StatusForbidden
	case errors.Is(kind, entity.ErrNotConnected):
		return http.StatusConflict
	case errors.Is(kind, entity.ErrConnectionFailed), errors.Is(kind, entity.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
