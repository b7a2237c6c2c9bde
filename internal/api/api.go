// Package api exposes the engine over HTTP with gin.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/market"
)

// Handler serves marketplace requests.
type Handler struct {
	Engine *engine.Engine
	Logger *slog.Logger
}

// statusFor maps a rejection kind to its HTTP status.
var statusFor = map[market.Kind]int{
	market.KindAuthorization:     http.StatusForbidden,
	market.KindState:             http.StatusConflict,
	market.KindValidation:        http.StatusBadRequest,
	market.KindConsistency:       http.StatusUnprocessableEntity,
	market.KindInsufficientFunds: http.StatusPaymentRequired,
}

// writeError renders err. Rejected operations carry their code and kind;
// anything else is a 500 with the message logged, not returned.
func (h *Handler) writeError(c *gin.Context, err error) {
	if me, ok := market.AsError(err); ok {
		c.JSON(statusFor[me.Kind], gin.H{"error": gin.H{
			"code":    me.Code,
			"kind":    me.Kind,
			"message": me.Message,
			"details": me.Details,
		}})
		return
	}
	h.Logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
		"code":    "INTERNAL",
		"message": "internal error",
	}})
}

// Invoke runs POST /v1/ops/:op with a JSON object of named arguments.
func (h *Handler) Invoke(c *gin.Context) {
	args := engine.Args{}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    market.CodeInvalidArgument,
			"kind":    market.KindValidation,
			"message": "body must be a JSON object: " + err.Error(),
		}})
		return
	}

	receipt, err := h.Engine.Invoke(c.Request.Context(), c.Param("op"), args)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *Handler) GetRegistry(c *gin.Context) {
	reg, err := h.Engine.Registry(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.Engine.User(c.Request.Context(), c.Param("owner"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) GetItem(c *gin.Context) {
	view, err := h.Engine.Item(c.Request.Context(), c.Param("item"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) GetPayees(c *gin.Context) {
	payees, err := h.Engine.ExpectedPayees(c.Request.Context(), c.Param("item"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": c.Param("item"), "payees": payees})
}

func (h *Handler) GetTrace(c *gin.Context) {
	trace, err := h.Engine.Trace(c.Request.Context(), c.Param("item"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trace)
}

func (h *Handler) GetListings(c *gin.Context) {
	listings, err := h.Engine.ActiveListings(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

// GetAuctions lists auctions by ?status=, running by default.
func (h *Handler) GetAuctions(c *gin.Context) {
	status, ok := market.ParseAuctionStatus(c.DefaultQuery("status", market.AuctionRunning.String()))
	if !ok {
		h.writeError(c, market.Validation(market.CodeInvalidArgument, "unknown auction status %q", c.Query("status")))
		return
	}
	auctions, err := h.Engine.Auctions(c.Request.Context(), status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, auctions)
}

func (h *Handler) GetPendingEffects(c *gin.Context) {
	pending, err := h.Engine.PendingEffects(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

// Resume re-drives the effect journal. A delivery failure is reported
// with 502 alongside the count that did get through.
func (h *Handler) Resume(c *gin.Context) {
	n, err := h.Engine.Resume(c.Request.Context())
	if err != nil {
		h.Logger.Warn("resume stopped", "applied", n, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"applied": n, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": n})
}
