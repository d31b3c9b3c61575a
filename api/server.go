// Package api exposes the backend's view models to the presentation layer
// over a small HTTP plus SSE surface, and accepts user intents.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"pulse-backend/inventory"
	"pulse-backend/monitor"
	"pulse-backend/purchase"
)

// buyFunc executes a purchase intent.
type buyFunc func(ctx context.Context, tokenID uint64) (*purchase.Receipt, error)

// purchaseDeadline bounds a buy attempt after it has been detached from
// the request context, covering transaction confirmation when the client
// has already gone away.
const purchaseDeadline = 2 * time.Minute

// CountdownSource supplies the current countdown text.
type CountdownSource interface {
	Current() string
}

// Server wires the HTTP surface.
type Server struct {
	cell       *inventory.Cell
	mon        *monitor.Monitor
	countdown  CountdownSource
	buy        buyFunc
	minterAddr common.Address
	hub        *EventHub
	log        *zap.Logger
}

// NewServer assembles the HTTP surface. buy may be nil for a read-only
// deployment; intents then fail with the wallet-absent condition.
func NewServer(cell *inventory.Cell, mon *monitor.Monitor, countdown CountdownSource, buy func(ctx context.Context, tokenID uint64) (*purchase.Receipt, error), minterAddr common.Address, hub *EventHub, log *zap.Logger) *Server {
	return &Server{
		cell:       cell,
		mon:        mon,
		countdown:  countdown,
		buy:        buy,
		minterAddr: minterAddr,
		hub:        hub,
		log:        log,
	}
}

// Router builds the chi router with all endpoints mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/inventory", s.handleInventory)
		r.Get("/status", s.handleStatus)
		r.Post("/buy", s.handleBuy)
		r.Get("/nfts/{id}/qr.png", s.handleQR)
		r.Get("/events", s.hub.ServeHTTP)
	})
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type inventoryResponse struct {
	Seq   uint64           `json:"seq"`
	Items []inventory.Item `json:"items"`
	Note  string           `json:"note"`
}

func (s *Server) handleInventory(w http.ResponseWriter, _ *http.Request) {
	snap := s.cell.Current()
	if snap == nil {
		// No pass has completed yet.
		writeJSON(w, http.StatusOK, inventoryResponse{Items: []inventory.Item{}, Note: "initializing"})
		return
	}
	writeJSON(w, http.StatusOK, inventoryResponse{Seq: snap.Seq, Items: snap.Items, Note: snap.Note.String()})
}

type statusResponse struct {
	Status      string `json:"status"`
	LatestBlock uint64 `json:"latest_block"`
	HaveBlock   bool   `json:"have_block"`
	Countdown   string `json:"countdown"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	latest, have := s.mon.LatestBlock()
	writeJSON(w, http.StatusOK, statusResponse{
		Status:      s.mon.Status().String(),
		LatestBlock: latest,
		HaveBlock:   have,
		Countdown:   s.countdown.Current(),
	})
}

type buyRequest struct {
	TokenID *uint64 `json:"token_id"`
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TokenID == nil {
		writeError(w, http.StatusBadRequest, "bad_request", "token_id is required")
		return
	}
	if s.buy == nil {
		writeError(w, http.StatusServiceUnavailable, string(purchase.ReasonWalletAbsent), "connect a wallet to buy")
		return
	}

	// Once an attempt may submit transactions there is no cancelling it
	// from the outside: a dropped connection must not abort WaitMined or
	// misreport a purchase that is still mining. The attempt runs to
	// completion on its own deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), purchaseDeadline)
	defer cancel()

	receipt, err := s.buy(ctx, *req.TokenID)
	if err != nil {
		s.writePurchaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) writePurchaseError(w http.ResponseWriter, err error) {
	if perr, ok := purchase.AsError(err); ok {
		status := http.StatusBadGateway
		switch perr.Reason {
		case purchase.ReasonWalletAbsent:
			status = http.StatusServiceUnavailable
		case purchase.ReasonAlreadyOwned, purchase.ReasonUserRejected:
			status = http.StatusConflict
		case purchase.ReasonStale:
			status = http.StatusGone
		}
		writeError(w, status, string(perr.Reason), perr.Message)
		return
	}
	if errors.Is(err, purchase.ErrWalletAbsent) {
		writeError(w, http.StatusServiceUnavailable, string(purchase.ReasonWalletAbsent), "connect a wallet to buy")
		return
	}
	s.log.Error("buy intent failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal", "purchase failed")
}

// handleQR renders an EIP-681 payment link for a token as a QR code, so a
// mobile wallet can be pointed at the sale contract directly.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid token id")
		return
	}
	link := fmt.Sprintf("ethereum:%s/buyNft?uint256=%d", s.minterAddr.Hex(), id)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "qr generation failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
