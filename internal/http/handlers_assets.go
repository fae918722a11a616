package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"maymonee/internal/auth"
	"maymonee/internal/core"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.ledger.ListAssets(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var asset core.Asset
	if !decodeJSON(w, r, &asset) {
		return
	}
	asset.ID = 0

	created, err := s.ledger.AddAsset(r.Context(), userID, asset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusCreated, created)
}

type buyRequest struct {
	AccountID int64           `json:"accountId"`
	Name      string          `json:"name"`
	Category  core.AssetClass `json:"category"`
	Liquidity core.Liquidity  `json:"liquidity"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitPrice int64           `json:"unitPrice"`
	Date      core.Date       `json:"date"`
}

type tradeResponse struct {
	Asset       core.Asset       `json:"asset,omitempty"`
	Transaction core.Transaction `json:"transaction"`
}

func (s *Server) handleBuyAsset(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var req buyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date.IsZero() {
		req.Date = core.DateOf(time.Now())
	}

	order := core.BuyOrder{
		Name:      req.Name,
		Class:     req.Category,
		Liquidity: req.Liquidity,
		Quantity:  req.Quantity,
		Unit:      req.Unit,
		UnitPrice: req.UnitPrice,
	}
	asset, tx, err := s.ledger.BuyAsset(r.Context(), userID, req.AccountID, order, req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusCreated, tradeResponse{Asset: asset, Transaction: tx})
}

type sellRequest struct {
	AccountID int64           `json:"accountId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Date      core.Date       `json:"date"`
}

func (s *Server) handleSellAsset(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, core.ErrNotFound)
		return
	}
	var req sellRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date.IsZero() {
		req.Date = core.DateOf(time.Now())
	}

	tx, err := s.ledger.SellAsset(r.Context(), userID, id, req.AccountID, req.Quantity, req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusCreated, tradeResponse{Transaction: tx})
}

type priceRequest struct {
	Price int64 `json:"price"`
}

func (s *Server) handleUpdateAssetPrice(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, core.ErrNotFound)
		return
	}
	var req priceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	asset, err := s.ledger.UpdateAssetPrice(r.Context(), userID, id, req.Price)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, core.ErrNotFound)
		return
	}

	if err := s.ledger.DeleteAsset(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	w.WriteHeader(http.StatusNoContent)
}
