package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sahanirahul/bihar-election-2025/middleware"
	"github.com/sahanirahul/bihar-election-2025/models"
	"github.com/sahanirahul/bihar-election-2025/predictions"
	"github.com/sahanirahul/bihar-election-2025/store"
)

// createRequest keeps the transfer fields raw so the guard can distinguish
// "missing or wrong type" from an out-of-range number and report errors in
// its fixed order.
type createRequest struct {
	Name           string          `json:"name"`
	NDATransfer    json.RawMessage `json:"ndaTransfer"`
	MGBTransfer    json.RawMessage `json:"mgbTransfer"`
	OthersTransfer json.RawMessage `json:"othersTransfer"`
}

type listResponse struct {
	Predictions []models.Prediction `json:"predictions"`
	Total       int                 `json:"total"`
	Filtered    int                 `json:"filtered"`
	Returned    int                 `json:"returned"`
}

// ListPredictions returns stored predictions, newest first. Query params:
// search (case-insensitive name substring) and limit (default 20).
func (h *Handler) ListPredictions(c echo.Context) error {
	search := c.QueryParam("search")

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		// Garbage or non-positive limits fall back to the default.
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	res, err := h.svc.List(c.Request().Context(), search, limit)
	if err != nil {
		return h.httpError(err)
	}

	return c.JSON(http.StatusOK, listResponse{
		Predictions: res.Predictions,
		Total:       res.Total,
		Filtered:    res.Filtered,
		Returned:    len(res.Predictions),
	})
}

// PredictionCount reports the caller's quota standing.
func (h *Handler) PredictionCount(c echo.Context) error {
	status, err := h.svc.Quota(c.Request().Context(), middleware.ClientIP(c))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, status)
}

// CreatePrediction validates and stores a new submission for the caller's
// identity and returns the created record without that identity.
func (h *Handler) CreatePrediction(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sub := predictions.Submission{
		Name:           req.Name,
		NDATransfer:    numberOrNil(req.NDATransfer),
		MGBTransfer:    numberOrNil(req.MGBTransfer),
		OthersTransfer: numberOrNil(req.OthersTransfer),
	}

	p, err := h.svc.Create(c.Request().Context(), middleware.ClientIP(c), sub)
	if err != nil {
		return h.httpError(err)
	}

	return c.JSON(http.StatusCreated, map[string]*models.Prediction{"prediction": p})
}

// DeletePrediction removes one of the caller's own predictions.
func (h *Handler) DeletePrediction(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		// A non-numeric id can never name an existing record.
		return echo.NewHTTPError(http.StatusNotFound, "prediction not found")
	}

	if err := h.svc.Delete(c.Request().Context(), middleware.ClientIP(c), id); err != nil {
		return h.httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "prediction deleted successfully"})
}

// numberOrNil strictly decodes a raw JSON value into a float64. Missing
// fields, null, strings and anything else non-numeric come back nil.
func numberOrNil(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

// httpError maps guard and store errors onto HTTP statuses. Anything
// outside the taxonomy is a storage fault: logged here, returned generic.
func (h *Handler) httpError(err error) error {
	var ve *predictions.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	case errors.Is(err, store.ErrQuotaExceeded):
		return echo.NewHTTPError(http.StatusTooManyRequests,
			fmt.Sprintf("maximum %d predictions per user reached", h.svc.Max()))
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "prediction not found")
	case errors.Is(err, store.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "you can only delete your own predictions")
	default:
		zap.L().Error("prediction request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
