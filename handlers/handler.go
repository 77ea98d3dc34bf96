package handlers

import (
	"github.com/sahanirahul/bihar-election-2025/predictions"
	"github.com/sahanirahul/bihar-election-2025/store"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	svc   *predictions.Service
	store store.Store
}

// New creates a Handler around the prediction service and its store.
func New(svc *predictions.Service, st store.Store) *Handler {
	return &Handler{svc: svc, store: st}
}
