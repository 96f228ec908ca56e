package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"debtlens/pkg/contracts/domain"
)

// PresentationHandler serves the rendering defaults consumed by chart
// frontends. The record is fixed at build time, so the handler captures
// it once and replays it.
type PresentationHandler struct {
	presentation domain.Presentation
	logger       *slog.Logger
}

// NewPresentationHandler creates a presentation handler
func NewPresentationHandler(logger *slog.Logger) *PresentationHandler {
	return &PresentationHandler{
		presentation: domain.DefaultPresentation(),
		logger:       logger.With(slog.String("handler", "presentation")),
	}
}

// Get handles GET /api/presentation
func (h *PresentationHandler) Get(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.presentation)
}
