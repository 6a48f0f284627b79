package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	profileserrors "slotbook/internal/profiles/errors"
	"slotbook/internal/profiles/service"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
)

type ProfileHandler struct {
	service service.ProfileService
	log     *logger.Logger
}

func NewProfileHandler(svc service.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: svc,
		log:     log.Component("profile_handler"),
	}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	profile, ok := h.service.Get(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Wrap(profileserrors.ErrNoProfile,
			apperrors.CodeNotFound, "No saved contact details", http.StatusNotFound))
		return
	}
	httputil.WriteSuccess(w, profile)
}

func (h *ProfileHandler) Clear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.Clear(r.Context()); err != nil {
		h.log.Error("Failed to clear contact profile", "error", err)
		httputil.WriteError(w, apperrors.Internal("Failed to clear contact details", err))
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ProfileHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/profile", h.Get)
	router.DELETE("/api/v1/profile", h.Clear)
}
