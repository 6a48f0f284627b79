package handler

import (
	"net/http"
	"strconv"

	"slotbook/internal/availability"
	"slotbook/internal/bookings/service"
	"slotbook/internal/notify"
	"slotbook/internal/workflow"
	"slotbook/pkg/clock"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// defaultCalendarDays is the span returned when the calendar request omits to.
const defaultCalendarDays = 41

type DayResponse struct {
	Date       string           `json:"date"`
	Heading    string           `json:"heading"`
	Selectable bool             `json:"selectable"`
	Slots      []model.SlotView `json:"slots"`
}

type BookedSlotsResponse struct {
	Date        string             `json:"date"`
	Heading     string             `json:"heading"`
	HasBookings bool               `json:"has_bookings"`
	Slots       []model.BookedSlot `json:"slots"`
}

type LedgerDumpResponse struct {
	Bookings model.Ledger `json:"bookings"`
	Dates    []string     `json:"dates"`
}

type BookingHandler struct {
	ledger   service.LedgerService
	engine   *availability.Engine
	workflow *workflow.Workflow
	feed     *notify.Feed
	clock    clock.Clock
	log      *logger.Logger
}

func NewBookingHandler(
	ledger service.LedgerService,
	engine *availability.Engine,
	wf *workflow.Workflow,
	feed *notify.Feed,
	clk clock.Clock,
	log *logger.Logger,
) *BookingHandler {
	return &BookingHandler{
		ledger:   ledger,
		engine:   engine,
		workflow: wf,
		feed:     feed,
		clock:    clk,
		log:      log.Component("booking_handler"),
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/slots", h.Day)
	router.GET("/api/v1/calendar", h.Calendar)

	router.GET("/api/v1/workflow", h.WorkflowState)
	router.POST("/api/v1/workflow/select", h.Select)
	router.POST("/api/v1/workflow/accept", h.Accept)
	router.POST("/api/v1/workflow/decline", h.Decline)
	router.POST("/api/v1/workflow/submit", h.Submit)
	router.POST("/api/v1/workflow/dismiss", h.Dismiss)

	router.GET("/api/v1/bookings/:date", h.BookedSlots)
	router.DELETE("/api/v1/bookings/:date/:slot", h.Cancel)

	router.GET("/api/v1/notifications", h.Notifications)
	router.GET("/api/v1/debug/bookings", h.DebugLedger)
}

func (h *BookingHandler) Day(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date, err := httputil.ParseDate("date", r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	now := h.clock.Now()
	httputil.WriteSuccess(w, DayResponse{
		Date:       clock.DateKey(date),
		Heading:    clock.FormatShort(date),
		Selectable: clock.IsSelectable(date, now),
		Slots:      h.engine.Day(date, now),
	})
}

func (h *BookingHandler) Calendar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	now := h.clock.Now()

	from := clock.Today(h.clock)
	if s := query.Get("from"); s != "" {
		var err error
		if from, err = httputil.ParseDate("from", s); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	to := from.AddDate(0, 0, defaultCalendarDays)
	if s := query.Get("to"); s != "" {
		var err error
		if to, err = httputil.ParseDate("to", s); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	days, err := h.engine.Calendar(from, to, now)
	if err != nil {
		httputil.WriteError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	httputil.WriteSuccess(w, days)
}

func (h *BookingHandler) WorkflowState(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	httputil.WriteSuccess(w, h.workflow.Snapshot())
}

type selectRequest struct {
	Date string `json:"date"`
	Slot *int   `json:"slot"`
}

func (h *BookingHandler) Select(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req selectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	date, err := httputil.ParseDate("date", req.Date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Slot == nil {
		httputil.WriteError(w, apperrors.InvalidInput("slot is required"))
		return
	}

	res, err := h.workflow.Select(r.Context(), date, *req.Slot)
	h.writeResult(w, "Select", res, err)
}

func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res, err := h.workflow.AcceptSavedProfile(r.Context())
	h.writeResult(w, "Accept", res, err)
}

func (h *BookingHandler) Decline(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	res, err := h.workflow.DeclineSavedProfile()
	h.writeResult(w, "Decline", res, err)
}

func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var profile model.ContactProfile
	if err := httputil.DecodeJSON(r, &profile); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.workflow.Submit(r.Context(), profile)
	h.writeResult(w, "Submit", res, err)
}

func (h *BookingHandler) Dismiss(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	httputil.WriteSuccess(w, h.workflow.Dismiss())
}

func (h *BookingHandler) BookedSlots(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	date, err := httputil.ParseDate("date", ps.ByName("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	key := clock.DateKey(date)
	httputil.WriteSuccess(w, BookedSlotsResponse{
		Date:        key,
		Heading:     clock.FormatLong(date),
		HasBookings: h.ledger.HasBookings(key),
		Slots:       h.ledger.BookedSlots(key),
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.ParseDate("date", ps.ByName("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	slot, err := httputil.ParseSlotIndex(ps.ByName("slot"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.workflow.CancelBooking(r.Context(), date, slot)
	h.writeResult(w, "Cancel", res, err)
}

func (h *BookingHandler) Notifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			httputil.WriteError(w, apperrors.InvalidInput("invalid limit parameter: "+s))
			return
		}
		limit = n
	}
	httputil.WriteSuccess(w, h.feed.Recent(limit))
}

func (h *BookingHandler) DebugLedger(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	ledger := h.ledger.Snapshot()
	httputil.WriteSuccess(w, LedgerDumpResponse{
		Bookings: ledger,
		Dates:    ledger.Dates(),
	})
}

func (h *BookingHandler) writeResult(w http.ResponseWriter, op string, res workflow.Result, err error) {
	if err != nil {
		appErr := toAppError(err)
		if appErr.StatusCode() >= http.StatusInternalServerError {
			h.log.Error("Workflow step failed", "operation", op, "error", err)
		}
		httputil.WriteError(w, withResult(appErr, res))
		return
	}
	httputil.WriteSuccess(w, res)
}
