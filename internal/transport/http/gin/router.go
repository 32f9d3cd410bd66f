package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/hoangnk/clubslots/internal/domain"
	redisrepo "github.com/hoangnk/clubslots/internal/repository/redis"
	"github.com/hoangnk/clubslots/internal/service"
	"github.com/hoangnk/clubslots/internal/service/admin"
	"github.com/hoangnk/clubslots/internal/service/query"
	"github.com/hoangnk/clubslots/internal/service/reservation"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	limiter *redisrepo.SlidingWindowLimiter,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public reads
	r.GET("/events/:id", handleGetEvent(svcs))
	r.GET("/events/:id/counts", handleGetCounts(svcs))
	r.GET("/events/:id/reservations", handleListReservations(svcs))

	// Member-scoped routes
	member := r.Group("/", ProfileIDMiddleware())
	{
		member.GET("/events/:id/stats", handleGetStats(svcs))
		member.GET("/events/:id/reservations/mine", handleListMyReservations(svcs))

		member.POST("/events/:id/reservations",
			RateLimitMiddleware(limiter), handleReserve(svcs, idem))
		member.PATCH("/events/:id/slots", handleChangeSlots(svcs))

		member.DELETE("/reservations/:id", handleCancel(svcs))
		member.PATCH("/reservations/:id/quantity", handleChangeQuantity(svcs))
		member.PATCH("/reservations/:id/note", handleAnnotate(svcs))
		member.PATCH("/reservations/:id/payment", handleSetPayment(svcs))

		member.POST("/events", handleCreateEvent(svcs))
		member.PUT("/events/:id", handleUpdateEvent(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Get event
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200  {object}  domain.Event
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		ev, err := svcs.Query.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, ev, "public, max-age=30")
	}
}

// @Summary  Get confirmed/waiting totals
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200  {object}  domain.ReservationCounts
// @Router   /events/{id}/counts [get]
func handleGetCounts(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		counts, err := svcs.Query.Counts(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, counts, "public, max-age=5")
	}
}

// @Summary  Get caller's own totals for an event
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200  {object}  domain.ReservationCounts
// @Router   /events/{id}/stats [get]
func handleGetStats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		stats, err := svcs.Query.MemberStats(c.Request.Context(), profileID(c), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// @Summary  List one pool of an event, FIFO order
// @Param    id     path   string  true   "Event ID (uuid)"
// @Param    pool   query  string  false  "confirmed|waiting"
// @Param    limit  query  int     false  "page size"
// @Param    offset query  int     false  "offset"
// @Success  200  {object}  domain.ReservationPage
// @Router   /events/{id}/reservations [get]
func handleListReservations(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		pool := domain.Pool(c.DefaultQuery("pool", string(domain.PoolConfirmed)))
		limit := parseIntDefault(c.Query("limit"), 0)
		offset := parseIntDefault(c.Query("offset"), 0)

		page, err := svcs.Query.ListReservations(c.Request.Context(), eventID, pool, limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, page, "public, max-age=5")
	}
}

// @Summary  List caller's own reservations for an event
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200  {array}  domain.Reservation
// @Router   /events/{id}/reservations/mine [get]
func handleListMyReservations(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		rows, err := svcs.Query.ListMemberReservations(c.Request.Context(), profileID(c), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// @Summary  Reserve slots (idempotent)
// @Param    id  path  string  true  "Event ID (uuid)"
// @Param    req body  CreateReservationRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} MutationResponse
// @Failure  400 {object} MutationResponse
// @Failure  409 {object} MutationResponse "already reserved / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /events/{id}/reservations [post]
func handleReserve(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req CreateReservationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemReserve(eventID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		res, err := svcs.Reservation.Reserve(
			c.Request.Context(),
			profileID(c),
			eventID,
			req.Quantity,
			domain.Pool(req.Pool),
			req.Note,
		)
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondMutationErr(c, err)
			return
		}

		resp := MutationResponse{
			Success:     true,
			Code:        http.StatusCreated,
			Message:     "reservation created",
			Reservation: res,
		}

		if idemStorageKey != "" {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Cancel a reservation
// @Param    id  path  string  true  "Reservation ID (uuid)"
// @Success  200 {object} MutationResponse
// @Failure  404 {object} MutationResponse
// @Router   /reservations/{id} [delete]
func handleCancel(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		reservationID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		ev, err := svcs.Reservation.Cancel(c.Request.Context(), profileID(c), reservationID)
		if err != nil {
			respondMutationErr(c, err)
			return
		}
		c.JSON(http.StatusOK, MutationResponse{
			Success: true,
			Code:    http.StatusOK,
			Message: "reservation cancelled",
			Event:   ev,
		})
	}
}

// @Summary  Lower a reservation's quantity
// @Param    id  path  string  true  "Reservation ID (uuid)"
// @Param    req body  ChangeQuantityRequest true "payload"
// @Success  200 {object} MutationResponse
// @Failure  400 {object} MutationResponse "increase requested"
// @Router   /reservations/{id}/quantity [patch]
func handleChangeQuantity(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		reservationID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req ChangeQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svcs.Reservation.ChangeQuantity(c.Request.Context(), profileID(c), reservationID, *req.Quantity)
		if err != nil {
			respondMutationErr(c, err)
			return
		}
		msg := "quantity updated"
		if res == nil {
			msg = "reservation deleted"
		}
		c.JSON(http.StatusOK, MutationResponse{
			Success:     true,
			Code:        http.StatusOK,
			Message:     msg,
			Reservation: res,
		})
	}
}

// @Summary  Set the caller's note on a reservation
// @Param    id  path  string  true  "Reservation ID (uuid)"
// @Param    req body  NoteRequest true "payload"
// @Success  200 {object} MutationResponse
// @Router   /reservations/{id}/note [patch]
func handleAnnotate(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		reservationID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req NoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svcs.Reservation.Annotate(c.Request.Context(), profileID(c), reservationID, req.Note)
		if err != nil {
			respondMutationErr(c, err)
			return
		}
		c.JSON(http.StatusOK, MutationResponse{
			Success:     true,
			Code:        http.StatusOK,
			Message:     "note updated",
			Reservation: res,
		})
	}
}

// @Summary  Tag a reservation's payment state (admin)
// @Param    id  path  string  true  "Reservation ID (uuid)"
// @Param    req body  PaymentRequest true "payload"
// @Success  200 {object} MutationResponse
// @Failure  403 {object} MutationResponse
// @Router   /reservations/{id}/payment [patch]
func handleSetPayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		reservationID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svcs.Reservation.SetPaymentTag(c.Request.Context(), profileID(c), reservationID, req.PaymentTag)
		if err != nil {
			respondMutationErr(c, err)
			return
		}
		c.JSON(http.StatusOK, MutationResponse{
			Success:     true,
			Code:        http.StatusOK,
			Message:     "payment tag updated",
			Reservation: res,
		})
	}
}

// @Summary  Adjust the caller's total in one pool
// @Param    id  path  string  true  "Event ID (uuid)"
// @Param    req body  ChangeSlotsRequest true "payload"
// @Success  200 {object} MutationResponse
// @Router   /events/{id}/slots [patch]
func handleChangeSlots(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req ChangeSlotsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		err := svcs.Reservation.ChangeSlots(c.Request.Context(), profileID(c), eventID, domain.Pool(req.Pool), *req.Total)
		if err != nil {
			respondMutationErr(c, err)
			return
		}
		c.JSON(http.StatusOK, MutationResponse{
			Success: true,
			Code:    http.StatusOK,
			Message: "slots updated",
		})
	}
}

// @Summary  Create event (admin)
// @Param    req body  EventRequest true "payload"
// @Success  201 {object} MutationResponse
// @Router   /events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		clubID, err := uuid.Parse(req.ClubID)
		if err != nil {
			badRequest(c, "invalid club_id")
			return
		}
		in, ok := eventInput(c, clubID, req)
		if !ok {
			return
		}
		ev, err := svcs.Admin.CreateEvent(c.Request.Context(), profileID(c), in)
		if err != nil {
			respondMutationErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, MutationResponse{
			Success: true,
			Code:    http.StatusCreated,
			Message: "event created",
			Event:   ev,
		})
	}
}

// @Summary  Update event (admin)
// @Param    id  path  string  true  "Event ID (uuid)"
// @Param    req body  EventRequest true "payload"
// @Success  200 {object} MutationResponse
// @Failure  400 {object} MutationResponse "slot below confirmed total"
// @Router   /events/{id} [put]
func handleUpdateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req EventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		in, ok := eventInput(c, uuid.Nil, req)
		if !ok {
			return
		}
		ev, err := svcs.Admin.UpdateEvent(c.Request.Context(), profileID(c), eventID, in)
		if err != nil {
			respondMutationErr(c, err)
			return
		}
		c.JSON(http.StatusOK, MutationResponse{
			Success: true,
			Code:    http.StatusOK,
			Message: "event updated",
			Event:   ev,
		})
	}
}

// --- Helpers ---

func eventInput(c *gin.Context, clubID uuid.UUID, req EventRequest) (admin.EventInput, bool) {
	starts, err := parseRFC3339(req.StartsAt)
	if err != nil {
		badRequest(c, "invalid starts_at (RFC3339)")
		return admin.EventInput{}, false
	}
	ends, err := parseRFC3339(req.EndsAt)
	if err != nil {
		badRequest(c, "invalid ends_at (RFC3339)")
		return admin.EventInput{}, false
	}
	return admin.EventInput{
		ClubID:      clubID,
		Title:       req.Title,
		Description: req.Description,
		Slot:        req.Slot,
		MaxVote:     req.MaxVote,
		Start:       starts,
		End:         ends,
		Status:      domain.EventStatus(req.Status),
	}, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// statusFor maps service sentinels onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, reservation.ErrEventNotFound),
		errors.Is(err, reservation.ErrReservationNotFound),
		errors.Is(err, query.ErrEventNotFound),
		errors.Is(err, admin.ErrEventNotFound):
		return http.StatusNotFound

	case errors.Is(err, reservation.ErrNotClubMember),
		errors.Is(err, reservation.ErrNotClubAdmin),
		errors.Is(err, query.ErrNotClubMember),
		errors.Is(err, admin.ErrNotClubMember),
		errors.Is(err, admin.ErrNotClubAdmin):
		return http.StatusForbidden

	case errors.Is(err, reservation.ErrAlreadyReserved):
		return http.StatusConflict

	case errors.Is(err, reservation.ErrVotingNotStarted),
		errors.Is(err, reservation.ErrVotingClosed),
		errors.Is(err, reservation.ErrBadQuantity),
		errors.Is(err, reservation.ErrOnlyDecrease),
		errors.Is(err, reservation.ErrMemberCapExceeded),
		errors.Is(err, reservation.ErrSlotFull),
		errors.Is(err, admin.ErrInvalidEvent),
		errors.Is(err, admin.ErrSlotBelowConfirmed),
		errors.Is(err, query.ErrBadPool):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func message(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	// The sentinel text is the reason string; strip the op prefix.
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return msg
}

func respondErr(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, ErrorResponse{Error: message(err, status)})
}

func respondMutationErr(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, MutationResponse{
		Success: false,
		Code:    status,
		Message: message(err, status),
	})
}
