package bookings

import (
	"errors"
	"io"
	"net/http"
	"time"

	"cineplex/internal/shared/apperr"
	"cineplex/internal/shared/middleware"
	"cineplex/internal/shared/utils/params"
	"cineplex/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	CreateBooking(c *gin.Context)
	GetBooking(c *gin.Context)
	GetBookingDetails(c *gin.Context)
	ConfirmBooking(c *gin.Context)
	CancelBooking(c *gin.Context)
	DeleteBooking(c *gin.Context)
	GetBookingsForCustomer(c *gin.Context)
	ExpireStaleBookings(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// CreateBooking godoc
// @Summary  Open a pending booking for a customer
// @Tags     bookings
// @Accept   json
// @Produce  json
// @Param    request body CreateBookingRequest false "Customer id when the token carries none"
// @Success  201 {object} response.StandardApiResponse
// @Failure  404 {object} response.StandardApiResponse
// @Router   /bookings [post]
func (ctrl *controller) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, apperr.Validation("invalid request body: "+err.Error()))
		return
	}

	customerID := req.CustomerID
	if id, ok := middleware.CustomerIDFromContext(c); ok {
		customerID = id
	}

	booking, err := ctrl.service.CreateBookingShell(c.Request.Context(), customerID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Booking created successfully", booking, nil)
}

func (ctrl *controller) GetBooking(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

func (ctrl *controller) GetBookingDetails(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	details, err := ctrl.service.GetBookingDetails(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", details, nil)
}

// ConfirmBooking godoc
// @Summary  Confirm a pending booking
// @Tags     bookings
// @Produce  json
// @Param    id path int true "Booking id"
// @Success  200 {object} response.StandardApiResponse
// @Failure  409 {object} response.StandardApiResponse
// @Router   /bookings/{id}/confirm [put]
func (ctrl *controller) ConfirmBooking(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	booking, err := ctrl.service.ConfirmBooking(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking confirmed successfully", booking, nil)
}

func (ctrl *controller) CancelBooking(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	booking, err := ctrl.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking cancelled successfully", booking, nil)
}

func (ctrl *controller) DeleteBooking(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	if err := ctrl.service.DeleteBooking(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking deleted successfully", nil, nil)
}

func (ctrl *controller) GetBookingsForCustomer(c *gin.Context) {
	customerID, err := params.UintParam(c, "customerId")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	bookings, err := ctrl.service.GetBookingsForCustomer(c.Request.Context(), customerID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", gin.H{
		"customer_id": customerID,
		"bookings":    bookings,
		"count":       len(bookings),
	}, nil)
}

// ExpireStaleBookings godoc
// @Summary  Run the pending-booking expiry sweep now
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    request body ExpireBookingsRequest false "Threshold override"
// @Success  200 {object} response.StandardApiResponse
// @Router   /admin/bookings/expire [post]
func (ctrl *controller) ExpireStaleBookings(c *gin.Context) {
	var req ExpireBookingsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, apperr.Validation("invalid request body: "+err.Error()))
		return
	}

	threshold := ctrl.service.PendingExpiry()
	if req.ThresholdMinutes > 0 {
		threshold = time.Duration(req.ThresholdMinutes) * time.Minute
	}

	expired, err := ctrl.service.ExpireStalePendingBookings(c.Request.Context(), threshold)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Expiry sweep completed", ExpireBookingsResponse{
		Expired:          expired,
		ThresholdMinutes: int(threshold / time.Minute),
		RanAt:            time.Now().UTC(),
	}, nil)
}
