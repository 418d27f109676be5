package tickets

import (
	"net/http"

	"cineplex/internal/shared/apperr"
	"cineplex/internal/shared/utils/params"
	"cineplex/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	IssueTicket(c *gin.Context)
	GetTicket(c *gin.Context)
	DeleteTicket(c *gin.Context)
	ListTicketsForBooking(c *gin.Context)
	ListTicketsForCustomer(c *gin.Context)
	GetSeatMap(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// IssueTicket godoc
// @Summary  Add a ticket to a pending booking
// @Tags     tickets
// @Accept   json
// @Produce  json
// @Param    request body IssueRequest true "Seat to claim"
// @Success  201 {object} response.StandardApiResponse
// @Failure  409 {object} response.StandardApiResponse
// @Router   /tickets [post]
func (ctrl *controller) IssueTicket(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperr.Validation("invalid request body: "+err.Error()))
		return
	}

	ticket, err := ctrl.service.IssueTicket(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Ticket issued successfully", ticket, nil)
}

func (ctrl *controller) GetTicket(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	ticket, err := ctrl.service.GetTicket(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket retrieved successfully", ticket, nil)
}

func (ctrl *controller) DeleteTicket(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	if err := ctrl.service.DeleteTicket(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket removed successfully", nil, nil)
}

func (ctrl *controller) ListTicketsForBooking(c *gin.Context) {
	bookingID, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	tickets, err := ctrl.service.ListTicketsForBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tickets retrieved successfully", gin.H{
		"booking_id": bookingID,
		"tickets":    tickets,
		"count":      len(tickets),
	}, nil)
}

func (ctrl *controller) ListTicketsForCustomer(c *gin.Context) {
	customerID, err := params.UintParam(c, "customerId")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	tickets, err := ctrl.service.ListTicketsForCustomer(c.Request.Context(), customerID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tickets retrieved successfully", gin.H{
		"customer_id": customerID,
		"tickets":     tickets,
		"count":       len(tickets),
	}, nil)
}

// GetSeatMap godoc
// @Summary  Seats taken for a showtime
// @Tags     showtimes
// @Produce  json
// @Param    id path int true "Showtime ID"
// @Success  200 {object} response.StandardApiResponse
// @Router   /showtimes/{id}/seats [get]
func (ctrl *controller) GetSeatMap(c *gin.Context) {
	showtimeID, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	seatMap, err := ctrl.service.GetSeatMap(c.Request.Context(), showtimeID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}
