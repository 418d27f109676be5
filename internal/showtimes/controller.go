package showtimes

import (
	"net/http"

	"cineplex/internal/shared/apperr"
	"cineplex/internal/shared/utils/params"
	"cineplex/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	ScheduleShowtimes(c *gin.Context)
	GetShowtime(c *gin.Context)
	ListShowtimesForMovie(c *gin.Context)
	ListShowtimesForRoom(c *gin.Context)
	DeleteShowtime(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// ScheduleShowtimes godoc
// @Summary  Schedule one or more showtimes atomically
// @Tags     showtimes
// @Accept   json
// @Produce  json
// @Param    request body ScheduleBatchRequest true "Showtimes to admit"
// @Success  201 {object} response.StandardApiResponse
// @Failure  409 {object} response.StandardApiResponse
// @Router   /admin/showtimes [post]
func (ctrl *controller) ScheduleShowtimes(c *gin.Context) {
	var req ScheduleBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperr.Validation("invalid request body: "+err.Error()))
		return
	}

	created, err := ctrl.service.ScheduleShowtimes(c.Request.Context(), req.Showtimes)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Showtimes scheduled successfully", created, nil)
}

func (ctrl *controller) GetShowtime(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	showtime, err := ctrl.service.GetShowtime(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Showtime retrieved successfully", showtime, nil)
}

func (ctrl *controller) ListShowtimesForMovie(c *gin.Context) {
	movieID, err := params.UintParam(c, "movieId")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	showtimes, err := ctrl.service.ListShowtimesForMovie(c.Request.Context(), movieID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Showtimes retrieved successfully", gin.H{
		"movie_id":  movieID,
		"showtimes": showtimes,
		"count":     len(showtimes),
	}, nil)
}

func (ctrl *controller) ListShowtimesForRoom(c *gin.Context) {
	roomID, err := params.UintParam(c, "roomId")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	date := c.Query("date")

	showtimes, err := ctrl.service.ListShowtimesForRoom(c.Request.Context(), roomID, date)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Showtimes retrieved successfully", gin.H{
		"room_id":   roomID,
		"date":      date,
		"showtimes": showtimes,
		"count":     len(showtimes),
	}, nil)
}

func (ctrl *controller) DeleteShowtime(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	if err := ctrl.service.DeleteShowtime(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Showtime deleted successfully", nil, nil)
}
