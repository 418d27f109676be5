package promotions

import (
	"net/http"

	"cineplex/internal/shared/apperr"
	"cineplex/internal/shared/utils/params"
	"cineplex/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	CreatePromotion(c *gin.Context)
	ListPromotions(c *gin.Context)
	GetPromotion(c *gin.Context)
	SendPromotion(c *gin.Context)
	DeletePromotion(c *gin.Context)
	ValidateCode(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// CreatePromotion godoc
// @Summary  Create an unsent promotion
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    request body CreateRequest true "Promotion"
// @Success  201 {object} response.StandardApiResponse
// @Failure  400 {object} response.StandardApiResponse
// @Failure  409 {object} response.StandardApiResponse
// @Router   /admin/promotions [post]
func (ctrl *controller) CreatePromotion(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperr.Validation("invalid request body: "+err.Error()))
		return
	}

	promotion, err := ctrl.service.CreatePromotion(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Promotion created successfully", promotion, nil)
}

func (ctrl *controller) ListPromotions(c *gin.Context) {
	promotions, err := ctrl.service.ListPromotions(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Promotions retrieved successfully", gin.H{
		"promotions": promotions,
		"count":      len(promotions),
	}, nil)
}

func (ctrl *controller) GetPromotion(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	promotion, err := ctrl.service.GetPromotion(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Promotion retrieved successfully", promotion, nil)
}

// SendPromotion godoc
// @Summary  Broadcast a promotion to subscribed customers once
// @Tags     admin
// @Produce  json
// @Param    id path int true "Promotion id"
// @Success  202 {object} response.StandardApiResponse
// @Failure  404 {object} response.StandardApiResponse
// @Failure  409 {object} response.StandardApiResponse
// @Router   /admin/promotions/{id}/send [post]
func (ctrl *controller) SendPromotion(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	result, err := ctrl.service.SendToSubscribers(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusAccepted, "Promotion is being sent", result, nil)
}

func (ctrl *controller) DeletePromotion(c *gin.Context) {
	id, err := params.UintParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	if err := ctrl.service.DeletePromotion(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Promotion deleted successfully", nil, nil)
}

// ValidateCode godoc
// @Summary  Check a promotion code
// @Tags     promotions
// @Produce  json
// @Param    code path string true "Promotion code"
// @Success  200 {object} response.StandardApiResponse
// @Failure  404 {object} response.StandardApiResponse
// @Router   /promotions/validate/{code} [get]
func (ctrl *controller) ValidateCode(c *gin.Context) {
	result, err := ctrl.service.ValidateCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Promotion code is valid", result, nil)
}
