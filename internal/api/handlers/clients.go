package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dhima/client-service/internal/api/response"
	"github.com/dhima/client-service/internal/apperr"
	"github.com/dhima/client-service/internal/logging"
	"github.com/dhima/client-service/internal/models"
	"github.com/dhima/client-service/internal/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientService is the client business logic the handlers delegate to.
type ClientService interface {
	ListClients(ctx context.Context, query models.ListClientsQuery) (models.ClientListResponse, error)
	GetClient(ctx context.Context, rawID string) (*models.ClientDetail, error)
	CreateClient(ctx context.Context, payload []byte) (models.MessageResponse, error)
	CreateClients(ctx context.Context, payload []byte) (models.MessageResponse, error)
	UpdateClient(ctx context.Context, rawID string, payload []byte) (models.MessageResponse, error)
	DeleteClients(ctx context.Context, payload []byte) (models.MessageResponse, error)
}

// ClientHandler handles client CRUD requests.
type ClientHandler struct {
	logger  logging.Logger
	service ClientService
}

// NewClientHandler creates a new client handler.
func NewClientHandler(logger logging.Logger, service ClientService) *ClientHandler {
	return &ClientHandler{
		logger:  logger.With(zap.String("handler", "client")),
		service: service,
	}
}

// ListClients godoc
// @Summary List clients
// @Description Returns one page of clients ordered by id
// @Tags Clients
// @Produce json
// @Param page query int false "Page number" default(1) minimum(1)
// @Success 200 {object} response.PaginatedResponse{data=[]models.Client}
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	var query models.ListClientsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("invalid list clients query",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid query parameters", err.Error())
		return
	}

	result, err := h.service.ListClients(c.Request.Context(), query)
	if h.handleServiceError(c, err, "list clients") {
		return
	}
	response.Paginated(c, result.Clients, result.Pagination)
}

// GetClient godoc
// @Summary Get a client
// @Description Returns one client joined with its role
// @Tags Clients
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} response.SuccessResponse{data=models.ClientDetail}
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 404 {object} response.ErrorResponse "Client not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	result, err := h.service.GetClient(c.Request.Context(), c.Param("id"))
	if h.handleServiceError(c, err, "get client") {
		return
	}
	response.OK(c, result)
}

// CreateClient godoc
// @Summary Create a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param client body models.CreateClientRequest true "Client"
// @Success 201 {object} response.SuccessResponse{data=models.MessageResponse}
// @Failure 400 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	payload, ok := h.readBody(c)
	if !ok {
		return
	}
	result, err := h.service.CreateClient(c.Request.Context(), payload)
	if h.handleServiceError(c, err, "create client") {
		return
	}
	response.Created(c, result, result.Message)
}

// CreateClients godoc
// @Summary Create several clients
// @Description Inserts every client in one transaction; nothing is stored if any row fails
// @Tags Clients
// @Accept json
// @Produce json
// @Param clients body models.BulkCreateClientsRequest true "Clients"
// @Success 201 {object} response.SuccessResponse{data=models.MessageResponse}
// @Failure 400 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/clients/bulk [post]
func (h *ClientHandler) CreateClients(c *gin.Context) {
	payload, ok := h.readBody(c)
	if !ok {
		return
	}
	result, err := h.service.CreateClients(c.Request.Context(), payload)
	if h.handleServiceError(c, err, "create clients") {
		return
	}
	response.Created(c, result, result.Message)
}

// UpdateClient godoc
// @Summary Update a client
// @Description The id in the path overrides any id in the body
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path int true "Client ID"
// @Param client body models.UpdateClientRequest true "Client"
// @Success 200 {object} response.SuccessResponse{data=models.MessageResponse}
// @Failure 400 {object} response.ErrorResponse "Validation failed"
// @Failure 404 {object} response.ErrorResponse "Client not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	payload, ok := h.readBody(c)
	if !ok {
		return
	}
	result, err := h.service.UpdateClient(c.Request.Context(), c.Param("id"), payload)
	if h.handleServiceError(c, err, "update client") {
		return
	}
	response.Success(c, http.StatusOK, result, result.Message)
}

// DeleteClients godoc
// @Summary Delete clients
// @Tags Clients
// @Accept json
// @Produce json
// @Param ids body models.DeleteClientsRequest true "Client IDs"
// @Success 200 {object} response.SuccessResponse{data=models.MessageResponse}
// @Failure 400 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/clients [delete]
func (h *ClientHandler) DeleteClients(c *gin.Context) {
	payload, ok := h.readBody(c)
	if !ok {
		return
	}
	result, err := h.service.DeleteClients(c.Request.Context(), payload)
	if h.handleServiceError(c, err, "delete clients") {
		return
	}
	response.Success(c, http.StatusOK, result, result.Message)
}

func (h *ClientHandler) readBody(c *gin.Context) ([]byte, bool) {
	payload, err := c.GetRawData()
	if err != nil {
		h.logger.Warn("could not read request body",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid request body", err.Error())
		return nil, false
	}
	return payload, true
}

// handleServiceError writes the error response for err and reports whether
// there was one. Internal failures are logged by the service.
func (h *ClientHandler) handleServiceError(c *gin.Context, err error, operation string) bool {
	if err == nil {
		return false
	}

	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		h.logger.Warn(operation+" rejected",
			zap.Strings("messages", validationErr.Messages),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, validationErr.Error(), validationErr.Messages)
		return true
	}

	message := "internal server error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	status := apperr.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(operation+" failed",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
	}
	response.Error(c, status, message, nil)
	return true
}
