package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer/internal/application/service"
	"github.com/sangkips/invoicer/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer/internal/presentation/http/dto/response"
)

// ClientHandler handles saved-client HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List returns the names of the user's saved clients
func (h *ClientHandler) List(c *gin.Context) {
	username, ok := requireUser(c)
	if !ok {
		return
	}

	names, err := h.clientService.ListClients(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	response.OK(c, "Clients retrieved successfully", names)
}

// Create saves a new client. An existing name is a 409.
func (h *ClientHandler) Create(c *gin.Context) {
	username, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.SaveClient(c.Request.Context(), &service.SaveClientInput{
		Username: username,
		Name:     req.Name,
		Address:  req.Address,
		TaxID:    req.TaxID,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client saved successfully", client)
}

// Get returns one saved client by name
func (h *ClientHandler) Get(c *gin.Context) {
	username, ok := requireUser(c)
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), username, c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client retrieved successfully", client)
}
