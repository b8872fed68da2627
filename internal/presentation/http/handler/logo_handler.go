package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer/internal/application/service"
	"github.com/sangkips/invoicer/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicer/pkg/apperror"
)

// multipartOverhead leaves room for boundaries and headers around the file part
const multipartOverhead = 1 << 20

// LogoHandler handles company logo uploads
type LogoHandler struct {
	logoService *service.LogoService
}

// NewLogoHandler creates a new logo handler
func NewLogoHandler(logoService *service.LogoService) *LogoHandler {
	return &LogoHandler{logoService: logoService}
}

// Upload stores the multipart "logo" file as the user's logo
func (h *LogoHandler) Upload(c *gin.Context) {
	username, ok := requireUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.logoService.MaxSize()+multipartOverhead)

	header, err := c.FormFile("logo")
	if err != nil {
		response.Error(c, apperror.NewValidationError([]apperror.FieldError{
			{Field: "logo", Message: "a logo file up to the upload size limit is required"},
		}))
		return
	}
	if header.Size > h.logoService.MaxSize() {
		response.Error(c, apperror.NewValidationError([]apperror.FieldError{
			{Field: "logo", Message: "file exceeds the upload size limit"},
		}))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	if _, err := h.logoService.Upload(c.Request.Context(), username, header.Filename, file); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Logo uploaded successfully", gin.H{"filename": header.Filename})
}
