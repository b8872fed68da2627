package handler

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/invoicer/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicer/pkg/apperror"
)

// GetUsername extracts the authenticated username from the Gin context
func GetUsername(c *gin.Context) string {
	username, exists := c.Get("username")
	if !exists {
		return ""
	}
	s, _ := username.(string)
	return s
}

// requireUser writes a 401 and returns false when no user is authenticated
func requireUser(c *gin.Context) (string, bool) {
	username := GetUsername(c)
	if username == "" {
		response.Unauthorized(c, "User not authenticated")
		return "", false
	}
	return username, true
}

// bindJSON binds the body into obj. Binding rule failures become a 422 with
// one entry per field; malformed bodies become a 400.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: "failed on the '" + fe.Tag() + "' rule",
			})
		}
		response.ValidationError(c, fields)
		return false
	}

	response.BadRequest(c, "Invalid request body")
	return false
}

// fieldPath drops the struct name: "InvoiceRequest.items[0].description"
// becomes "items[0].description"
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

var registerOnce sync.Once

// RegisterJSONFieldNames makes binding errors report json field names
func RegisterJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}
