package handler

import (
	"errors"
	"net/http"

	"sigoc/internal/service"
	"sigoc/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// writeServiceError translates service layer failures into the API's
// error envelope. Validation problems carry per-field messages,
// missing records map to 404, reference conflicts to 409 and anything
// unexpected to 500.
func writeServiceError(c *gin.Context, err error) {
	var fieldErrs service.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, response.ValidationFailed(http.StatusBadRequest, fieldErrs))
	case errors.Is(err, service.ErrProcessoNaoEncontrado),
		errors.Is(err, service.ErrDemandaNaoEncontrada),
		errors.Is(err, service.ErrReuniaoNaoEncontrada),
		errors.Is(err, service.ErrRegistroNaoEncontrado),
		errors.Is(err, service.ErrUsuarioNaoEncontrado),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, service.ErrRegistroEmUso),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}
