package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	appErr "github.com/soalgen/soalgen/internal/pkg/errors"
	"github.com/soalgen/soalgen/internal/pkg/errcode"
	"github.com/soalgen/soalgen/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
