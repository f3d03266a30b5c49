package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

type codeErr struct {
	code uint32
	msg  string
}

func (e codeErr) Error() string {
	return e.msg
}

func (e codeErr) Code() uint32 {
	return e.code
}

// AsCodeErr builds an error carrying an API error code, in the shape
// proxyutil expects when rendering failures.
func AsCodeErr(code uint32, msg string) error {
	return codeErr{code: code, msg: msg}
}

func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

// Error renders a failure envelope. The HTTP status stays 200; the API
// error code in the body is what clients dispatch on.
func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, http.StatusOK, AsCodeErr(uint32(code), message))
}
