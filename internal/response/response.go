package response

import (
	"github.com/gin-gonic/gin"

	apperrors "sceneforge/pkg/errors"
)

// Response is the standard API response structure
type Response struct {
	Error  int32  `json:"error"` // Error code (0 = success)
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
	Data   any    `json:"data"`
}

// R sends a JSON response
func R(c *gin.Context, data any) {
	c.JSON(200, data)
}

// Success returns a success response with data
func Success(c *gin.Context, data any) {
	c.JSON(200, Response{
		Error: 0,
		Msg:   "Success",
		Data:  data,
	})
}

// Error returns an error response with code and message
func Error(c *gin.Context, code int, msg string) {
	c.JSON(200, Response{
		Error: int32(code),
		Msg:   msg,
	})
}

// FromError converts an error to a Response, extracting the code, message
// and detail when the error is an AppError.
func FromError(err error) Response {
	if err == nil {
		return Response{Error: 0, Msg: "Success"}
	}

	var detail string
	if appErr, ok := err.(*apperrors.AppError); ok {
		detail = appErr.Detail
	}
	return Response{
		Error:  int32(apperrors.GetCode(err)),
		Msg:    apperrors.GetMessage(err),
		Detail: detail,
	}
}

// ErrorResponse sends an error response from an error
func ErrorResponse(c *gin.Context, err error) {
	c.JSON(200, FromError(err))
}
