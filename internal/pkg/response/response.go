package response

import "github.com/gin-gonic/gin"

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func Success(ctx *gin.Context, status int, data interface{}, meta interface{}) {
	ctx.JSON(status, envelope{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func Error(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, envelope{
		Success: false,
		Error: &errorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
