package response

import "github.com/gin-gonic/gin"

// Body is the wire envelope for every ingestion response. Code is 0 on
// success and 1 on any rejection or failure; Status mirrors the HTTP
// status so queue consumers that drop the transport layer keep it.
type Body struct {
	Code    int    `json:"code"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func Success(c *gin.Context, message string) {
	c.JSON(200, Body{Code: 0, Status: 200, Message: message})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Body{Code: 1, Status: status, Message: message})
}
