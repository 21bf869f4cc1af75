package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/callsight/callsight/internal/model"
	"github.com/callsight/callsight/internal/pkg/response"
	"github.com/callsight/callsight/internal/service"
)

type CallHandler struct {
	ingest *service.IngestService
}

func NewCallHandler(ingest *service.IngestService) *CallHandler {
	return &CallHandler{ingest: ingest}
}

// AddNew ingests one call: POST /calls_data/add_new.
func (h *CallHandler) AddNew(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		response.Error(c, http.StatusBadRequest, "No JSON data provided")
		return
	}
	var raw model.RawCall
	if err := json.Unmarshal(body, &raw); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body structure")
		return
	}
	if err := h.ingest.Ingest(c.Request.Context(), &raw, body); err != nil {
		handleIngestError(c, &raw, err)
		return
	}
	response.Success(c, "Call data successfully processed and stored")
}
