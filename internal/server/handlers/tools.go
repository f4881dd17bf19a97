package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-tools-service/internal/server/utils"
	"github.com/vzahanych/weather-tools-service/internal/tools"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// maxArgumentBytes caps the size of a tool call body.
const maxArgumentBytes = 1 << 20

type ToolsHandler struct {
	kit    *tools.Toolkit
	logger *zap.Logger
}

func NewToolsHandler(kit *tools.Toolkit, logger *zap.Logger) *ToolsHandler {
	return &ToolsHandler{
		kit:    kit,
		logger: logger,
	}
}

// ListTools returns the exported tool definitions.
func (h *ToolsHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, h.kit.Definitions())
}

// CallTool runs the tool named in the path with the JSON request body as its
// arguments. An empty body is an empty argument object.
func (h *ToolsHandler) CallTool(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	name := c.Param("name")

	reqLogger := h.logger.With(
		zap.String("request_id", utils.GetRequestIDFromGinContext(c)),
		zap.String("tool", name))

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxArgumentBytes))
	if err != nil {
		reqLogger.Warn("Failed to read tool arguments", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    CodeInvalidParams,
			Details: err.Error(),
		})
		return
	}

	result, err := h.kit.Call(ctx, name, body)
	if err != nil {
		var validationErr *tools.ValidationError
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "Tool not found",
				Code:    CodeToolNotFound,
				Details: err.Error(),
			})
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid request parameters",
				Code:    CodeInvalidParams,
				Details: err.Error(),
				Fields:  validationErr.Fields,
			})
		default:
			reqLogger.Error("Tool call rejected", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "Internal error",
				Code:    CodeInternal,
				Details: err.Error(),
			})
		}
		return
	}

	utils.GetSpanFromGinContext(c).SetAttributes(attribute.String("tool.outcome", result.Outcome.String()))

	if !result.OK() {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "Tool execution failed",
			Code:    CodeHandlerFault,
			Details: result.Fault.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result.Value)
}
