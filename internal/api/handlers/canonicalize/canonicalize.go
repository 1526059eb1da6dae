package canonicalize

import (
	"net/http"

	"ingredient-canonicalizer/internal/core/pipeline"
	"ingredient-canonicalizer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 標準化 API 處理器：批次提交與單列試算兩個端點。

const maxRowsPerRequest = 1000

// Handler 標準化處理器
type Handler struct {
	pipe *pipeline.Pipeline
}

// NewHandler 創建標準化處理器
func NewHandler(pipe *pipeline.Pipeline) *Handler {
	return &Handler{pipe: pipe}
}

// BatchRequest 批次標準化請求
type BatchRequest struct {
	Rows []pipeline.InputRow `json:"rows"`
}

// BatchResponse 批次標準化響應
type BatchResponse struct {
	Records  []pipeline.Record `json:"records"`
	Total    int               `json:"total"`
	Rejected int               `json:"rejected"`
}

// HandleBatch 批次標準化：輸入列原序返回
func (h *Handler) HandleBatch(c *gin.Context) {
	var req BatchRequest
	if err := common.DecodeJSON(c.Request.Body, &req); err != nil {
		common.LogWarn("批次請求解碼失敗",
			zap.Error(err),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
		)
		c.JSON(common.ErrInvalidRequest.Status, common.ErrInvalidRequest.Response("invalid request body"))
		return
	}

	if len(req.Rows) == 0 {
		c.JSON(common.ErrInvalidRequest.Status, common.ErrInvalidRequest.Response("rows must not be empty"))
		return
	}
	if len(req.Rows) > maxRowsPerRequest {
		c.JSON(common.ErrInvalidRequest.Status, common.ErrInvalidRequest.Response("too many rows in a single request"))
		return
	}

	resp := BatchResponse{
		Records: make([]pipeline.Record, 0, len(req.Rows)),
		Total:   len(req.Rows),
	}
	for _, row := range req.Rows {
		rec := h.pipe.Process(row)
		if rec.RejectCode != "" {
			resp.Rejected++
		}
		resp.Records = append(resp.Records, rec)
	}

	common.LogInfo("批次標準化完成",
		zap.Int("total", resp.Total),
		zap.Int("rejected", resp.Rejected),
		zap.String("request_id", c.GetHeader("X-Request-ID")),
	)

	c.JSON(http.StatusOK, resp)
}

// HandleLine 單列試算：方便資料維運驗證單筆輸入
func (h *Handler) HandleLine(c *gin.Context) {
	var row pipeline.InputRow
	if err := common.DecodeJSON(c.Request.Body, &row); err != nil {
		c.JSON(common.ErrInvalidRequest.Status, common.ErrInvalidRequest.Response("invalid request body"))
		return
	}

	rec := h.pipe.Process(row)
	c.JSON(http.StatusOK, rec)
}
