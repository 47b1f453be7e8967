package api

import (
	"errors"
	"net/http"
	"strconv"

	"tengen/gateway/internal/gateway"
	"tengen/gateway/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler contains API handlers
type Handler struct {
	db *gorm.DB
	gw *gateway.Gateway
}

// NewHandler creates a new API handler
func NewHandler(db *gorm.DB, gw *gateway.Gateway) *Handler {
	return &Handler{
		db: db,
		gw: gw,
	}
}

// writeGatewayError maps ledger errors onto HTTP status codes
func writeGatewayError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gateway.ErrInsufficientFee):
		status = http.StatusPaymentRequired
	case errors.Is(err, gateway.ErrNotAuthorizedComputeNode),
		errors.Is(err, gateway.ErrNotAuthorizedAdmin):
		status = http.StatusForbidden
	case errors.Is(err, gateway.ErrJobDoesNotExist):
		status = http.StatusNotFound
	case errors.Is(err, gateway.ErrJobAlreadyCompleted),
		errors.Is(err, gateway.ErrJobAlreadyFailed),
		errors.Is(err, gateway.ErrInvalidJobStatus),
		errors.Is(err, gateway.ErrNoFeesToWithdraw):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func jobIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return 0, false
	}
	return id, true
}

// SubmitJobRequest represents a job submission. InputData is base64 in JSON.
type SubmitJobRequest struct {
	Requester  string `json:"requester" binding:"required"`
	TaskType   uint8  `json:"task_type"`
	InputData  []byte `json:"input_data"`
	PaidAmount uint64 `json:"paid_amount"`
}

// SubmitJob accepts a paid compute job
func (h *Handler) SubmitJob(c *gin.Context) {
	var req SubmitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID, err := h.gw.RequestCompute(req.Requester, req.TaskType, req.InputData, req.PaidAmount)
	if err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"job_id": jobID})
}

// GetJob returns the full job record
func (h *Handler) GetJob(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	job, err := h.gw.GetJob(jobID)
	if err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetJobStatus returns the job's status code and name
func (h *Handler) GetJobStatus(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	status, err := h.gw.GetJobStatus(jobID)
	if err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":      jobID,
		"status":      status,
		"status_name": models.StatusName(status),
	})
}

// GetJobResult returns the result bytes of a completed job
func (h *Handler) GetJobResult(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	result, err := h.gw.GetJobResult(jobID)
	if err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":      jobID,
		"result_data": result,
		"result_hash": gateway.HashResult(result),
	})
}

// GetStats returns the ledger counters and current minimum fee
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.gw.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListJobs returns jobs with pagination, optionally filtered by status name
func (h *Handler) ListJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	status := c.Query("status")

	jobs, total, err := h.gw.ListJobs(limit, offset, status)
	if err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":   jobs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// ListPendingJobs returns pending jobs oldest-first, for bridge nodes
func (h *Handler) ListPendingJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	jobs, err := h.gw.ListPendingJobs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// SubmitResultRequest represents a result report from a compute node
type SubmitResultRequest struct {
	Node       string `json:"node" binding:"required"`
	ResultData []byte `json:"result_data"`
}

// SubmitResult records a successful job outcome
func (h *Handler) SubmitResult(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	var req SubmitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gw.SubmitResult(req.Node, jobID, req.ResultData); err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "result recorded"})
}

// MarkFailedRequest represents a failure report from a compute node
type MarkFailedRequest struct {
	Node   string `json:"node" binding:"required"`
	Reason string `json:"reason"`
}

// MarkJobFailed records a failed job outcome
func (h *Handler) MarkJobFailed(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	var req MarkFailedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gw.MarkJobFailed(req.Node, jobID, req.Reason); err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "job marked failed"})
}

// IsAuthorizedNode reports whether an address is in the executor registry
func (h *Handler) IsAuthorizedNode(c *gin.Context) {
	address := c.Param("address")

	authorized, err := h.gw.IsAuthorizedNode(address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":    address,
		"authorized": authorized,
	})
}

// ListNodes returns the executor registry contents
func (h *Handler) ListNodes(c *gin.Context) {
	nodes, err := h.gw.ListComputeNodes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"nodes": nodes})
}

// AuthorizeNode adds an address to the executor registry
func (h *Handler) AuthorizeNode(c *gin.Context) {
	address := c.Param("address")
	caller := c.GetString("address")

	if err := h.gw.AuthorizeComputeNode(caller, address); err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "node authorized"})
}

// RevokeNode removes an address from the executor registry
func (h *Handler) RevokeNode(c *gin.Context) {
	address := c.Param("address")
	caller := c.GetString("address")

	if err := h.gw.RevokeComputeNode(caller, address); err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "node revoked"})
}

// UpdateMinFeeRequest represents a minimum fee change
type UpdateMinFeeRequest struct {
	MinFee uint64 `json:"min_fee"`
}

// UpdateMinFee sets the minimum fee for subsequent submissions
func (h *Handler) UpdateMinFee(c *gin.Context) {
	var req UpdateMinFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := c.GetString("address")
	if err := h.gw.UpdateMinFee(caller, req.MinFee); err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "min_fee": req.MinFee})
}

// GetTreasury returns the current custodial balance
func (h *Handler) GetTreasury(c *gin.Context) {
	balance, err := h.gw.Balance()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// WithdrawRequest represents a treasury sweep
type WithdrawRequest struct {
	Destination string `json:"destination" binding:"required"`
}

// WithdrawFees sweeps the custodial balance to the destination account
func (h *Handler) WithdrawFees(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := c.GetString("address")
	amount, err := h.gw.WithdrawFees(caller, req.Destination)
	if err != nil {
		writeGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"destination": req.Destination,
		"amount":      amount,
	})
}

// ListEvents returns event log entries after the given ID, for observers
// that poll instead of holding a websocket open
func (h *Handler) ListEvents(c *gin.Context) {
	after, _ := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.gw.ListEvents(after, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
