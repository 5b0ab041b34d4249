package http

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/domain/entity"
	"github.com/davinrkh/finbook/internal/report"
)

// UploadStore stores uploaded blobs and hands back references.
type UploadStore interface {
	Save(ctx context.Context, filename string, content []byte) (string, error)
	Open(ctx context.Context, ref string) ([]byte, error)
}

// Response is the uniform JSON envelope for all API responses.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
}

// Handlers holds all HTTP request handlers
type Handlers struct {
	services  Services
	logger    Logger
	maxUpload int64
}

// NewHandlers creates handlers with the given services
func NewHandlers(services Services, logger Logger, maxUpload int64) *Handlers {
	return &Handlers{
		services:  services,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

// statusFor maps an error kind to its HTTP status. Errors without a
// kind are treated as upstream failures.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), Response{
		Success:   false,
		Error:     err.Error(),
		ErrorKind: apperr.KindOf(err).String(),
	})
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{
			Success:   false,
			Error:     "invalid id",
			ErrorKind: apperr.KindValidation.String(),
		})
		return 0, false
	}
	return id, true
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{"status": "ok"})
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "invalid login payload", err))
		return
	}

	token, user, err := h.services.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// Bad credentials are a 401, not a 403: the caller has not
		// authenticated at all.
		if apperr.IsKind(err, apperr.KindAuthorization) {
			c.JSON(http.StatusUnauthorized, Response{
				Success:   false,
				Error:     err.Error(),
				ErrorKind: apperr.KindAuthorization.String(),
			})
			return
		}
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"token": token, "user": user})
}

// --- Uploads ---

// Upload accepts a multipart file and returns the stored reference.
// Files are uploaded before the entity that cites them is created.
func (h *Handlers) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "file field is required", err))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "cannot read uploaded file", err))
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "cannot read uploaded file", err))
		return
	}

	ref, err := h.services.Uploads.Save(c.Request.Context(), fileHeader.Filename, content)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindUpstream, "store upload", err))
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"ref": ref})
}

func (h *Handlers) Download(c *gin.Context) {
	ref := c.Param("ref")

	content, err := h.services.Uploads.Open(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, http.DetectContentType(content), content)
}

// --- Transactions ---

func (h *Handlers) ListTransactions(c *gin.Context) {
	txns, err := h.services.Transactions.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, txns)
}

func (h *Handlers) GetTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	txn, err := h.services.Transactions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, txn)
}

func (h *Handlers) CreateTransaction(c *gin.Context) {
	var txn entity.Transaction
	if err := c.ShouldBindJSON(&txn); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "invalid transaction payload", err))
		return
	}

	if err := h.services.Transactions.Create(c.Request.Context(), mustActor(c), &txn); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, txn)
}

// --- Reimbursements ---

func (h *Handlers) ListReimbursements(c *gin.Context) {
	rbs, err := h.services.Reimburse.List(c.Request.Context(), mustActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, rbs)
}

func (h *Handlers) GetReimbursement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	rb, err := h.services.Reimburse.Get(c.Request.Context(), mustActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, rb)
}

func (h *Handlers) SubmitReimbursement(c *gin.Context) {
	var rb entity.Reimbursement
	if err := c.ShouldBindJSON(&rb); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "invalid reimbursement payload", err))
		return
	}

	if err := h.services.Reimburse.Submit(c.Request.Context(), mustActor(c), &rb); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, rb)
}

func (h *Handlers) UpdateReimbursement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var rb entity.Reimbursement
	if err := c.ShouldBindJSON(&rb); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "invalid reimbursement payload", err))
		return
	}
	rb.ID = id

	if err := h.services.Reimburse.Update(c.Request.Context(), mustActor(c), &rb); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, rb)
}

func (h *Handlers) StartProcessing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.services.Reimburse.StartProcessing(c.Request.Context(), mustActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"status": entity.ReimbursementProcessing})
}

type approveRequest struct {
	TransferProofRef string `json:"transfer_proof_ref"`
}

func (h *Handlers) ApproveReimbursement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "invalid approval payload", err))
		return
	}

	if err := h.services.Reimburse.Approve(c.Request.Context(), mustActor(c), id, req.TransferProofRef); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"status": entity.ReimbursementApproved})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handlers) RejectReimbursement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "invalid rejection payload", err))
		return
	}

	if err := h.services.Reimburse.Reject(c.Request.Context(), mustActor(c), id, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"status": entity.ReimbursementRejected})
}

// --- Reports ---

func reportFilter(c *gin.Context) report.Filter {
	f := report.Filter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Type:      report.TypeFilter(c.DefaultQuery("type", string(report.FilterAll))),
		Category:  c.Query("category"),
	}
	return f
}

func (h *Handlers) GetReport(c *gin.Context) {
	rpt, err := h.services.Reports.Generate(c.Request.Context(), reportFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, rpt)
}

func (h *Handlers) ExportReportCSV(c *gin.Context) {
	rpt, err := h.services.Reports.Generate(c.Request.Context(), reportFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="report.csv"`)
	c.Status(http.StatusOK)

	if err := report.WriteCSV(c.Writer, rpt.Rows); err != nil {
		h.logger.Error("write CSV export", "error", err)
	}
}

func (h *Handlers) ExportReportXLSX(c *gin.Context) {
	rpt, err := h.services.Reports.Generate(c.Request.Context(), reportFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="report.xlsx"`)
	c.Status(http.StatusOK)

	if err := report.WriteXLSX(c.Writer, rpt); err != nil {
		h.logger.Error("write XLSX export", "error", err)
	}
}

// --- Notifications ---

// ListNotifications returns the caller's inbound notifications (targeted
// plus broadcast). Admins may pass ?all=true to see every notification.
func (h *Handlers) ListNotifications(c *gin.Context) {
	actor := mustActor(c)

	if c.Query("all") == "true" {
		all, err := h.services.Notifications.ListAll(c.Request.Context(), actor)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, all)
		return
	}

	list, err := h.services.Notifications.ListForUser(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

type composeRequest struct {
	TargetUserID *int64                  `json:"target_user_id"`
	Message      string                  `json:"message" binding:"required"`
	Type         entity.NotificationType `json:"type" binding:"required"`
}

func (h *Handlers) ComposeNotification(c *gin.Context) {
	var req composeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "invalid notification payload", err))
		return
	}

	n, err := h.services.Notifications.Compose(c.Request.Context(), mustActor(c), req.TargetUserID, req.Message, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, n)
}

// --- Settings ---

func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.services.Settings.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, categories)
}

type updateCategoriesRequest struct {
	Categories []string `json:"categories" binding:"required"`
}

func (h *Handlers) UpdateCategories(c *gin.Context) {
	var req updateCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "invalid categories payload", err))
		return
	}

	if err := h.services.Settings.UpdateCategories(c.Request.Context(), mustActor(c), req.Categories); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"categories": req.Categories})
}

// --- Users ---

func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.services.Users.List(c.Request.Context(), mustActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, users)
}

func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.services.Users.Get(c.Request.Context(), mustActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

type userRequest struct {
	Name     string      `json:"name"`
	Position string      `json:"position"`
	Phone    string      `json:"phone"`
	Email    string      `json:"email"`
	Username string      `json:"username"`
	Password string      `json:"password"`
	PhotoRef string      `json:"photo_ref"`
	Role     entity.Role `json:"role"`
}

func (req *userRequest) toEntity() *entity.User {
	return &entity.User{
		Name:     req.Name,
		Position: req.Position,
		Phone:    req.Phone,
		Email:    req.Email,
		Username: req.Username,
		PhotoRef: req.PhotoRef,
		Role:     req.Role,
	}
}

func (h *Handlers) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "invalid user payload", err))
		return
	}

	user := req.toEntity()
	if err := h.services.Users.Create(c.Request.Context(), mustActor(c), user, req.Password); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, user)
}

func (h *Handlers) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, "invalid user payload", err))
		return
	}

	user := req.toEntity()
	user.ID = id
	if err := h.services.Users.Update(c.Request.Context(), mustActor(c), user, req.Password); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

// --- Activity log ---

func (h *Handlers) ListActivityLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.services.Activity.List(c.Request.Context(), mustActor(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, logs)
}
