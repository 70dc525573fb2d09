package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"employee-management/internal/apperror"
	"employee-management/internal/models"
	"employee-management/internal/service"
	"employee-management/internal/upload"
	"employee-management/internal/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EmployeeHandler struct {
	svc    service.Manager
	gate   *upload.Gate
	logger *zap.Logger
	// dev adds raw error text to error responses.
	dev bool
}

func NewEmployeeHandler(svc service.Manager, gate *upload.Gate, logger *zap.Logger, dev bool) *EmployeeHandler {
	return &EmployeeHandler{
		svc:    svc,
		gate:   gate,
		logger: logger,
		dev:    dev,
	}
}

func (h *EmployeeHandler) ListSummary(c *gin.Context) {
	list, err := h.svc.ListSummary(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

func (h *EmployeeHandler) ListDetailed(c *gin.Context) {
	list, err := h.svc.ListDetailed(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

// AddEmployee creates or updates an employee from a multipart form. The
// image is checked before the fields and only written once both pass.
func (h *EmployeeHandler) AddEmployee(c *gin.Context) {
	fh, err := h.pickImage(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	if fh != nil {
		if err := h.gate.Check(fh); err != nil {
			h.respondWithError(c, err)
			return
		}
	}

	var form models.EmployeeForm
	if err := c.ShouldBind(&form); err != nil {
		h.respondWithError(c, apperror.Wrap(apperror.KindValidation, "invalid form data", err))
		return
	}
	employee, err := validator.Employee(form)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	var image *string
	if fh != nil {
		rel, err := h.gate.Save(fh)
		if err != nil {
			h.respondWithError(c, err)
			return
		}
		image = &rel
	}

	stored, outcome, err := h.svc.Save(c.Request.Context(), employee, image)
	if err != nil {
		if image != nil {
			if derr := h.gate.Discard(*image); derr != nil {
				h.logger.Warn("discard upload", zap.String("path", *image), zap.Error(derr))
			}
		}
		h.respondWithError(c, err)
		return
	}

	status, message := http.StatusCreated, "Employee added successfully"
	if outcome == models.OutcomeUpdated {
		status, message = http.StatusOK, "Employee updated successfully"
	}
	c.JSON(status, gin.H{"success": true, "message": message, "data": stored})
}

func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	removed, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Employee deleted successfully",
		"data":    removed,
	})
}

// pickImage parses the request body and returns the uploaded image, if any.
// Requests that are not multipart simply carry no image.
func (h *EmployeeHandler) pickImage(c *gin.Context) (*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	var maxErr *http.MaxBytesError
	switch {
	case err == nil:
		return upload.Pick(form)
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingFile):
		return nil, nil
	case errors.As(err, &maxErr):
		return nil, upload.TooLarge()
	default:
		return nil, apperror.Wrap(apperror.KindValidation, "malformed multipart body", err)
	}
}

// NotFound answers unmatched routes with the usual envelope.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "route not found"})
}

func (h *EmployeeHandler) respondWithError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)

	status := http.StatusInternalServerError
	switch {
	case kind.IsValidation():
		status = http.StatusBadRequest
	case kind == apperror.KindNotFound:
		status = http.StatusNotFound
	default:
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	body := gin.H{"success": false, "error": apperror.MessageOf(err)}
	if h.dev {
		body["details"] = err.Error()
	}
	c.JSON(status, body)
}
