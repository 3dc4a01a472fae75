package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/testps-api/internal/handler/dto"
	"github.com/yourusername/testps-api/internal/middleware"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
	"github.com/yourusername/testps-api/internal/service"
)

// ResultHandler обрабатывает отправку попыток, выдачу результатов и аналитику
type ResultHandler struct {
	resultService    *service.ResultService
	analyticsService *service.AnalyticsService
}

// NewResultHandler создает новый обработчик результатов
func NewResultHandler(resultService *service.ResultService, analyticsService *service.AnalyticsService) *ResultHandler {
	return &ResultHandler{
		resultService:    resultService,
		analyticsService: analyticsService,
	}
}

// Submit оценивает и сохраняет попытку прохождения теста
func (h *ResultHandler) Submit(c *gin.Context) {
	var req dto.SubmitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if req.UserID != 0 {
		if err := checkOwnership(c, req.UserID); err != nil {
			respondError(c, "ResultHandler", err)
			return
		}
	}

	result, err := h.resultService.Submit(c.Request.Context(), service.SubmitInput{
		UserID:  req.UserID,
		TestID:  req.TestID,
		Answers: req.Answers,
	})
	if err != nil {
		respondError(c, "ResultHandler", err)
		return
	}

	c.JSON(http.StatusCreated, dto.SubmitResultResponse{Message: "Result saved", Score: result.Score})
}

// ListAll возвращает все результаты (только для администратора)
func (h *ResultHandler) ListAll(c *gin.Context) {
	results, err := h.resultService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, "ResultHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewResultListResponse(results))
}

// ListByUser возвращает результаты пользователя, новые первыми
func (h *ResultHandler) ListByUser(c *gin.Context) {
	userID := c.GetUint("targetUserID")
	if err := checkOwnership(c, userID); err != nil {
		respondError(c, "ResultHandler", err)
		return
	}

	results, err := h.resultService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "ResultHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewResultListResponse(results))
}

// UserAnalytics возвращает сводку по результатам пользователя
func (h *ResultHandler) UserAnalytics(c *gin.Context) {
	userID := c.GetUint("targetUserID")
	if err := checkOwnership(c, userID); err != nil {
		respondError(c, "ResultHandler", err)
		return
	}

	summary, err := h.analyticsService.UserAnalytics(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "ResultHandler", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// PlatformAnalytics возвращает сводку по всей платформе
func (h *ResultHandler) PlatformAnalytics(c *gin.Context) {
	summary, err := h.analyticsService.PlatformAnalytics(c.Request.Context())
	if err != nil {
		respondError(c, "ResultHandler", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Export выгружает результаты теста в CSV или XLSX
func (h *ResultHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", service.ExportFormatCSV))
	if format != service.ExportFormatCSV && format != service.ExportFormatXLSX {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format. Use 'csv' or 'xlsx'", "error_type": "validation"})
		return
	}

	testID := c.GetUint("testID")
	_, rows, err := h.resultService.ExportData(c.Request.Context(), testID)
	if err != nil {
		respondError(c, "ResultHandler", err)
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if format == service.ExportFormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = service.WriteResultsXLSX(&buf, rows)
	} else {
		err = service.WriteResultsCSV(&buf, rows)
	}
	if err != nil {
		respondError(c, "ResultHandler", err)
		return
	}

	filename := fmt.Sprintf("test_%d_results_%s.%s", testID, time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// checkOwnership разрешает доступ к данным пользователя только ему самому или администратору
func checkOwnership(c *gin.Context, userID uint) error {
	if middleware.IsAdmin(c) {
		return nil
	}
	current, ok := middleware.UserID(c)
	if !ok {
		return apperrors.ErrUnauthorized
	}
	if current != userID {
		return fmt.Errorf("%w: access to another user's results", apperrors.ErrForbidden)
	}
	return nil
}
