package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/testps-api/internal/handler/dto"
	"github.com/yourusername/testps-api/internal/middleware"
	"github.com/yourusername/testps-api/internal/service"
)

// maxImportSize - ограничение размера загружаемого файла с вопросами
const maxImportSize = 10 << 20

// TestHandler обрабатывает запросы каталога тестов
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler создает новый обработчик тестов
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// Create создает тест. Структура вопросов сохраняется как есть.
func (h *TestHandler) Create(c *gin.Context) {
	var req dto.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	creatorID, _ := middleware.UserID(c)
	_, err := h.testService.Create(c.Request.Context(), service.TestInput{
		Title:     req.Title,
		Subject:   req.Subject,
		Duration:  req.Duration,
		Questions: req.Questions,
	}, creatorID)
	if err != nil {
		respondError(c, "TestHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Test created successfully!"})
}

// ImportPreview разбирает загруженный CSV/XLSX и возвращает превью без сохранения
func (h *TestHandler) ImportPreview(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required (multipart field \"file\")", "error_type": "validation"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, "TestHandler", err)
		return
	}
	defer file.Close()

	report, err := h.testService.ImportPreview(fileHeader.Filename, file)
	if err != nil {
		respondError(c, "TestHandler", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// List возвращает все тесты; правильные ответы видны только администратору
func (h *TestHandler) List(c *gin.Context) {
	tests, err := h.testService.List(c.Request.Context())
	if err != nil {
		respondError(c, "TestHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTestListResponse(tests, middleware.IsAdmin(c)))
}

// Get возвращает один тест
func (h *TestHandler) Get(c *gin.Context) {
	test, err := h.testService.Get(c.Request.Context(), c.GetUint("testID"))
	if err != nil {
		respondError(c, "TestHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTestResponse(test, middleware.IsAdmin(c)))
}

// Update частично обновляет тест
func (h *TestHandler) Update(c *gin.Context) {
	var req dto.UpdateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	test, err := h.testService.Update(c.Request.Context(), c.GetUint("testID"), service.TestPatch{
		Title:     req.Title,
		Subject:   req.Subject,
		Duration:  req.Duration,
		Questions: req.Questions,
	})
	if err != nil {
		respondError(c, "TestHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Test updated", "test": dto.NewTestResponse(test, true)})
}

// Delete удаляет тест
func (h *TestHandler) Delete(c *gin.Context) {
	if err := h.testService.Delete(c.Request.Context(), c.GetUint("testID")); err != nil {
		respondError(c, "TestHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Test deleted"})
}
