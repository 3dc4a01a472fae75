package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/internal/handler/dto"
	"github.com/yourusername/testps-api/internal/importer"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
	"github.com/yourusername/testps-api/internal/service"
	"github.com/yourusername/testps-api/internal/session"
)

const defaultTimeout = 15 * time.Second

// APIError - ошибка, которую вернул сервер в формате {error, error_type}
type APIError struct {
	StatusCode int
	Message    string
	Type       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Type, e.Message)
}

// Unwrap сопоставляет HTTP статус с ошибками приложения
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return apperrors.ErrValidation
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusConflict:
		return apperrors.ErrConflict
	default:
		if e.Type == "configuration" {
			return apperrors.ErrConfiguration
		}
		return apperrors.ErrDependency
	}
}

// Client - типизированный клиент HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
	user  *entity.User
}

// Option настраивает Client
type Option func(*Client)

// WithHTTPClient подменяет http.Client (таймауты, транспорт)
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New создает клиент для сервера по адресу baseURL (например, http://localhost:8080)
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSession запоминает токен и пользователя, например загруженные из SessionStore
func (c *Client) SetSession(token string, user *entity.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.user = user
}

// User возвращает текущего пользователя или nil
func (c *Client) User() *entity.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// SendOTP запрашивает одноразовый код на email
func (c *Client) SendOTP(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/send-otp", dto.SendOTPRequest{Email: email}, nil)
}

// VerifyOTP проверяет одноразовый код
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/verify-otp", dto.VerifyOTPRequest{Email: email, OTP: otp}, nil)
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/register", dto.RegisterRequest{Name: name, Email: email, Password: password}, nil)
}

// Login выполняет вход и запоминает токен для следующих запросов
func (c *Client) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	var resp dto.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", nil, err
	}
	user := &entity.User{
		ID:     resp.User.ID,
		UserID: resp.User.UserID,
		Name:   resp.User.Name,
		Email:  resp.User.Email,
		Role:   resp.User.Role,
	}
	c.SetSession(resp.Token, user)
	return resp.Token, user, nil
}

// ListUsers возвращает всех пользователей (admin)
func (c *Client) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	var users []dto.UserResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/auth/users", nil, &users)
	return users, err
}

// SetRole меняет роль пользователя (admin)
func (c *Client) SetRole(ctx context.Context, userID uint, role string) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/auth/users/%d/role", userID), dto.SetRoleRequest{Role: role}, nil)
}

// DeleteUser удаляет пользователя (admin)
func (c *Client) DeleteUser(ctx context.Context, userID uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/auth/users/%d", userID), nil, nil)
}

// ListTests возвращает каталог тестов
func (c *Client) ListTests(ctx context.Context) ([]entity.Test, error) {
	var tests []entity.Test
	err := c.doJSON(ctx, http.MethodGet, "/api/tests", nil, &tests)
	return tests, err
}

// GetTest возвращает тест. Для не-админа правильные ответы не приходят.
func (c *Client) GetTest(ctx context.Context, id uint) (*entity.Test, error) {
	var test entity.Test
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/tests/%d", id), nil, &test); err != nil {
		return nil, err
	}
	return &test, nil
}

// CreateTest создает тест (admin)
func (c *Client) CreateTest(ctx context.Context, req dto.CreateTestRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/tests/create", req, nil)
}

// UpdateTest частично обновляет тест (admin)
func (c *Client) UpdateTest(ctx context.Context, id uint, req dto.UpdateTestRequest) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/tests/%d", id), req, nil)
}

// DeleteTest удаляет тест (admin)
func (c *Client) DeleteTest(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/tests/%d", id), nil, nil)
}

// ImportPreview загружает CSV/XLSX и возвращает отчет проверки (admin)
func (c *Client) ImportPreview(ctx context.Context, filename string, r io.Reader) (*importer.Report, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var report importer.Report
	if err := c.do(ctx, http.MethodPost, "/api/tests/import", writer.FormDataContentType(), &body, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SubmitResult отправляет попытку и возвращает балл
func (c *Client) SubmitResult(ctx context.Context, userID, testID uint, answers []int) (int, error) {
	if answers == nil {
		answers = []int{}
	}
	var resp dto.SubmitResultResponse
	req := dto.SubmitResultRequest{UserID: userID, TestID: testID, Answers: &answers}
	if err := c.doJSON(ctx, http.MethodPost, "/api/results/submit", req, &resp); err != nil {
		return 0, err
	}
	return resp.Score, nil
}

// Submit реализует session.Submitter от имени текущего пользователя
func (c *Client) Submit(ctx context.Context, testID uint, answers []int) (*session.Outcome, error) {
	user := c.User()
	if user == nil {
		return nil, fmt.Errorf("%w: not logged in", apperrors.ErrUnauthorized)
	}
	score, err := c.SubmitResult(ctx, user.ID, testID, answers)
	if err != nil {
		return nil, err
	}
	return &session.Outcome{Score: score, Total: len(answers)}, nil
}

// UserResults возвращает результаты пользователя, новые первыми
func (c *Client) UserResults(ctx context.Context, userID uint) ([]dto.ResultResponse, error) {
	var results []dto.ResultResponse
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/results/user/%d", userID), nil, &results)
	return results, err
}

// AllResults возвращает все результаты (admin)
func (c *Client) AllResults(ctx context.Context) ([]dto.ResultResponse, error) {
	var results []dto.ResultResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/results", nil, &results)
	return results, err
}

// UserAnalytics возвращает сводку по пользователю
func (c *Client) UserAnalytics(ctx context.Context, userID uint) (*service.UserAnalytics, error) {
	var summary service.UserAnalytics
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/results/analytics/%d", userID), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// PlatformAnalytics возвращает сводку по платформе (admin)
func (c *Client) PlatformAnalytics(ctx context.Context) (*service.PlatformAnalytics, error) {
	var summary service.PlatformAnalytics
	if err := c.doJSON(ctx, http.MethodGet, "/api/results/analytics", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ExportResults скачивает выгрузку результатов теста в w (admin)
func (c *Client) ExportResults(ctx context.Context, testID uint, format string, w io.Writer) error {
	path := fmt.Sprintf("/api/tests/%d/results/export?format=%s", testID, url.QueryEscape(format))
	resp, err := c.send(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to download export: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, body, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	resp, err := c.send(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// send выполняет запрос; ответ не-2xx превращается в *APIError
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", apperrors.ErrDependency, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Error     string `json:"error"`
		ErrorType string `json:"error_type"`
		Msg       string `json:"msg"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Message = payload.Error
		if apiErr.Message == "" {
			apiErr.Message = payload.Msg
		}
		apiErr.Type = payload.ErrorType
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// IsUnauthorized сообщает, что токен отсутствует, истек или невалиден
func IsUnauthorized(err error) bool {
	return errors.Is(err, apperrors.ErrUnauthorized)
}
