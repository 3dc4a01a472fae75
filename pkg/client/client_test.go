package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/internal/handler/dto"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
	"github.com/yourusername/testps-api/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newFakeServer поднимает минимальный API с заранее известными ответами
func newFakeServer(t *testing.T) (*httptest.Server, *[]dto.SubmitResultRequest) {
	t.Helper()
	var submitted []dto.SubmitResultRequest

	r := gin.New()
	r.POST("/api/auth/login", func(c *gin.Context) {
		var req dto.LoginRequest
		_ = c.ShouldBindJSON(&req)
		if req.Password != "secret" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials", "error_type": "invalid_credentials"})
			return
		}
		c.JSON(http.StatusOK, dto.LoginResponse{
			Token: "token-123",
			User:  dto.UserResponse{ID: 5, UserID: "u-5", Name: "Ann", Email: req.Email, Role: entity.RoleStudent},
		})
	})
	r.GET("/api/tests/:id", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer token-123" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
			return
		}
		if c.Param("id") != "1" {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found", "error_type": "not_found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id": 1, "title": "Geography", "duration": 10,
			"questions": []gin.H{{"question": "Capital?", "options": []string{"a", "b", "c", "d"}}},
		})
	})
	r.POST("/api/results/submit", func(c *gin.Context) {
		var req dto.SubmitResultRequest
		assert.NoError(t, c.ShouldBindJSON(&req))
		submitted = append(submitted, req)
		c.JSON(http.StatusCreated, dto.SubmitResultResponse{Message: "Result saved", Score: 1})
	})
	r.GET("/api/tests/:id/results/export", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/csv", []byte("Result ID,Name\n1,"+c.Query("format")+"\n"))
	})
	r.POST("/api/auth/send-otp", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "configuration error: email transport is not configured", "error_type": "configuration"})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &submitted
}

func TestClient_LoginStoresToken(t *testing.T) {
	srv, _ := newFakeServer(t)
	c := New(srv.URL + "/")
	ctx := context.Background()

	_, err := c.GetTest(ctx, 1)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	token, user, err := c.Login(ctx, "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "token-123", token)
	assert.Equal(t, uint(5), user.ID)
	assert.Equal(t, user, c.User())

	test, err := c.GetTest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Geography", test.Title)
	assert.Equal(t, 1, test.QuestionCount())
}

func TestClient_APIErrors(t *testing.T) {
	srv, _ := newFakeServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	_, _, err := c.Login(ctx, "ann@example.com", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	c.SetSession("token-123", &entity.User{ID: 5})
	_, err = c.GetTest(ctx, 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = c.SendOTP(ctx, "ann@example.com")
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestClient_SubmitImplementsSubmitter(t *testing.T) {
	srv, submitted := newFakeServer(t)
	c := New(srv.URL)
	var _ session.Submitter = c

	_, err := c.Submit(context.Background(), 1, []int{1, -1})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "Без входа отправка невозможна")

	c.SetSession("token-123", &entity.User{ID: 5})
	outcome, err := c.Submit(context.Background(), 1, []int{1, -1})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Score)
	assert.Equal(t, 2, outcome.Total)

	require.Len(t, *submitted, 1)
	assert.Equal(t, uint(5), (*submitted)[0].UserID)
	assert.Equal(t, uint(1), (*submitted)[0].TestID)
	assert.Equal(t, []int{1, -1}, *(*submitted)[0].Answers)
}

func TestClient_ExportResults(t *testing.T) {
	srv, _ := newFakeServer(t)
	c := New(srv.URL)

	var buf bytes.Buffer
	require.NoError(t, c.ExportResults(context.Background(), 1, "csv", &buf))
	assert.Contains(t, buf.String(), "1,csv")
}

func TestFileSessionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "testps", "session.json")
	store := NewFileSessionStore(path)

	_, _, err := store.Load()
	assert.ErrorIs(t, err, session.ErrNoSession)

	user := &entity.User{ID: 5, Name: "Ann", Email: "ann@example.com", Password: "hash", Role: entity.RoleStudent}
	require.NoError(t, store.Save("token-123", user))

	token, loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "token-123", token)
	assert.Equal(t, "Ann", loaded.Name)
	assert.Empty(t, loaded.Password, "Хеш пароля не сохраняется")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "token-123", stored["token"])

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, store.Clear())
	_, _, err = store.Load()
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.NoError(t, store.Clear(), "Повторная очистка не ошибка")
}

func TestFileSessionStore_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFileSessionStore(path).Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNoSession)
}
