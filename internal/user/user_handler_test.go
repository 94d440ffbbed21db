package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-leave/internal/user"
	usererrors "go-leave/internal/user/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeUserService struct {
	createFn     func(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error)
	getProfileFn func(ctx context.Context, id string) (user.UserResponse, error)
	getAllFn     func(ctx context.Context) ([]user.UserResponse, error)
	deleteFn     func(ctx context.Context, id, actorID string) error
}

func (f *fakeUserService) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	return f.createFn(ctx, req)
}
func (f *fakeUserService) GetProfile(ctx context.Context, id string) (user.UserResponse, error) {
	return f.getProfileFn(ctx, id)
}
func (f *fakeUserService) GetAll(ctx context.Context) ([]user.UserResponse, error) {
	return f.getAllFn(ctx)
}
func (f *fakeUserService) Delete(ctx context.Context, id, actorID string) error {
	return f.deleteFn(ctx, id, actorID)
}

func TestUserHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeUserService{
			createFn: func(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
				assert.Equal(t, "mrossi", req.Username)
				return user.UserResponse{
					ID:        uuid.New().String(),
					Username:  req.Username,
					Role:      user.RoleEmployee,
					TotalDays: user.DefaultTotalDays,
					Available: user.DefaultTotalDays,
				}, nil
			},
		}

		h := user.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"username":"mrossi","name":"Mario Rossi","email":"mario.rossi@mail.com","password":"supersecret"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got user.UserResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, user.DefaultTotalDays, got.TotalDays)
	})

	t.Run("negative short password fails binding", func(t *testing.T) {
		svc := &fakeUserService{
			createFn: func(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
				t.Fatal("service must not be called on binding failure")
				return user.UserResponse{}, nil
			},
		}

		h := user.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"username":"mrossi","name":"Mario Rossi","email":"mario.rossi@mail.com","password":"short"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative duplicate user", func(t *testing.T) {
		svc := &fakeUserService{
			createFn: func(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
				return user.UserResponse{}, usererrors.ErrUserAlreadyExists
			},
		}

		h := user.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"username":"mrossi","name":"Mario Rossi","email":"mario.rossi@mail.com","password":"supersecret"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUserHandler_Profile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		userID := uuid.New().String()

		svc := &fakeUserService{
			getProfileFn: func(ctx context.Context, id string) (user.UserResponse, error) {
				assert.Equal(t, userID, id)
				return user.UserResponse{ID: id, TotalDays: 26, UsedDays: 6, Available: 20}, nil
			},
		}

		h := user.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/profile", nil)
		c.Set("user_id", userID)

		h.Profile(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		var got user.UserResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, 20, got.Available)
	})

	t.Run("negative not found", func(t *testing.T) {
		svc := &fakeUserService{
			getProfileFn: func(ctx context.Context, id string) (user.UserResponse, error) {
				return user.UserResponse{}, usererrors.ErrUserNotFound
			},
		}

		h := user.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/profile", nil)
		c.Set("user_id", uuid.New().String())

		h.Profile(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUserHandler_Delete(t *testing.T) {
	t.Run("negative self delete", func(t *testing.T) {
		userID := uuid.New().String()

		svc := &fakeUserService{
			deleteFn: func(ctx context.Context, id, actorID string) error {
				return usererrors.ErrCannotDeleteSelf
			},
		}

		h := user.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/users/"+userID, nil)
		c.Params = gin.Params{{Key: "id", Value: userID}}
		c.Set("user_id", userID)

		h.Delete(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
