package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mbelyaev/jobtrack/internal/models"
	"github.com/mbelyaev/jobtrack/internal/repo"
	"github.com/mbelyaev/jobtrack/internal/service"
)

type testEnv struct {
	T         *testing.T
	E         *echo.Echo
	DB        *gorm.DB
	JWTSecret []byte
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Job{}))

	secret := []byte("test-jwt-secret")
	gormRepo := &repo.GormRepo{DB: db}

	authHandler := &AuthHTTP{
		Svc: &service.AuthService{
			Repo:      gormRepo,
			JWTSecret: secret,
			TokenTTL:  time.Hour,
		},
	}
	jobHandler := &JobHTTP{
		Svc: &service.JobService{Repo: gormRepo},
	}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler: authHandler,
		JobHandler:  jobHandler,
		JWTSecret:   secret,
	})

	return &testEnv{T: t, E: e, DB: db, JWTSecret: secret}
}

// doJSONRequest runs the request through the full router, middleware
// included, and returns the recorded response.
func (env *testEnv) doJSONRequest(method, target string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) register(name, email, password string) (token string, userID string) {
	env.T.Helper()

	rec := env.doJSONRequest(http.MethodPost, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(env.T, resp.Token)
	return resp.Token, resp.User.ID
}

func (env *testEnv) createJob(token string, body map[string]any) models.Job {
	env.T.Helper()

	rec := env.doJSONRequest(http.MethodPost, "/jobs", body, token)
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	var job models.Job
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &job))
	return job
}
