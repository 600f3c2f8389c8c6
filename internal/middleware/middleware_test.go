package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-leave/internal/domain"
	"go-leave/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Ok    bool `json:"ok"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuthMiddleware(t *testing.T) {
	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(AuthMiddleware(testSecret))
		r.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"user_id":       c.GetString("user_id"),
				"role":          c.GetString("role"),
				"department_id": c.GetString("department_id"),
			})
		})
		return r
	}

	t.Run("valid token sets actor keys", func(t *testing.T) {
		token, err := SignActorToken(testSecret, "u-1", "manager", "d-1", time.Hour)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var got map[string]string
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "u-1", got["user_id"])
		assert.Equal(t, "manager", got["role"])
		assert.Equal(t, "d-1", got["department_id"])
	})

	t.Run("token from cookie", func(t *testing.T) {
		token, _ := SignActorToken(testSecret, "u-2", "employee", "", time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, ErrTokenNotFound.Message, decode(t, w).Error.Message)
	})

	t.Run("expired token", func(t *testing.T) {
		token, _ := SignActorToken(testSecret, "u-1", "employee", "", -time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, ErrTokenExpired.Message, decode(t, w).Error.Message)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := SignActorToken("other", "u-1", "employee", "", time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, ErrInvalidToken.Message, decode(t, w).Error.Message)
	})

	t.Run("missing role claim", func(t *testing.T) {
		token, _ := SignActorToken(testSecret, "u-1", "", "", time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, ErrMissingClaim.Message, decode(t, w).Error.Message)
	})
}

type fakeEnforcer struct {
	allowed bool
	err     error
	got     domain.EnforceRequest
}

func (f *fakeEnforcer) Enforce(req domain.EnforceRequest) (bool, error) {
	f.got = req
	return f.allowed, f.err
}

func TestRBACAuthorize(t *testing.T) {
	run := func(svc RBACService, role string) *httptest.ResponseRecorder {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if role != "" {
				c.Set("role", role)
			}
			c.Next()
		})
		r.POST("/leaves", RBACAuthorize(svc, "leave", "create"), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leaves", nil))
		return w
	}

	t.Run("allowed", func(t *testing.T) {
		svc := &fakeEnforcer{allowed: true}
		w := run(svc, "employee")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, domain.EnforceRequest{Role: "employee", Resource: "leave", Action: "create"}, svc.got)
	})

	t.Run("denied", func(t *testing.T) {
		w := run(&fakeEnforcer{}, "employee")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decode(t, w).Error.Code)
	})

	t.Run("no role", func(t *testing.T) {
		w := run(&fakeEnforcer{allowed: true}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("enforcer error", func(t *testing.T) {
		w := run(&fakeEnforcer{err: errors.New("boom")}, "admin")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})
}

func TestRateLimitByUser(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-User"))
		c.Next()
	})
	r.Use(RateLimitByUser(rate.Limit(0.001), 1))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("a"))
	assert.Equal(t, http.StatusTooManyRequests, call("a"))
	assert.Equal(t, http.StatusOK, call("b"))
	// anonymous callers are not limited here
	assert.Equal(t, http.StatusOK, call(""))
	assert.Equal(t, http.StatusOK, call(""))
}

func TestContextLogger(t *testing.T) {
	r := gin.New()
	r.Use(ContextLogger(zap.NewNop()))
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = contextutil.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "rid-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "rid-1", seen)
		assert.Equal(t, "rid-1", w.Header().Get("X-Request-ID"))
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})
}

func TestIdempotency(t *testing.T) {
	const (
		path = "/leaves"
		user = "u-1"
		key  = "k-1"
	)
	cacheKey := IdempotencyCacheKey(path, user, key)
	lockKey := cacheKey + ":lock"
	body := `{"ok":true}`

	newRouter := func(mw gin.HandlerFunc, calls *int) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set("user_id", user)
			c.Next()
		})
		r.POST(path, mw, func(c *gin.Context) {
			*calls++
			c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(body))
		})
		return r
	}
	post := func(r *gin.Engine, withKey bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		if withKey {
			req.Header.Set("Idempotency-Key", key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("first request stores response", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		payload, _ := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: json.RawMessage(body)})
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", idempotencyLockTTL).SetVal(true)
		mock.ExpectSet(cacheKey, payload, idempotencyCacheTTL).SetVal("OK")
		mock.ExpectDel(lockKey).SetVal(1)

		calls := 0
		w := post(newRouter(Idempotency(rdb), &calls), true)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replays stored response", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		payload, _ := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: json.RawMessage(body)})
		mock.ExpectGet(cacheKey).SetVal(string(payload))

		calls := 0
		w := post(newRouter(Idempotency(rdb), &calls), true)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 0, calls)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
		assert.JSONEq(t, body, w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent duplicate", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", idempotencyLockTTL).SetVal(false)

		calls := 0
		w := post(newRouter(Idempotency(rdb), &calls), true)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 0, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no key passes through", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()

		calls := 0
		w := post(newRouter(Idempotency(rdb), &calls), false)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
