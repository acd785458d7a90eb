package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventrack/inventory-server-go/internal/httputil"
	"github.com/inventrack/inventory-server-go/internal/model"
	redisclient "github.com/inventrack/inventory-server-go/internal/redis"
	"github.com/inventrack/inventory-server-go/internal/service"
)

// Stub repositories, configured per test via fields.
type stubCodeRepo struct {
	activeByCode      *model.AccessCode
	activeByInventory *model.AccessCode
}

func (s *stubCodeRepo) CreateExclusive(ctx context.Context, params model.CreateAccessCodeParams, now time.Time) (*model.AccessCode, error) {
	return &model.AccessCode{
		ID:          params.ID,
		Code:        params.Code,
		InventoryID: params.InventoryID,
		ExpiresAt:   params.ExpiresAt,
	}, nil
}

func (s *stubCodeRepo) FindActiveByCode(ctx context.Context, code string, now time.Time) (*model.AccessCode, error) {
	if s.activeByCode != nil && s.activeByCode.Code == code {
		return s.activeByCode, nil
	}
	return nil, nil
}

func (s *stubCodeRepo) FindActiveByInventoryID(ctx context.Context, inventoryID string, now time.Time) (*model.AccessCode, error) {
	return s.activeByInventory, nil
}

func (s *stubCodeRepo) RevokeByInventoryID(ctx context.Context, inventoryID string) (int64, int64, error) {
	return 0, 0, nil
}

func (s *stubCodeRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubInvRepo struct {
	inventory *model.Inventory
}

func (s *stubInvRepo) FindByID(ctx context.Context, id string) (*model.Inventory, error) {
	return s.inventory, nil
}

func (s *stubInvRepo) Summarize(ctx context.Context, id string) (*model.InventorySummary, error) {
	return &model.InventorySummary{InventoryID: id}, nil
}

type stubGrantRepo struct{}

func (s *stubGrantRepo) Create(ctx context.Context, params model.CreateAccessGrantParams) (*model.AccessGrant, error) {
	return &model.AccessGrant{ID: params.ID, UserID: params.UserID, AccessCodeID: params.AccessCodeID}, nil
}

func (s *stubGrantRepo) FindByUserAndCode(ctx context.Context, userID, accessCodeID string) (*model.AccessGrant, error) {
	return nil, nil
}

func (s *stubGrantRepo) ListUsersByCode(ctx context.Context, accessCodeID string) ([]model.GrantedUser, error) {
	return []model.GrantedUser{}, nil
}

func (s *stubGrantRepo) ListActiveCodesByUser(ctx context.Context, userID string, now time.Time) ([]model.AccessCode, error) {
	return []model.AccessCode{}, nil
}

func (s *stubGrantRepo) DeleteForCodesExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubUserRepo struct {
	user *model.User
}

func (s *stubUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return s.user, nil
}

// deadRedis is never reachable; the rate limiter fails closed on it.
func deadRedis() *redisclient.Client {
	return &redisclient.Client{Client: goredis.NewClient(&goredis.Options{Addr: "localhost:1"})}
}

func testRouter(codeRepo *stubCodeRepo, invRepo *stubInvRepo, grantRepo *stubGrantRepo, userRepo *stubUserRepo) chi.Router {
	codeService := service.NewAccessCodeService(codeRepo, invRepo, deadRedis(), 7*24*time.Hour)
	grantService := service.NewAccessGrantService(grantRepo, codeRepo, invRepo, userRepo, deadRedis())

	codeHandler := NewAccessCodeHandler(codeService, grantService)
	grantHandler := NewAccessGrantHandler(grantService, codeService)

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Mount("/inventories", codeHandler.Routes())
		r.Mount("/access-codes", grantHandler.Routes())
		r.Get("/users/{userID}/inventories", grantHandler.ListInventories)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()

	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGenerate_RejectsBadInventoryID(t *testing.T) {
	router := testRouter(&stubCodeRepo{}, &stubInvRepo{}, &stubGrantRepo{}, &stubUserRepo{})

	rec := doJSON(t, router, http.MethodPost, "/v1/inventories/not-a-uuid/access-code",
		map[string]int{"hours": 1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", string(decodeError(t, rec).Code))
}

func TestGenerate_RateLimiterFailsClosed(t *testing.T) {
	// The stub services are wired to an unreachable Redis, so the
	// limiter denies before the service runs.
	router := testRouter(&stubCodeRepo{}, &stubInvRepo{}, &stubGrantRepo{}, &stubUserRepo{})

	rec := doJSON(t, router, http.MethodPost,
		"/v1/inventories/11111111-1111-1111-1111-111111111111/access-code",
		map[string]int{"hours": 1})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", string(decodeError(t, rec).Code))
}

func TestValidate_Success(t *testing.T) {
	active := &model.AccessCode{
		ID:          "code-id",
		Code:        "ABCD2345",
		InventoryID: "11111111-1111-1111-1111-111111111111",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	router := testRouter(&stubCodeRepo{activeByCode: active}, &stubInvRepo{}, &stubGrantRepo{}, &stubUserRepo{})

	rec := doJSON(t, router, http.MethodPost, "/v1/access-codes/validate",
		map[string]string{"code": "abcd2345"})

	require.Equal(t, http.StatusOK, rec.Code)

	var got model.AccessCode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ABCD2345", got.Code)
}

func TestValidate_UnknownCode(t *testing.T) {
	router := testRouter(&stubCodeRepo{}, &stubInvRepo{}, &stubGrantRepo{}, &stubUserRepo{})

	rec := doJSON(t, router, http.MethodPost, "/v1/access-codes/validate",
		map[string]string{"code": "NOPE2345"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "INVALID_ACCESS_CODE", string(decodeError(t, rec).Code))
}

func TestValidate_EmptyBody(t *testing.T) {
	router := testRouter(&stubCodeRepo{}, &stubInvRepo{}, &stubGrantRepo{}, &stubUserRepo{})

	rec := doJSON(t, router, http.MethodPost, "/v1/access-codes/validate",
		map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", string(decodeError(t, rec).Code))
}

func TestGetActive_NoCode(t *testing.T) {
	inv := &model.Inventory{ID: "11111111-1111-1111-1111-111111111111", Name: "Sala 101"}
	router := testRouter(&stubCodeRepo{}, &stubInvRepo{inventory: inv}, &stubGrantRepo{}, &stubUserRepo{})

	rec := doJSON(t, router, http.MethodGet,
		"/v1/inventories/11111111-1111-1111-1111-111111111111/access-code", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["active"])
}

func TestGetActive_UnknownInventory(t *testing.T) {
	router := testRouter(&stubCodeRepo{}, &stubInvRepo{}, &stubGrantRepo{}, &stubUserRepo{})

	rec := doJSON(t, router, http.MethodGet,
		"/v1/inventories/11111111-1111-1111-1111-111111111111/access-code", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListGrants_NoActiveCode(t *testing.T) {
	inv := &model.Inventory{ID: "11111111-1111-1111-1111-111111111111", Name: "Sala 101"}
	router := testRouter(&stubCodeRepo{}, &stubInvRepo{inventory: inv}, &stubGrantRepo{}, &stubUserRepo{})

	rec := doJSON(t, router, http.MethodGet,
		"/v1/inventories/11111111-1111-1111-1111-111111111111/access", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NO_ACTIVE_CODE", string(decodeError(t, rec).Code))
}

func TestRedeem_RejectsBadBody(t *testing.T) {
	router := testRouter(&stubCodeRepo{}, &stubInvRepo{}, &stubGrantRepo{}, &stubUserRepo{})

	rec := doJSON(t, router, http.MethodPost, "/v1/access-codes/redeem",
		map[string]string{"code": "ABCD2345", "userId": "not-a-uuid"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListInventories_RejectsBadUserID(t *testing.T) {
	router := testRouter(&stubCodeRepo{}, &stubInvRepo{}, &stubGrantRepo{}, &stubUserRepo{})

	rec := doJSON(t, router, http.MethodGet, "/v1/users/not-a-uuid/inventories", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", string(decodeError(t, rec).Code))
}

func TestListInventories_Empty(t *testing.T) {
	user := &model.User{ID: "22222222-2222-2222-2222-222222222222", Name: "Ana", Role: model.RoleCurrent}
	router := testRouter(&stubCodeRepo{}, &stubInvRepo{}, &stubGrantRepo{}, &stubUserRepo{user: user})

	rec := doJSON(t, router, http.MethodGet,
		"/v1/users/22222222-2222-2222-2222-222222222222/inventories", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Inventories []model.InventorySummary `json:"inventories"`
		Total       int                      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)
	assert.Empty(t, resp.Inventories)
}
