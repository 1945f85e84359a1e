package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/closingdesk/commission-backend/internal/payouts"
	"github.com/closingdesk/commission-backend/pkg/auth"
	"github.com/closingdesk/commission-backend/pkg/config"
	"github.com/closingdesk/commission-backend/pkg/db/models"
	"github.com/closingdesk/commission-backend/pkg/enums"
	pkgerrors "github.com/closingdesk/commission-backend/pkg/errors"
	"github.com/closingdesk/commission-backend/pkg/logger"
	"github.com/closingdesk/commission-backend/pkg/metrics"
	"github.com/closingdesk/commission-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubPayoutService struct {
	payouts.Service
	creates int
}

func (s *stubPayoutService) CreateEnhancedPayout(_ context.Context, in payouts.CreateInput) (*payouts.CreateResult, error) {
	s.creates++
	return &payouts.CreateResult{Payout: &models.CommissionPayout{
		ID:            uuid.New(),
		TransactionID: in.TransactionID,
		Status:        enums.PayoutStatusReady,
	}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{Env: "test", Port: "0"},
		JWT:         config.JWTConfig{Secret: "router-secret", Audience: "authenticated", ExpirationMinutes: 5},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
	}
}

func newTestRouter(t *testing.T, redisClient *redis.Client) (http.Handler, *stubPayoutService, *config.Config) {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	svc := &stubPayoutService{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error")})
	return NewRouter(cfg, logg, stubPinger{}, redisClient, reg, metrics.NewHTTPMetrics(reg), svc), svc, cfg
}

func bearer(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		UserID:   uuid.New(),
		FullName: "Dana Broker",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", resp.Body.String(), err)
	}
	if body.Success {
		t.Fatal("expected success=false")
	}
	return body.Code
}

func TestFunctionEndpointsRejectOtherMethods(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	for _, path := range []string{"/api/create-enhanced-payout", "/api/schedule-payout", "/api/update-payout-status", "/api/process-ach-payment"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, httptest.NewRequest(method, path, nil))
			if resp.Code != http.StatusMethodNotAllowed {
				t.Fatalf("%s %s: expected 405 got %d", method, path, resp.Code)
			}
			if code := errorCode(t, resp); code != string(pkgerrors.CodeMethodNotAllowed) {
				t.Fatalf("unexpected code %s", code)
			}
		}
	}
}

func TestFunctionEndpointsRequireAuth(t *testing.T) {
	router, svc, _ := newTestRouter(t, nil)

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/create-enhanced-payout", strings.NewReader(`{"transaction_id":"`+uuid.NewString()+`"}`))
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if svc.creates != 0 {
		t.Fatal("service should not be reached")
	}
}

func TestCreateEnhancedPayoutRoute(t *testing.T) {
	router, svc, cfg := newTestRouter(t, nil)

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/create-enhanced-payout", strings.NewReader(`{"transaction_id":"`+uuid.NewString()+`"}`))
	req.Header.Set("Authorization", bearer(t, cfg, enums.UserRoleBroker))
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.creates != 1 {
		t.Fatalf("expected one create, got %d", svc.creates)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestIdempotentReplayThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	router, svc, cfg := newTestRouter(t, client)

	token := bearer(t, cfg, enums.UserRoleBroker)
	body := `{"transaction_id":"` + uuid.NewString() + `"}`
	var first string
	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/create-enhanced-payout", strings.NewReader(body))
		req.Header.Set("Authorization", token)
		req.Header.Set("Idempotency-Key", "create-1")
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i, resp.Code)
		}
		if i == 0 {
			first = resp.Body.String()
		} else if resp.Body.String() != first {
			t.Fatal("expected replayed body")
		}
	}
	if svc.creates != 1 {
		t.Fatalf("expected a single create, got %d", svc.creates)
	}
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	for path, want := range map[string]int{
		"/health/live":  http.StatusOK,
		"/health/ready": http.StatusOK,
		"/metrics":      http.StatusOK,
		"/api/unknown":  http.StatusNotFound,
	} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != want {
			t.Fatalf("%s: expected %d got %d", path, want, resp.Code)
		}
	}
}

func TestPreflightIsAnsweredWithoutAuth(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/process-ach-payment", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS headers, got %v", resp.Header())
	}
}
