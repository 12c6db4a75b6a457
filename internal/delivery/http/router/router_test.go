package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/events"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/auth"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/account"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/referral"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]*domain.GoogleIdentity

func (s stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*domain.GoogleIdentity, error) {
	id, ok := s[idToken]
	if !ok {
		return nil, fmt.Errorf("%w: bad token", domain.ErrAuth)
	}
	return id, nil
}

type noMail struct{}

func (noMail) SendVerification(ctx context.Context, user *domain.User) error { return nil }

type testServer struct {
	engine *gin.Engine
	store  *memory.Store
	bus    *events.Bus
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T, policy referral.Policy, enforce bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	bus := events.NewBus(nil)
	reg := prometheus.NewRegistry()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	referrals := referral.NewDefaultReferralUsecase(store, store, store, bus, metrics.NewReferralMetrics(reg), policy)
	accounts := account.NewDefaultAccountUsecase(store, stubVerifier{
		"asha": {Subject: "u1", Name: "Asha K", Email: "asha@example.com", EmailVerified: true},
		"boss": {Subject: "a1", Name: "Boss", Email: "boss@example.com", EmailVerified: true},
	}, tokens, noMail{}, []string{"boss@example.com"})

	engine := New(Handlers{
		Referral: handlers.NewReferralHandler(referrals),
		Admin:    handlers.NewAdminHandler(referrals),
		Account:  handlers.NewAccountHandler(accounts, referrals, nil),
		Events:   handlers.NewEventStreamHandler(bus),
	}, Options{
		EnforceRoles: enforce,
		Tokens:       tokens,
		Gatherer:     reg,
	})

	_, _, err := store.UpsertUser(context.Background(), &domain.User{
		ID: "u1", Name: "Asha K", Email: "asha@example.com", Role: domain.RoleUser, IsVerified: true,
	})
	require.NoError(t, err)
	return &testServer{engine: engine, store: store, bus: bus, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) submit(t *testing.T, client string, commission any) *domain.Referral {
	t.Helper()
	w := s.do(t, http.MethodPost, "/referral/submit", map[string]any{
		"clientName":         client,
		"mobile":             "9876543210",
		"expectedCommission": commission,
		"userId":             "u1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[struct {
		Message  string           `json:"message"`
		Referral *domain.Referral `json:"referral"`
	}](t, w)
	assert.Equal(t, "Referral submitted successfully", out.Message)
	return out.Referral
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, referral.Policy{}, false)

	w := s.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	s.submit(t, "Acme", 100)
	w = s.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "referrals_created_total")
}

func TestSubmitReferral(t *testing.T) {
	s := newTestServer(t, referral.Policy{}, false)

	created := s.submit(t, "Acme Traders", "5000")
	assert.Equal(t, "Asha K", created.ReferrerName)
	assert.Equal(t, domain.StatusLeadReceived, created.Status)
	assert.Equal(t, 5000.0, created.ExpectedCommission)

	tests := []struct {
		name string
		body string
	}{
		{"missing client", `{"mobile":"1","expectedCommission":10}`},
		{"bad commission", `{"clientName":"A","mobile":"1","expectedCommission":"ten"}`},
		{"negative commission", `{"clientName":"A","mobile":"1","expectedCommission":-5}`},
		{"overflowing commission", `{"clientName":"A","mobile":"1","expectedCommission":1e400}`},
		{"commission above column range", `{"clientName":"A","mobile":"1","expectedCommission":"1000000000000"}`},
		{"unknown user", `{"clientName":"A","mobile":"1","expectedCommission":5,"userId":"ghost"}`},
		{"malformed json", `{"clientName":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/referral/submit", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
		})
	}

	w := s.do(t, http.MethodGet, "/admin/data", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode[handlersAdminData](t, w)
	assert.Len(t, data.Referrals, 1)
	assert.Equal(t, 1, data.Stats.TotalReferrals)
	assert.Equal(t, 5000.0, data.Stats.PendingCommission)
}

type handlersAdminData struct {
	Referrals    []*domain.Referral   `json:"referrals"`
	Stats        domain.AdminStats    `json:"stats"`
	TopReferrers []domain.TopReferrer `json:"topReferrers"`
}

func TestSetStatus(t *testing.T) {
	s := newTestServer(t, referral.Policy{}, false)
	r := s.submit(t, "Acme", 1200)

	w := s.do(t, http.MethodPost, "/referral/status", map[string]any{"referralId": r.ID, "status": "Paid"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[map[string]any](t, w)
	assert.Equal(t, "Status updated", first["message"])
	assert.Equal(t, true, first["changed"])
	require.NotNil(t, first["payout"])

	w = s.do(t, http.MethodPost, "/referral/status", map[string]any{"referralId": r.ID, "status": "Paid"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[map[string]any](t, w)
	assert.Equal(t, false, second["changed"])

	payouts, err := s.store.ListPayouts(context.Background(), domain.PayoutFilter{})
	require.NoError(t, err)
	assert.Len(t, payouts, 1)

	w = s.do(t, http.MethodGet, "/user/data?userId=u1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	userData := decode[struct {
		Wallet  domain.CommissionWallet `json:"wallet"`
		Payouts []*domain.Payout        `json:"payouts"`
	}](t, w)
	assert.Equal(t, 1200.0, userData.Wallet.Paid)
	assert.Equal(t, 1200.0, userData.Wallet.TotalEarned)
	assert.Len(t, userData.Payouts, 1)

	w = s.do(t, http.MethodPost, "/referral/status", map[string]any{"referralId": "missing", "status": "Paid"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodPost, "/referral/status", map[string]any{"referralId": r.ID, "status": "Lost"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetStatusRequiresConfirmation(t *testing.T) {
	s := newTestServer(t, referral.Policy{RequirePaidConfirmation: true}, false)
	r := s.submit(t, "Acme", 10)

	w := s.do(t, http.MethodPost, "/referral/status", map[string]any{"referralId": r.ID, "status": "Paid"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/referral/status", map[string]any{"referralId": r.ID, "status": "Paid", "confirmed": true}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRemindersFireOnce(t *testing.T) {
	s := newTestServer(t, referral.Policy{}, false)
	r := s.submit(t, "Acme", 10)

	w := s.do(t, http.MethodPost, "/referral/reminder", map[string]any{
		"referralId":   r.ID,
		"reminderDate": "2020-01-01T10:00:00Z",
		"reminderNote": "call back",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Reminder updated", decode[map[string]any](t, w)["message"])

	w = s.do(t, http.MethodGet, "/admin/reminders/due", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	due := decode[struct {
		Referrals []*domain.Referral `json:"referrals"`
	}](t, w)
	require.Len(t, due.Referrals, 1)
	assert.Equal(t, r.ID, due.Referrals[0].ID)

	w = s.do(t, http.MethodGet, "/admin/reminders/due", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[struct {
		Referrals []*domain.Referral `json:"referrals"`
	}](t, w).Referrals)

	w = s.do(t, http.MethodPost, "/referral/reminder", map[string]any{"referralId": r.ID, "reminderDate": "soon"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndExport(t *testing.T) {
	s := newTestServer(t, referral.Policy{}, false)
	s.submit(t, "Acme, Ltd", 10)
	s.submit(t, "Globex", 20)

	w := s.do(t, http.MethodGet, "/admin/referrals?search=glob", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Referrals []*domain.Referral `json:"referrals"`
	}](t, w)
	require.Len(t, list.Referrals, 1)
	assert.Equal(t, "Globex", list.Referrals[0].ClientName)

	w = s.do(t, http.MethodGet, "/admin/referrals?status=bogus", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/admin/export.csv", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "referrals-export-")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Client Name"))
	assert.Contains(t, w.Body.String(), `"Acme, Ltd"`)

	w = s.do(t, http.MethodGet, "/admin/export.xlsx", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestAccountEndpoints(t *testing.T) {
	s := newTestServer(t, referral.Policy{}, false)

	w := s.do(t, http.MethodPost, "/login/google", map[string]string{"idToken": "asha"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[map[string]any](t, w)
	assert.Equal(t, "u1", login["id"])
	assert.Equal(t, "user", login["role"])
	assert.NotEmpty(t, login["token"])

	w = s.do(t, http.MethodPost, "/login/google", map[string]string{"idToken": "forged"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPost, "/login/google", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/user/profile", map[string]string{"name": "Asha Kumar", "email": "asha@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Profile updated successfully", decode[map[string]any](t, w)["message"])

	w = s.do(t, http.MethodPost, "/user/profile", map[string]string{"name": "X", "email": "nobody@example.com"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/user/data", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/verify/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/services", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]domain.Service](t, w)["services"], len(domain.DefaultServices))
}

func TestEnforceRoles(t *testing.T) {
	s := newTestServer(t, referral.Policy{}, true)

	userToken, err := s.tokens.GenerateToken(&domain.User{ID: "u1", Email: "asha@example.com", Role: domain.RoleUser})
	require.NoError(t, err)
	adminToken, err := s.tokens.GenerateToken(&domain.User{ID: "a1", Email: "boss@example.com", Role: domain.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/admin/data", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/admin/data", nil, "garbage").Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/admin/data", nil, userToken).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/admin/data", nil, adminToken).Code)

	// partners only see their own data
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/user/data", nil, userToken).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/user/data?userId=a1", nil, userToken).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/user/data?userId=u1", nil, adminToken).Code)

	w := s.do(t, http.MethodPost, "/referral/submit", map[string]any{
		"clientName": "Acme", "mobile": "1", "expectedCommission": 5, "userId": "someone-else",
	}, userToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	submitted := decode[struct {
		Referral *domain.Referral `json:"referral"`
	}](t, w)
	assert.Equal(t, "u1", submitted.Referral.ReferrerID)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", nil, "").Code)
}

func TestOwnershipOnlyWhenRolesEnforced(t *testing.T) {
	for _, enforce := range []bool{false, true} {
		t.Run(fmt.Sprintf("enforce=%v", enforce), func(t *testing.T) {
			s := newTestServer(t, referral.Policy{}, enforce)
			_, _, err := s.store.UpsertUser(context.Background(), &domain.User{
				ID: "u2", Name: "Dev P", Email: "dev@example.com", Role: domain.RoleUser,
			})
			require.NoError(t, err)
			userToken, err := s.tokens.GenerateToken(&domain.User{ID: "u1", Email: "asha@example.com", Role: domain.RoleUser})
			require.NoError(t, err)

			w := s.do(t, http.MethodPost, "/referral/submit", map[string]any{
				"clientName": "Acme", "mobile": "1", "expectedCommission": 5, "userId": "u2",
			}, userToken)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			submitted := decode[struct {
				Referral *domain.Referral `json:"referral"`
			}](t, w)

			dataCode := s.do(t, http.MethodGet, "/user/data?userId=u2", nil, userToken).Code
			profileCode := s.do(t, http.MethodPost, "/user/profile",
				map[string]string{"name": "Dev", "email": "dev@example.com"}, userToken).Code

			if enforce {
				assert.Equal(t, "u1", submitted.Referral.ReferrerID)
				assert.Equal(t, http.StatusForbidden, dataCode)
				assert.Equal(t, http.StatusForbidden, profileCode)
			} else {
				assert.Equal(t, "u2", submitted.Referral.ReferrerID)
				assert.Equal(t, http.StatusOK, dataCode)
				assert.Equal(t, http.StatusOK, profileCode)
			}
		})
	}
}

// flushRecorder is a ResponseWriter safe to read while the handler is still writing.
type flushRecorder struct {
	mu     sync.Mutex
	header http.Header
	body   bytes.Buffer
	code   int
}

func (r *flushRecorder) Header() http.Header { return r.header }

func (r *flushRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *flushRecorder) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = code
}

func (r *flushRecorder) Flush() {}

func (r *flushRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func TestEventStream(t *testing.T) {
	s := newTestServer(t, referral.Policy{}, false)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/admin/events", nil).WithContext(ctx)
	rec := &flushRecorder{header: make(http.Header)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.engine.ServeHTTP(rec, req)
	}()

	require.Eventually(t, func() bool {
		return s.bus.Len(domain.EventReferralCreated) == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.submit(t, "Streamed Client", 10)

	require.Eventually(t, func() bool {
		return strings.Contains(rec.String(), "event:referral.created")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, rec.String(), "Streamed Client")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after the client went away")
	}
	for _, kind := range domain.EventKinds {
		assert.Zero(t, s.bus.Len(kind), kind)
	}
}
