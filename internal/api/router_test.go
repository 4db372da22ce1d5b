package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fotf/subscription-system/internal/core/domain"
	"github.com/fotf/subscription-system/internal/core/ports"
	"github.com/fotf/subscription-system/internal/core/service"
	"github.com/fotf/subscription-system/pkg/logger"
)

// --- In-memory repositories ---

type memAccounts struct {
	mu     sync.Mutex
	byID   map[string]*domain.Account
	nextID int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[string]*domain.Account)}
}

func (r *memAccounts) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == a.Username {
			return nil, domain.ErrUserExists
		}
	}
	created := *a
	r.nextID++
	created.ID = fmt.Sprintf("acc-%d", r.nextID)
	r.byID[created.ID] = &created
	clone := created
	return &clone, nil
}

func (r *memAccounts) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Username == username {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memAccounts) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *memAccounts) List(_ context.Context) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	accounts := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		clone := *a
		accounts = append(accounts, &clone)
	}
	return accounts, nil
}

func (r *memAccounts) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	a.IsAdmin = isAdmin
	return nil
}

type memProducts struct {
	mu     sync.Mutex
	byID   map[string]*domain.Product
	nextID int
}

func newMemProducts() *memProducts {
	return &memProducts{byID: make(map[string]*domain.Product)}
}

func (r *memProducts) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *p
	r.nextID++
	created.ID = fmt.Sprintf("prod-%d", r.nextID)
	r.byID[created.ID] = &created
	clone := created
	return &clone, nil
}

func (r *memProducts) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *memProducts) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	products := make([]*domain.Product, 0, len(r.byID))
	for _, p := range r.byID {
		clone := *p
		products = append(products, &clone)
	}
	return products, nil
}

type memSubscriptions struct {
	mu     sync.Mutex
	byID   map[string]*domain.Subscription
	nextID int
}

func newMemSubscriptions() *memSubscriptions {
	return &memSubscriptions{byID: make(map[string]*domain.Subscription)}
}

func (r *memSubscriptions) Create(_ context.Context, s *domain.Subscription) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *s
	r.nextID++
	created.ID = fmt.Sprintf("sub-%d", r.nextID)
	r.byID[created.ID] = &created
	clone := created
	return &clone, nil
}

func (r *memSubscriptions) FindByID(_ context.Context, id string) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *memSubscriptions) ListByUser(_ context.Context, userID string) ([]*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := []*domain.Subscription{}
	for _, s := range r.byID {
		if s.UserID == userID {
			clone := *s
			subs = append(subs, &clone)
		}
	}
	return subs, nil
}

func (r *memSubscriptions) ListAll(_ context.Context) ([]*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := []*domain.Subscription{}
	for _, s := range r.byID {
		clone := *s
		subs = append(subs, &clone)
	}
	return subs, nil
}

func (r *memSubscriptions) ListEnded(_ context.Context, now time.Time) ([]*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := []*domain.Subscription{}
	for _, s := range r.byID {
		if s.Ended(now) {
			clone := *s
			subs = append(subs, &clone)
		}
	}
	return subs, nil
}

func (r *memSubscriptions) SetCancelAtPeriodEnd(_ context.Context, id string, cancel bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return domain.ErrSubscriptionNotFound
	}
	s.CancelAtPeriodEnd = cancel
	return nil
}

func (r *memSubscriptions) SetStatus(_ context.Context, id string, status domain.SubscriptionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return domain.ErrSubscriptionNotFound
	}
	s.Status = status
	return nil
}

// --- Harness ---

type apiHarness struct {
	http.Handler
	accounts *memAccounts
}

// The Prometheus middleware registers collectors with the default registry,
// so the router is built exactly once for the whole package.
var (
	harness     *apiHarness
	harnessOnce sync.Once
)

func testAPI(t *testing.T) *apiHarness {
	t.Helper()
	harnessOnce.Do(func() {
		logger.Reset()
		log := logger.Init(logger.Options{Level: "error"})

		accounts := newMemAccounts()
		products := newMemProducts()
		subscriptions := newMemSubscriptions()

		tokens := service.NewTokenService("test-secret", time.Hour)
		auth := service.NewAuthService(accounts, tokens, log)
		productSvc := service.NewProductService(products, nil, log)
		subscriptionSvc := service.NewSubscriptionService(subscriptions, products, log)

		if err := service.EnsureBootstrapAdmin(context.Background(), accounts, log); err != nil {
			t.Fatalf("bootstrap: %v", err)
		}

		e := NewRouter(Dependencies{
			Accounts:      accounts,
			Auth:          auth,
			Tokens:        tokens,
			Products:      productSvc,
			Subscriptions: subscriptionSvc,
			Logger:        log,
		})
		harness = &apiHarness{Handler: e, accounts: accounts}
	})
	return harness
}

func (h *apiHarness) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func (h *apiHarness) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/auth/login", "",
		fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login %s: no token in response: %s", username, rec.Body)
	}
	return resp.Token
}

// --- Tests ---

func TestRouter_SignupLoginAdminFlow(t *testing.T) {
	h := testAPI(t)

	// Signup.
	rec := h.do(t, http.MethodPost, "/api/auth/signup", "", `{"username":"alice","password":"correct-horse"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", rec.Code, rec.Body)
	}

	// Duplicate signup is a 400, not a second account.
	rec = h.do(t, http.MethodPost, "/api/auth/signup", "", `{"username":"alice","password":"other"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup: expected 400, got %d", rec.Code)
	}

	aliceToken := h.login(t, "alice", "correct-horse")

	// Alice can see herself.
	rec = h.do(t, http.MethodGet, "/api/user", aliceToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/user: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password field leaked: %s", rec.Body)
	}

	// Alice is not an admin.
	rec = h.do(t, http.MethodGet, "/api/admin/users", aliceToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("GET /api/admin/users as alice: expected 403, got %d", rec.Code)
	}

	// The bootstrap admin is.
	adminToken := h.login(t, domain.BootstrapUsername, "FOTFAdmin1970!@!")
	rec = h.do(t, http.MethodGet, "/api/admin/users", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/admin/users as admin: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("hash field leaked in admin listing: %s", rec.Body)
	}
}

func TestRouter_AuthGates(t *testing.T) {
	h := testAPI(t)

	// No token: 401.
	rec := h.do(t, http.MethodGet, "/api/user", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}

	// Garbage token: 403.
	rec = h.do(t, http.MethodGet, "/api/user", "not-a-token", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bad token: expected 403, got %d", rec.Code)
	}

	// Wrong credentials and unknown handle: identical 401 envelopes.
	wrongPass := h.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"wrong"}`)
	noUser := h.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"nobody","password":"wrong"}`)
	if wrongPass.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPass.Code, noUser.Code)
	}
	if wrongPass.Body.String() != noUser.Body.String() {
		t.Fatalf("login failures are distinguishable: %s vs %s", wrongPass.Body, noUser.Body)
	}
}

func TestRouter_CatalogAndSubscriptions(t *testing.T) {
	h := testAPI(t)

	// Ensure the actors exist regardless of test ordering.
	h.do(t, http.MethodPost, "/api/auth/signup", "", `{"username":"bob","password":"hunter2"}`)
	bobToken := h.login(t, "bob", "hunter2")
	adminToken := h.login(t, domain.BootstrapUsername, "FOTFAdmin1970!@!")

	// Catalog is public to read, admin to write.
	rec := h.do(t, http.MethodPost, "/api/products", bobToken, `{"name":"Gold","price":9.99}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("POST /api/products as bob: expected 403, got %d", rec.Code)
	}

	rec = h.do(t, http.MethodPost, "/api/products", adminToken, `{"name":"Gold","price":9.99,"features":["discord"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/products as admin: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var product struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &product); err != nil || product.ID == "" {
		t.Fatalf("no product id: %s", rec.Body)
	}

	rec = h.do(t, http.MethodGet, "/api/products", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/products: expected 200, got %d", rec.Code)
	}

	// Bob subscribes, lists, cancels.
	rec = h.do(t, http.MethodPost, "/api/subscriptions", bobToken,
		fmt.Sprintf(`{"product_id":%q,"discord_username":"bob#0001"}`, product.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/subscriptions: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var sub struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil || sub.ID == "" {
		t.Fatalf("no subscription id: %s", rec.Body)
	}
	if sub.Status != "active" {
		t.Fatalf("expected active subscription, got %s", sub.Status)
	}

	rec = h.do(t, http.MethodGet, "/api/subscriptions", bobToken, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), sub.ID) {
		t.Fatalf("GET /api/subscriptions: %d %s", rec.Code, rec.Body)
	}

	rec = h.do(t, http.MethodPost, "/api/subscriptions/"+sub.ID+"/cancel", bobToken, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"cancel_at_period_end":true`) {
		t.Fatalf("cancel: %d %s", rec.Code, rec.Body)
	}

	// Admin sees everything, hashes omitted.
	rec = h.do(t, http.MethodGet, "/api/admin/subscriptions", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/admin/subscriptions: expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("hash leaked: %s", rec.Body)
	}
}

func TestRouter_DemotedAdminLosesAccess(t *testing.T) {
	h := testAPI(t)

	h.do(t, http.MethodPost, "/api/auth/signup", "", `{"username":"carol","password":"s3cret"}`)

	// Promote carol directly in the store, then mint her token.
	carol, err := h.accounts.FindByUsername(context.Background(), "carol")
	if err != nil {
		t.Fatalf("find carol: %v", err)
	}
	if err := h.accounts.SetAdmin(context.Background(), carol.ID, true); err != nil {
		t.Fatalf("promote: %v", err)
	}
	token := h.login(t, "carol", "s3cret")

	rec := h.do(t, http.MethodGet, "/api/admin/users", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin request as promoted carol: expected 200, got %d", rec.Code)
	}

	// Demote; the same still-valid token no longer grants admin access.
	if err := h.accounts.SetAdmin(context.Background(), carol.ID, false); err != nil {
		t.Fatalf("demote: %v", err)
	}
	rec = h.do(t, http.MethodGet, "/api/admin/users", token, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin request after demotion: expected 403, got %d", rec.Code)
	}
}

func TestRouter_Health(t *testing.T) {
	h := testAPI(t)

	rec := h.do(t, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
}

var _ ports.AccountRepository = (*memAccounts)(nil)
var _ ports.ProductRepository = (*memProducts)(nil)
var _ ports.SubscriptionRepository = (*memSubscriptions)(nil)
