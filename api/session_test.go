package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/coursedesk/config"
	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/Domenick1991/coursedesk/internal/service/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSessionReader struct {
	mock.Mock
}

func (m *MockSessionReader) Current() domain.Snapshot {
	args := m.Called()
	return args.Get(0).(domain.Snapshot)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Health(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockCatalogUseCase struct {
	mock.Mock
}

func (m *MockCatalogUseCase) List(ctx context.Context) ([]domain.CoursePackage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CoursePackage), args.Error(1)
}

func (m *MockCatalogUseCase) Get(ctx context.Context, id string) (*domain.CoursePackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CoursePackage), args.Error(1)
}

func newTestRouter(session *MockSessionReader, health *MockHealthChecker, catalog *MockCatalogUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(Handlers{
		Session:  NewSessionHandler(session, health),
		Auth:     NewAuthHandler(&MockAuthUseCase{}),
		Packages: NewPackageHandler(catalog),
		Checkout: NewCheckoutHandler(&MockCheckoutUseCase{}),
		Bookings: NewBookingHandler(&MockBookingUseCase{}),
	}, config.RateLimitConfig{AuthPerMinute: 20, Burst: 5}, nil)
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestSessionHandler_current(t *testing.T) {
	session := &MockSessionReader{}
	router := newTestRouter(session, &MockHealthChecker{}, &MockCatalogUseCase{})

	session.On("Current").Return(domain.Snapshot{LoadState: domain.LoadStateLoading})

	w := serve(router, "GET", "/session")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"identity":null,"load_state":"loading"}`, w.Body.String())
}

func TestSessionHandler_gate(t *testing.T) {
	session := &MockSessionReader{}
	router := newTestRouter(session, &MockHealthChecker{}, &MockCatalogUseCase{})

	session.On("Current").Return(domain.Snapshot{
		LoadState: domain.LoadStateReady,
		Identity:  &domain.Identity{ID: "1", IsPremiumEntitled: true},
	})

	w := serve(router, "GET", "/gate/purchase?package_id=corso_completo")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"action":"purchase","decision":"already_owned"}`, w.Body.String())

	w = serve(router, "GET", "/gate/open_admin")
	assert.JSONEq(t, `{"action":"open_admin","decision":"denied"}`, w.Body.String())

	w = serve(router, "GET", "/gate/fly")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_admin(t *testing.T) {
	testCases := []struct {
		name         string
		snap         domain.Snapshot
		expectedCode int
	}{
		{name: "Anonymous", snap: domain.Snapshot{LoadState: domain.LoadStateReady}, expectedCode: http.StatusForbidden},
		{name: "Non-admin", snap: domain.Snapshot{Identity: &domain.Identity{ID: "1"}}, expectedCode: http.StatusForbidden},
		{name: "Admin", snap: domain.Snapshot{Identity: &domain.Identity{ID: "1", IsAdmin: true}}, expectedCode: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			session := &MockSessionReader{}
			router := newTestRouter(session, &MockHealthChecker{}, &MockCatalogUseCase{})
			session.On("Current").Return(tc.snap)

			w := serve(router, "GET", "/admin")
			assert.Equal(t, tc.expectedCode, w.Code)
		})
	}
}

func TestSessionHandler_health(t *testing.T) {
	health := &MockHealthChecker{}
	router := newTestRouter(&MockSessionReader{}, health, &MockCatalogUseCase{})

	health.On("Health", mock.Anything).Return("", domain.NewNetworkFailure("health", errors.New("refused"))).Once()
	w := serve(router, "GET", "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	health.On("Health", mock.Anything).Return("healthy", nil).Once()
	w = serve(router, "GET", "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestPackageHandler_list(t *testing.T) {
	catalog := &MockCatalogUseCase{}
	router := newTestRouter(&MockSessionReader{}, &MockHealthChecker{}, catalog)

	catalog.On("List", mock.Anything).Return([]domain.CoursePackage{
		{ID: "corso_completo", Name: "Corso Completo", Price: 7999, Currency: "EUR"},
	}, nil)

	w := serve(router, "GET", "/packages")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"corso_completo","name":"Corso Completo","description":"","price":"79.99","price_minor":7999,"currency":"EUR"}]`, w.Body.String())
}

func TestPackageHandler_get_notFound(t *testing.T) {
	catalog := &MockCatalogUseCase{}
	router := newTestRouter(&MockSessionReader{}, &MockHealthChecker{}, catalog)

	catalog.On("Get", mock.Anything, "nope").Return(nil, domain.ErrPackageNotFound)

	w := serve(router, "GET", "/packages/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDescribeError_Unknown(t *testing.T) {
	status, body := describeError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", body.Error)
}

type staticTokens struct{ token string }

func (s staticTokens) LoadToken(context.Context) (string, error) { return s.token, nil }
func (s staticTokens) SaveToken(context.Context, string) error    { return nil }
func (s staticTokens) DeleteToken(context.Context) error          { return nil }

type gatedFetcher struct {
	release chan struct{}
}

func (f gatedFetcher) Me(ctx context.Context, token string) (*domain.Identity, error) {
	<-f.release
	return &domain.Identity{ID: "1", Email: "a@b.com"}, nil
}

func TestSessionHandler_reportsLoadingDuringRestore(t *testing.T) {
	fetcher := gatedFetcher{release: make(chan struct{})}
	store := session.NewStore(staticTokens{token: "tkn1"}, fetcher, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewSessionHandler(store, &MockHealthChecker{}).Register(router)

	restored := make(chan error, 1)
	go func() { restored <- store.Initialize(context.Background()) }()

	w := serve(router, "GET", "/session")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"identity":null,"load_state":"loading"}`, w.Body.String())

	close(fetcher.release)
	require.NoError(t, <-restored)

	w = serve(router, "GET", "/session")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"load_state":"ready"`)
	assert.Contains(t, w.Body.String(), `"a@b.com"`)
}
