package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 0)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_Login_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		writeJSON(w, http.StatusOK, `{"access_token":"tkn1","token_type":"bearer","user":{"id":1,"name":"Ann","email":"a@b.com","is_premium":false,"is_admin":false}}`)
	})

	res, err := client.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tkn1", res.AccessToken)
	assert.Equal(t, "1", res.Identity.ID)
	assert.Equal(t, "Ann", res.Identity.Name)
	assert.False(t, res.Identity.IsAdmin)
}

func TestClient_Login_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Invalid email or password"}`)
	})

	_, err := client.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthFailure))
	assert.Equal(t, "Invalid email or password", domain.DetailOf(err))
}

func TestClient_Register_ValidationDetailList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["gdpr_consent"])
		assert.Equal(t, false, body["marketing_consent"])
		assert.NotContains(t, body, "confirm_password")

		writeJSON(w, http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address"}]}`)
	})

	_, err := client.Register(context.Background(), domain.Registration{
		Name:        "Ann",
		Email:       "a@b.com",
		Password:    "pw",
		GDPRConsent: true,
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindBackendRejection))
	assert.Equal(t, "value is not a valid email address", domain.DetailOf(err))
}

func TestClient_Me_SendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tkn1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"id":"u-7","email":"a@b.com","name":"Ann","is_premium":true,"is_admin":true,"purchased_courses":["video_strategia"]}`)
	})

	id, err := client.Me(context.Background(), "tkn1")
	require.NoError(t, err)
	assert.Equal(t, "u-7", id.ID)
	assert.True(t, id.IsPremiumEntitled)
	assert.True(t, id.IsAdmin)
	assert.Equal(t, []string{"video_strategia"}, id.PurchasedPackages)
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, 0)
	_, err := client.Me(context.Background(), "tkn1")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNetworkFailure))
}

func TestClient_CreateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/paypal/create-order", r.URL.Path)
		assert.Equal(t, "Bearer tkn1", r.Header.Get("Authorization"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"course_package":"corso_completo","user_email":"a@b.com","amount":79.99}`, string(raw))

		writeJSON(w, http.StatusOK, `{"order_id":"O1","status":"created"}`)
	})

	order, err := client.CreateOrder(context.Background(), "tkn1", domain.CreateOrderRequest{
		PackageID:  "corso_completo",
		BuyerEmail: "a@b.com",
		Amount:     7999,
	})
	require.NoError(t, err)
	assert.Equal(t, "O1", order.OrderID)
	assert.Equal(t, domain.OrderStatusCreated, order.Status)
}

func TestClient_CreateOrder_MissingOrderID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := client.CreateOrder(context.Background(), "tkn1", domain.CreateOrderRequest{PackageID: "x", Amount: 1})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindBackendRejection))
}

func TestClient_CaptureOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/paypal/capture-order/O1", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"status":"COMPLETED","id":"O1"}`)
	})

	res, err := client.CaptureOrder(context.Background(), "tkn1", "O1")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", res.Status)
	assert.Equal(t, "O1", res.OrderID)
}

func TestClient_Packages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"powerpoint_strategie":{"name":"PowerPoint Strategie","price":10.99,"currency":"EUR","description":"d"},
			"corso_completo":{"name":"Corso Completo","price":79.99,"currency":"EUR","description":"d"}
		}`)
	})

	pkgs, err := client.Packages(context.Background())
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, "corso_completo", pkgs[0].ID)
	assert.Equal(t, domain.MinorUnits(7999), pkgs[0].Price)
	assert.Equal(t, domain.MinorUnits(1099), pkgs[1].Price)
}

func TestClient_SubmitBooking_AcknowledgementOnly(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"user_email":"a@b.com","preferred_date":"2026-10-19","preferred_time":"09:00","notes":""}`, string(raw))

		writeJSON(w, http.StatusOK, `{"message":"Booking request submitted successfully","booking_id":"b-1"}`)
	})

	b, err := client.SubmitBooking(context.Background(), domain.BookingSubmission{
		UserEmail:     "a@b.com",
		PreferredDate: "2026-10-19",
		PreferredTime: "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "b-1", b.ID)
	assert.Empty(t, b.Status)
}

func TestClient_ListBookings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tkn1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"bookings":[{"id":"b-1","user_email":"a@b.com","preferred_date":"2026-10-19","preferred_time":"09:00","notes":null,"status":"confirmed","created_at":"2026-10-18T09:30:00.123456"}]}`)
	})

	bookings, err := client.ListBookings(context.Background(), "tkn1")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, domain.BookingStatusConfirmed, bookings[0].Status)
	assert.Equal(t, 2026, bookings[0].CreatedAt.Year())
	assert.Empty(t, bookings[0].Notes)
}

func TestParseDetail_FallsBackToStatusText(t *testing.T) {
	assert.Equal(t, "Bad Gateway", parseDetail([]byte("<html>"), http.StatusBadGateway))
}
