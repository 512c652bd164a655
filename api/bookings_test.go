package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/Domenick1991/coursedesk/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Submit(ctx context.Context, input booking.SubmitInput) (*domain.BookingRequest, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRequest), args.Error(1)
}

func (m *MockBookingUseCase) ListMine(ctx context.Context) ([]domain.BookingRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRequest), args.Error(1)
}

func (m *MockBookingUseCase) Bookings() []domain.BookingRequest {
	args := m.Called()
	return args.Get(0).([]domain.BookingRequest)
}

func (m *MockBookingUseCase) Slots() domain.TimeSlotCatalog {
	args := m.Called()
	return args.Get(0).(domain.TimeSlotCatalog)
}

func TestBookingHandler_submit(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.SubmitInput{PreferredDate: "2026-10-19", PreferredTime: "09:00"}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	created := &domain.BookingRequest{
		ID:            "b-1",
		UserEmail:     "a@b.com",
		PreferredDate: "2026-10-19",
		PreferredTime: "09:00",
		Status:        domain.BookingStatusPending,
	}
	mockService.On("Submit", c.Request.Context(), input).Return(created, nil)

	handler.submit(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response domain.BookingRequest
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "b-1", response.ID)
	assert.Equal(t, domain.BookingStatusPending, response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_submit_validation(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.SubmitInput{PreferredDate: "2026-10-18", PreferredTime: "09:00"}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Submit", c.Request.Context(), input).
		Return(nil, domain.NewValidationError("submit booking", "preferred date must be after today"))

	handler.submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response errorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "preferred date must be after today", response.Error)
	assert.Equal(t, string(domain.KindValidation), response.Kind)
}

func TestBookingHandler_list_requiresLogin(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings", nil)

	mockService.On("ListMine", c.Request.Context()).Return(nil, domain.ErrLoginRequired)

	handler.list(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var response errorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, domain.DecisionRequiresLogin, response.Decision)
}

func TestBookingHandler_slots(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings/slots", nil)

	mockService.On("Slots").Return(domain.TimeSlotCatalog{"09:00", "10:00"})

	handler.slots(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"slots":["09:00","10:00"]}`, w.Body.String())
}
