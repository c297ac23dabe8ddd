package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/rewear-exchange/internal/jwt"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
	"github.com/sbilibin2017/rewear-exchange/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func authorizedTokener(ctrl *gomock.Controller, userID uuid.UUID) *MockTokener {
	m := NewMockTokener(ctrl)
	m.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).AnyTimes().Return("valid-token", nil)
	m.EXPECT().GetClaims(gomock.Any(), "valid-token").AnyTimes().Return(&jwt.Claims{UserID: userID}, nil)
	return m
}

func TestCreateExchangeHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	itemID := uuid.New()
	mockSvc := NewMockExchangeManager(ctrl)
	handler := NewCreateExchangeHandler(mockSvc, authorizedTokener(ctrl, userID))

	points := int64(50)

	tests := []struct {
		name           string
		body           string
		setup          func()
		expectedStatus int
		expectedError  string
	}{
		{
			name: "created",
			body: fmt.Sprintf(`{"item_id":%q,"exchange_type":"points_exchange","points_exchanged":50}`, itemID),
			setup: func() {
				mockSvc.EXPECT().
					Create(gomock.Any(), userID, services.CreateExchangeInput{
						ItemID:          itemID,
						ExchangeType:    models.PointsExchange,
						PointsExchanged: &points,
					}).
					Return(&models.ExchangeDB{
						ExchangeID:       uuid.New(),
						ItemID:           itemID,
						RequestingUserID: userID,
						ExchangeType:     models.PointsExchange,
						Status:           models.StatusPending,
						PointsExchanged:  50,
					}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           `{invalid`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request body",
		},
		{
			name:           "invalid item id",
			body:           `{"item_id":"nope","exchange_type":"direct_swap"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid item_id",
		},
		{
			name: "item not available",
			body: fmt.Sprintf(`{"item_id":%q,"exchange_type":"direct_swap"}`, itemID),
			setup: func() {
				mockSvc.EXPECT().Create(gomock.Any(), userID, gomock.Any()).
					Return(nil, fmt.Errorf("%w: item not found or not available", services.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "not found: item not found or not available",
		},
		{
			name: "insufficient points",
			body: fmt.Sprintf(`{"item_id":%q,"exchange_type":"points_exchange","points_exchanged":10}`, itemID),
			setup: func() {
				mockSvc.EXPECT().Create(gomock.Any(), userID, gomock.Any()).Return(nil, services.ErrInsufficientPoints)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "insufficient points",
		},
		{
			name: "duplicate request",
			body: fmt.Sprintf(`{"item_id":%q,"exchange_type":"direct_swap"}`, itemID),
			setup: func() {
				mockSvc.EXPECT().Create(gomock.Any(), userID, gomock.Any()).Return(nil, services.ErrConflict)
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}

			req := httptest.NewRequest(http.MethodPost, "/exchanges", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedError != "" {
				var resp ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedError, resp.Error)
				return
			}
			var got models.ExchangeDB
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, models.StatusPending, got.Status)
			assert.Equal(t, int64(50), got.PointsExchanged)
		})
	}
}

func TestListExchangesHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	mockSvc := NewMockExchangeManager(ctrl)
	handler := NewListExchangesHandler(mockSvc, authorizedTokener(ctrl, userID))

	t.Run("empty list is an empty array", func(t *testing.T) {
		mockSvc.EXPECT().ListExchangesForUser(gomock.Any(), userID).Return([]models.ExchangeDetails{}, nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exchanges", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("listing", func(t *testing.T) {
		listing := []models.ExchangeDetails{
			{ExchangeDB: models.ExchangeDB{ExchangeID: uuid.New(), Status: models.StatusPending}, ItemTitle: "Coat"},
			{ExchangeDB: models.ExchangeDB{ExchangeID: uuid.New(), Status: models.StatusCompleted}, ItemTitle: "Hat"},
		}
		mockSvc.EXPECT().ListExchangesForUser(gomock.Any(), userID).Return(listing, nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exchanges", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got []models.ExchangeDetails
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "Coat", got[0].ItemTitle)
		assert.Equal(t, listing[1].ExchangeID, got[1].ExchangeID)
	})

	t.Run("error", func(t *testing.T) {
		mockSvc.EXPECT().ListExchangesForUser(gomock.Any(), userID).Return(nil, errors.New("db error"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exchanges", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestExchangeTransitionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	exchangeID := uuid.New()
	tokener := authorizedTokener(ctrl, userID)

	tests := []struct {
		name           string
		id             string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{name: "applied", id: exchangeID.String(), expectedStatus: http.StatusOK, expectedBody: `{"message":"Exchange accepted successfully"}`},
		{name: "invalid id", id: "42", expectedStatus: http.StatusBadRequest, expectedBody: `{"error":"invalid id"}`},
		{name: "not found", id: exchangeID.String(), err: services.ErrNotFound, expectedStatus: http.StatusNotFound, expectedBody: `{"error":"not found"}`},
		{name: "forbidden", id: exchangeID.String(), err: services.ErrForbidden, expectedStatus: http.StatusForbidden, expectedBody: `{"error":"forbidden"}`},
		{name: "invalid state", id: exchangeID.String(), err: services.ErrInvalidState, expectedStatus: http.StatusConflict, expectedBody: `{"error":"invalid state"}`},
		{name: "insufficient points", id: exchangeID.String(), err: services.ErrInsufficientPoints, expectedStatus: http.StatusBadRequest, expectedBody: `{"error":"insufficient points"}`},
		{name: "conflict", id: exchangeID.String(), err: services.ErrConflict, expectedStatus: http.StatusConflict, expectedBody: `{"error":"conflict"}`},
		{name: "internal", id: exchangeID.String(), err: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedBody: `{"error":"Internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			transition := func(_ context.Context, actorID, id uuid.UUID) (*models.ExchangeDB, error) {
				called = true
				assert.Equal(t, userID, actorID)
				assert.Equal(t, exchangeID, id)
				if tt.err != nil {
					return nil, tt.err
				}
				return &models.ExchangeDB{ExchangeID: id, Status: models.StatusAccepted}, nil
			}

			req := withURLParam(httptest.NewRequest(http.MethodPut, "/exchanges/"+tt.id+"/accept", nil), "id", tt.id)
			rec := httptest.NewRecorder()
			NewExchangeTransitionHandler(transition, tokener, "Exchange accepted successfully").ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			assert.Equal(t, tt.id == exchangeID.String(), called)
		})
	}

	t.Run("unauthorized", func(t *testing.T) {
		unauthorized := NewMockTokener(ctrl)
		unauthorized.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("", jwt.ErrMissingAuthHeader)

		transition := func(context.Context, uuid.UUID, uuid.UUID) (*models.ExchangeDB, error) {
			t.Fatal("transition must not run")
			return nil, nil
		}

		req := withURLParam(httptest.NewRequest(http.MethodPut, "/exchanges/x/cancel", nil), "id", exchangeID.String())
		rec := httptest.NewRecorder()
		NewExchangeTransitionHandler(transition, unauthorized, "Exchange cancelled successfully").ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
