package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/rewear-exchange/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockLoginer(ctrl)
	handler := NewLoginHandler(mockSvc)

	tests := []struct {
		name         string
		body         string
		mockSetup    func()
		expectedCode int
		expectedBody string
	}{
		{
			name: "success",
			body: `{"username":"alice","password":"linen-shirt"}`,
			mockSetup: func() {
				mockSvc.EXPECT().Login(gomock.Any(), "alice", "linen-shirt").Return("JWT_TOKEN", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"token":"JWT_TOKEN"}`,
		},
		{
			name: "unknown fields are ignored",
			body: `{"username":"alice","password":"linen-shirt","remember_me":true}`,
			mockSetup: func() {
				mockSvc.EXPECT().Login(gomock.Any(), "alice", "linen-shirt").Return("JWT_TOKEN", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"token":"JWT_TOKEN"}`,
		},
		{
			name:         "invalid JSON",
			body:         "{invalid json}",
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"invalid request body"}`,
		},
		{
			name:         "empty body",
			body:         "",
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"invalid request body"}`,
		},
		{
			name: "unknown user",
			body: `{"username":"ghost","password":"x"}`,
			mockSetup: func() {
				mockSvc.EXPECT().Login(gomock.Any(), "ghost", "x").Return("", services.ErrUserDoesNotExist)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error":"Invalid username or password"}`,
		},
		{
			name: "wrong password",
			body: `{"username":"alice","password":"wrong"}`,
			mockSetup: func() {
				mockSvc.EXPECT().Login(gomock.Any(), "alice", "wrong").Return("", services.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error":"Invalid username or password"}`,
		},
		{
			name: "internal error",
			body: `{"username":"alice","password":"linen-shirt"}`,
			mockSetup: func() {
				mockSvc.EXPECT().Login(gomock.Any(), "alice", "linen-shirt").Return("", errors.New("database error"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
