package signup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/staffdesk/internal/http/middlewarectx"
	"github.com/magabrotheeeer/staffdesk/internal/http/pipeline"
	"github.com/magabrotheeeer/staffdesk/internal/http/response"
	"github.com/magabrotheeeer/staffdesk/internal/lib/httperr"
	"github.com/magabrotheeeer/staffdesk/internal/lib/sl"
	"github.com/magabrotheeeer/staffdesk/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) SignUpCEO(ctx context.Context, req models.SignUpCEORequest) error {
	return m.Called(ctx, req).Error(0)
}

func TestHandler(t *testing.T) {
	payload := models.SignUpCEORequest{Username: "boss", Password: "secret", RegKey: "key"}

	tests := []struct {
		name           string
		mockErr        error
		wantStatusCode int
		wantMessage    string
	}{
		{name: "created", wantStatusCode: http.StatusCreated, wantMessage: "CEO created successfully"},
		{
			name:           "second ceo",
			mockErr:        httperr.BadRequest("There is already a CEO registered!"),
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "There is already a CEO registered!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("SignUpCEO", mock.Anything, payload).Return(tt.mockErr).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-up/ceo", nil)
			req = req.WithContext(middlewarectx.WithPayload(req.Context(), payload))
			w := httptest.NewRecorder()
			pipeline.New(sl.Discard()).Handle(New(sl.Discard(), svc).Handle).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			if tt.mockErr != nil {
				var body response.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantMessage, body.Error.Message)
				return
			}
			var body response.MessageResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.True(t, body.Success)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}
