package updateme

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

func (m *ServiceMock) UpdateMe(ctx context.Context, user *models.User, req models.UpdateMeRequest) error {
	return m.Called(ctx, user, req).Error(0)
}

func TestHandler(t *testing.T) {
	user := &models.User{ID: "u1", Username: "ann"}
	payload := models.UpdateMeRequest{Username: "bob"}

	tests := []struct {
		name           string
		mockErr        error
		wantStatusCode int
		wantMessage    string
	}{
		{name: "updated", wantStatusCode: http.StatusOK, wantMessage: "Profile updated successfully"},
		{
			name:           "username taken",
			mockErr:        httperr.BadRequest("Username already in use!"),
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "Username already in use!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("UpdateMe", mock.Anything, user, payload).Return(tt.mockErr).Once()

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/auth/update-me", nil)
			ctx := middlewarectx.WithUser(req.Context(), user)
			req = req.WithContext(middlewarectx.WithPayload(ctx, payload))
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
			assert.Equal(t, tt.wantMessage, body.Message)
			svc.AssertExpectations(t)
		})
	}
}
