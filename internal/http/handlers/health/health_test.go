package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/staffdesk/internal/http/pipeline"
	"github.com/magabrotheeeer/staffdesk/internal/lib/sl"
)

func TestHandle(t *testing.T) {
	w := httptest.NewRecorder()
	pipeline.New(sl.Discard()).Handle(Handle).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"ok"}`, w.Body.String())
}
