package middlewarectx_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/magabrotheeeer/staffdesk/internal/http/pipeline"
	"github.com/magabrotheeeer/staffdesk/internal/lib/sl"
)

// serve прогоняет запрос через шаг и next так же, как это делает роутер.
func serve(step pipeline.Step, next http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	if next == nil {
		next = func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	}
	w := httptest.NewRecorder()
	pipeline.New(sl.Discard()).Guard(step)(next).ServeHTTP(w, req)
	return w
}
