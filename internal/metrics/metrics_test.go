package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                  "/",
		"/":                                 "/",
		"/Home/Index":                       "/Home/Index",
		"/Honey/Details/5b7c0f7e-0000-4000": "/Honey/Details",
		"/static/css/site.css":              "/static",
		"/ping":                             "/ping",
	}
	for in, want := range cases {
		assert.Equal(t, want, canonicalPath(in), in)
	}
}

func TestInstrumentHandlerCountsStatus(t *testing.T) {
	h := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/Home/Brew", "418"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/Home/Brew/1", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/Home/Brew", "418"))

	assert.Equal(t, before+1, after)
}

func TestRecordEmail(t *testing.T) {
	before := testutil.ToFloat64(emailsSent.WithLabelValues("test", "error"))
	RecordEmail("test", assert.AnError)
	assert.Equal(t, before+1, testutil.ToFloat64(emailsSent.WithLabelValues("test", "error")))
}
