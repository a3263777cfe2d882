package request

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToJsonReq(t *testing.T) {
	buf, err := ToJsonReq(map[string]string{"seller_id": "slr_1"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"seller_id":"slr_1"}`, buf.String())
}

func TestCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	req, err := http.NewRequest("POST", srv.URL, nil)
	assert.NoError(t, err)

	var response map[string]interface{}
	resp, err := Call(req, &response)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, response["ok"])
}
