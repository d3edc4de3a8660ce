package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
)

func testClient(url string) *Client {
	return NewClient(config.BackendConfig{URL: url, Timeout: 5 * time.Second})
}

func TestRequestEnvelope(t *testing.T) {
	t.Run("action rides in both query and body", func(t *testing.T) {
		var gotQuery string
		var gotBody map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("action")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &gotBody)
			w.Write([]byte(`{"userId":"u1","username":"alice"}`))
		}))
		defer srv.Close()

		user, err := testClient(srv.URL).Login(context.Background(), "alice", "secret")

		require.NoError(t, err)
		assert.Equal(t, "login", gotQuery)
		assert.Equal(t, "login", gotBody["action"])
		assert.Equal(t, "alice", gotBody["username"])
		assert.Equal(t, "u1", user.UserID)
	})

	t.Run("base URL with existing query keeps it", func(t *testing.T) {
		var gotRawQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRawQuery = r.URL.RawQuery
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := testClient(srv.URL + "?key=abc")
		_, err := client.Sync(context.Background(), "u1")

		require.NoError(t, err)
		assert.Contains(t, gotRawQuery, "key=abc")
		assert.Contains(t, gotRawQuery, "action=sync")
	})
}

func TestRequestErrors(t *testing.T) {
	t.Run("error envelope with 200 status is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"error","message":"Invalid credentials"}`))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Login(context.Background(), "alice", "wrong")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid credentials")
	})

	t.Run("non-2xx status is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Sync(context.Background(), "u1")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("unreachable host is a failure", func(t *testing.T) {
		client := testClient("http://127.0.0.1:1")

		_, err := client.Sync(context.Background(), "u1")

		assert.Error(t, err)
	})
}

func TestSyncDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{
			"reports":[{"id":"rep_1","category":"Communication Issue","content":"x","createdAt":"2026-08-01T00:00:00Z"}],
			"documents":[{"id":"doc_1","name":"file.pdf","folder":"User Uploads"}],
			"templates":[],
			"profile":{"name":"Alice","tokens":42,"tier":"Plus"},
			"linkedUserId":"u2"
		}}`))
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).Sync(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, data.Reports, 1)
	assert.Equal(t, "rep_1", data.Reports[0].ID)
	require.Len(t, data.Documents, 1)
	assert.Empty(t, data.Documents[0].Data)
	require.NotNil(t, data.Profile)
	require.NotNil(t, data.Profile.Tokens)
	assert.Equal(t, 42, *data.Profile.Tokens)
	assert.Equal(t, "u2", data.LinkedUserID)
}

func TestSaveItemsPayload(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).SaveItems(context.Background(), "u1", "reports", []map[string]string{{"id": "rep_1"}})

	require.NoError(t, err)
	assert.Equal(t, "saveItems", gotBody["action"])
	assert.Equal(t, "u1", gotBody["userId"])
	assert.Equal(t, "reports", gotBody["type"])
	items, ok := gotBody["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestOfflineFlag(t *testing.T) {
	client := testClient("http://example.invalid")

	assert.False(t, client.Offline())
	client.SetOffline(true)
	assert.True(t, client.Offline())
	client.SetOffline(false)
	assert.False(t, client.Offline())
}
