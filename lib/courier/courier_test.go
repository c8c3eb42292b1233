package courier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"camwatch/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSendEmail(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:courier")
	defer cleanup()
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/send" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", r.Header.Get("Authorization"))
		}

		var got sendRequest
		err := json.NewDecoder(r.Body).Decode(&got)
		if err != nil {
			t.Error(err)
		}
		diff := cmp.Diff(sendRequest{
			Message: message{
				To:      recipient{Email: "alice@example.com"},
				Content: content{Title: "2 new cameras", Body: "<ul><li>Canon R5</li></ul>"},
				Routing: routing{Method: "single", Channels: []string{"email"}},
			},
		}, got)
		if diff != "" {
			t.Error(diff)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"requestId": "req-1"}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{BaseUrl: server.URL, ApiKey: "test-key"})
	if err != nil {
		t.Fatal(err)
	}

	requestId, err := client.SendEmail(ctx, "alice@example.com", "2 new cameras", "<ul><li>Canon R5</li></ul>")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "req-1", requestId)
}

func TestSendEmailRejected(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid token"}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{BaseUrl: server.URL, ApiKey: "bad-key"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.SendEmail(ctx, "alice@example.com", "title", "body")
	var statusErr StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	require.Contains(t, statusErr.Body, "invalid token")
}

func TestMissingApiKey(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	require.ErrorIs(t, err, ErrMissingApiKey)
}
