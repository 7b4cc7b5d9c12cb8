package line

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/snappword/snappword-backend/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.LineConfig{
		ChannelAccessToken: "test-token",
		APIBaseURL:         srv.URL,
		DataBaseURL:        srv.URL,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Reply(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	err := client.Reply(context.Background(), "reply-token-1", NewTextMessage("已儲存 3 個單字!"))
	if err != nil {
		t.Fatalf("Reply: unexpected error: %v", err)
	}

	if gotPath != "/v2/bot/message/reply" {
		t.Errorf("path: got %s", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("auth header: got %q", gotAuth)
	}
	if gotBody["replyToken"] != "reply-token-1" {
		t.Errorf("replyToken: got %v", gotBody["replyToken"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("messages: got %v", gotBody["messages"])
	}
	msg, _ := msgs[0].(map[string]any)
	if msg["type"] != "text" || msg["text"] != "已儲存 3 個單字!" {
		t.Errorf("message: got %v", msg)
	}
}

func TestClient_Push_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid user id"}`))
	})

	err := client.Push(context.Background(), "U-bad", NewTextMessage("hi"))
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestClient_GetProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/profile/U123" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Profile{UserID: "U123", DisplayName: "Alice"})
	})

	profile, err := client.GetProfile(context.Background(), "U123")
	if err != nil {
		t.Fatalf("GetProfile: unexpected error: %v", err)
	}
	if profile.DisplayName != "Alice" {
		t.Errorf("DisplayName: got %q", profile.DisplayName)
	}
}

func TestClient_GetMessageContent(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/message/msg-1/content" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	})

	data, contentType, err := client.GetMessageContent(context.Background(), "msg-1")
	if err != nil {
		t.Fatalf("GetMessageContent: unexpected error: %v", err)
	}
	if contentType != "image/png" {
		t.Errorf("content type: got %q", contentType)
	}
	if string(data) != string(payload) {
		t.Errorf("data mismatch: got %v", data)
	}
}

func TestWebhookRequest_Decode(t *testing.T) {
	raw := `{
		"destination": "Ubot",
		"events": [
			{"type": "message", "replyToken": "rt", "timestamp": 1720000000000,
			 "source": {"type": "user", "userId": "U1"},
			 "message": {"id": "m1", "type": "image"}},
			{"type": "follow", "replyToken": "rt2",
			 "source": {"type": "user", "userId": "U2"}}
		]
	}`

	var req WebhookRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(req.Events) != 2 {
		t.Fatalf("events: got %d, want 2", len(req.Events))
	}
	if req.Events[0].Message == nil || req.Events[0].Message.Type != MessageTypeImage {
		t.Errorf("first event message: got %+v", req.Events[0].Message)
	}
	if req.Events[1].Type != EventTypeFollow || req.Events[1].Message != nil {
		t.Errorf("second event: got %+v", req.Events[1])
	}
}
