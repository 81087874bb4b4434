package axochat_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/CCBlueX/axochat-client/internal/axotest"
	"github.com/CCBlueX/axochat-client/pkg/axochat"
	"github.com/CCBlueX/axochat-client/pkg/protocol"
)

const waitFor = 5 * time.Second

func TestSession_EndToEnd(t *testing.T) {
	srv := axotest.New()
	defer srv.Close()

	session := axochat.New()

	opened := make(chan struct{})
	messages := make(chan protocol.ChatMessage, 1)
	success := make(chan protocol.SuccessReason, 1)
	counts := make(chan protocol.UserCount, 1)
	session.OnOpen(func(axochat.Transport) { close(opened) })
	session.OnMessage(func(m protocol.ChatMessage) { messages <- m })
	session.OnSuccess(func(r protocol.SuccessReason) { success <- r })
	session.OnUserCount(func(c protocol.UserCount) { counts <- c })

	if err := session.Connect(srv.URL()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer session.Disconnect()

	select {
	case <-opened:
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for open")
	}

	if err := session.LoginJWT("tok-1", true); err != nil {
		t.Fatalf("LoginJWT() error = %v", err)
	}

	select {
	case env := <-srv.Envelopes():
		if env.Kind != protocol.KindLoginJWT {
			t.Fatalf("server received kind %q, want LoginJWT", env.Kind)
		}
		var body protocol.LoginJWT
		if err := json.Unmarshal(env.Payload, &body); err != nil {
			t.Fatalf("payload decode failed: %v", err)
		}
		if body.Token != "tok-1" || !body.AllowMessages {
			t.Errorf("login payload = %+v", body)
		}
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for login envelope")
	}

	if err := srv.Send(protocol.KindSuccess, map[string]any{"reason": "Login"}); err != nil {
		t.Fatalf("server send failed: %v", err)
	}
	select {
	case reason := <-success:
		if reason != protocol.SuccessLogin {
			t.Errorf("success reason = %q, want Login", reason)
		}
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for success event")
	}

	if err := srv.Send(protocol.KindMessage, protocol.ChatMessage{
		Author:  protocol.AuthorInfo{Name: "Notch", UUID: "069a79f4-44e9-4726-a5be-fca90e38aaf5"},
		Content: "welcome",
	}); err != nil {
		t.Fatalf("server send failed: %v", err)
	}
	select {
	case msg := <-messages:
		if msg.Author.Name != "Notch" || msg.Content != "welcome" {
			t.Errorf("message = %+v", msg)
		}
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for message event")
	}

	if err := srv.Send(protocol.KindUserCount, map[string]any{"connections": 7, "logged_in": 4}); err != nil {
		t.Fatalf("server send failed: %v", err)
	}
	select {
	case count := <-counts:
		if count.Connections != 7 || count.LoggedIn != 4 {
			t.Errorf("count = %+v", count)
		}
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for user count event")
	}
}

func TestSession_EndToEnd_MalformedFrame(t *testing.T) {
	srv := axotest.New()
	defer srv.Close()

	session := axochat.New()

	opened := make(chan struct{})
	decodeErrs := make(chan axochat.DecodeError, 1)
	tokens := make(chan string, 1)
	session.OnOpen(func(axochat.Transport) { close(opened) })
	session.OnDecodeError(func(e axochat.DecodeError) { decodeErrs <- e })
	session.OnNewJWT(func(tok string) { tokens <- tok })

	if err := session.Connect(srv.URL()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer session.Disconnect()

	select {
	case <-opened:
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for open")
	}

	if err := srv.SendRaw("this is not json"); err != nil {
		t.Fatalf("server send failed: %v", err)
	}
	select {
	case e := <-decodeErrs:
		if e.Raw != "this is not json" {
			t.Errorf("decode error raw = %q", e.Raw)
		}
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for decode error event")
	}

	// the connection survives and the next frame dispatches normally
	if err := srv.Send(protocol.KindNewJWT, map[string]any{"token": "tok-2"}); err != nil {
		t.Fatalf("server send failed: %v", err)
	}
	select {
	case tok := <-tokens:
		if tok != "tok-2" {
			t.Errorf("token = %q, want tok-2", tok)
		}
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for token event")
	}
}

func TestSession_EndToEnd_ServerClose(t *testing.T) {
	srv := axotest.New()
	defer srv.Close()

	session := axochat.New()

	opened := make(chan struct{})
	closed := make(chan axochat.CloseEvent, 1)
	session.OnOpen(func(axochat.Transport) { close(opened) })
	session.OnClose(func(e axochat.CloseEvent) { closed <- e })

	if err := session.Connect(srv.URL()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	select {
	case <-opened:
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for open")
	}

	if err := srv.CloseClient(1008, "banned"); err != nil {
		t.Fatalf("server close failed: %v", err)
	}

	select {
	case e := <-closed:
		if e.Code != 1008 {
			t.Errorf("close code = %d, want 1008", e.Code)
		}
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for close event")
	}

	if session.Connected() {
		t.Error("Connected() = true after server close")
	}
	if err := session.SendMessage("too late"); err == nil {
		t.Error("SendMessage() after close succeeded, want error")
	}
}
