package slackbot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/view"
	"github.com/slack-go/slack"
)

type apiCall struct {
	method string
	form   map[string]string
}

func fakeSlack(t *testing.T) (*Messenger, func() []apiCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []apiCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		call := apiCall{method: strings.TrimPrefix(r.URL.Path, "/"), form: map[string]string{}}
		for key := range r.Form {
			call.form[key] = r.Form.Get(key)
		}
		mu.Lock()
		calls = append(calls, call)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch call.method {
		case "auth.test":
			w.Write([]byte(`{"ok":true,"team":"Acme","user":"openpoll"}`))
		case "chat.postEphemeral":
			w.Write([]byte(`{"ok":true,"message_ts":"1700000000.000200"}`))
		case "chat.delete":
			w.Write([]byte(`{"ok":false,"error":"message_not_found"}`))
		default:
			w.Write([]byte(`{"ok":true,"channel":"C1","ts":"1700000000.000100","text":""}`))
		}
	}))
	t.Cleanup(srv.Close)

	client := slack.New("xoxb-test", slack.OptionAPIURL(srv.URL+"/"))
	return NewMessenger(client), func() []apiCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]apiCall(nil), calls...)
	}
}

func TestMessenger(t *testing.T) {
	ctx := context.Background()
	m, calls := fakeSlack(t)

	if err := m.Check(ctx); err != nil {
		t.Fatalf("Check: %v", err)
	}

	poll := domain.NewPoll("Lunch?", []string{"Pizza", "Sushi"}, domain.Settings{}, "U1")
	msg := view.NewRenderer(view.DefaultFooter).Render(poll, domain.NewVoteTable(poll), domain.State{})

	ts, err := m.PostMessage(ctx, "C1", msg)
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if ts != "1700000000.000100" {
		t.Errorf("ts = %q", ts)
	}
	if err = m.UpdateMessage(ctx, "C1", ts, msg); err != nil {
		t.Fatalf("UpdateMessage: %v", err)
	}
	if err = m.PostEphemeral(ctx, "C1", "U2", "Only the poll creator can do that"); err != nil {
		t.Fatalf("PostEphemeral: %v", err)
	}
	if err = m.DeleteMessage(ctx, "C1", ts); err == nil {
		t.Error("DeleteMessage should surface the api error")
	}

	got := calls()
	wantMethods := []string{"auth.test", "chat.postMessage", "chat.update", "chat.postEphemeral", "chat.delete"}
	if len(got) != len(wantMethods) {
		t.Fatalf("calls = %d, want %d", len(got), len(wantMethods))
	}
	for i, method := range wantMethods {
		if got[i].method != method {
			t.Errorf("call %d = %s, want %s", i, got[i].method, method)
		}
	}

	post := got[1].form
	if post["channel"] != "C1" {
		t.Errorf("channel = %q", post["channel"])
	}
	if !strings.Contains(post["blocks"], view.OptionBlockID(1)) {
		t.Errorf("blocks do not contain option 1: %s", post["blocks"])
	}
	if got[2].form["ts"] != "1700000000.000100" {
		t.Errorf("update ts = %q", got[2].form["ts"])
	}
	if got[3].form["user"] != "U2" {
		t.Errorf("ephemeral user = %q", got[3].form["user"])
	}
}
