package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failing struct{ err error }

func (f failing) Notify(context.Context, Message) error { return f.err }

type recorder struct{ got []Message }

func (r *recorder) Notify(_ context.Context, msg Message) error {
	r.got = append(r.got, msg)
	return nil
}

func TestHubNotifier(t *testing.T) {
	hub := sse.NewHub(1)
	events, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	err := NewHub(hub).Notify(context.Background(), Message{Kind: KindCorrectionCreated, RecipientID: "user-1", Title: "t"})
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, KindCorrectionCreated, ev.Name)
	msg, ok := ev.Data.(Message)
	require.True(t, ok)
	assert.False(t, msg.SentAt.IsZero())
}

func TestMulti(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")

	err := Multi{rec, nil, failing{boom}, Nop{}}.Notify(context.Background(), Message{Kind: KindCorrectionApproved})
	assert.ErrorIs(t, err, boom)
	require.Len(t, rec.got, 1)
	assert.Equal(t, KindCorrectionApproved, rec.got[0].Kind)

	assert.NoError(t, Multi{rec}.Notify(context.Background(), Message{}))
}

func TestSlackNotifier(t *testing.T) {
	var gotPath, gotChannel, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = r.ParseForm()
		gotChannel = r.FormValue("channel")
		gotText = r.FormValue("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer srv.Close()

	n := NewSlack("xoxb-test", SlackOption{ChannelID: "C123", APIURL: srv.URL + "/"})
	err := n.Notify(context.Background(), Message{Title: "Correction pending", Body: "Siti asks to change 10 Mar"})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(gotPath, "chat.postMessage"))
	assert.Equal(t, "C123", gotChannel)
	assert.Contains(t, gotText, "Correction pending")
}

func TestSlackNotifier_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	n := NewSlack("xoxb-test", SlackOption{ChannelID: "C404", APIURL: srv.URL + "/"})
	err := n.Notify(context.Background(), Message{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}
