package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vision-assist/internal/domain/entity"
)

type fakeBotAPI struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bot","username":"assist_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.sent = append(f.sent, r.PostForm.Get("text"))
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBotAPI) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestNotifier(t *testing.T) (*TelegramNotifier, *fakeBotAPI) {
	t.Helper()
	fake := &fakeBotAPI{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	n, err := NewTelegramNotifierWithEndpoint("token", srv.URL+"/bot%s/%s", 42, srv.Client(), zap.NewNop().Sugar())
	require.NoError(t, err)
	return n, fake
}

func TestTelegramNotifier_SendsAlarming(t *testing.T) {
	n, fake := newTestNotifier(t)

	err := n.Notify(context.Background(), entity.DangerAnalysis{Level: "IMMEDIATE DANGER", Source: "open fire"})
	require.NoError(t, err)

	sent := fake.messages()
	require.Len(t, sent, 1)
	require.Contains(t, sent[0], "IMMEDIATE DANGER")
	require.Contains(t, sent[0], "open fire")
}

func TestTelegramNotifier_SkipsLowDanger(t *testing.T) {
	n, fake := newTestNotifier(t)

	err := n.Notify(context.Background(), entity.DangerAnalysis{Level: entity.LowDanger, Source: "NoDangerSources"})
	require.NoError(t, err)
	require.Empty(t, fake.messages())
}

func TestTelegramNotifier_RequiresChat(t *testing.T) {
	_, err := NewTelegramNotifierWithEndpoint("token", "http://127.0.0.1/bot%s/%s", 0, http.DefaultClient, zap.NewNop().Sugar())
	require.Error(t, err)
}
