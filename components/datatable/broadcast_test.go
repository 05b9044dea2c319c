package datatable

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastStreamFiltersBySession(t *testing.T) {
	t.Parallel()
	hook := NewBroadcastHook()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		for ctx.Err() == nil {
			_ = hook.TableUpdated(ctx, TableEvent{Table: "users", Session: "s2", Reason: "export"})
			_ = hook.TableUpdated(ctx, TableEvent{Table: "users", Session: "s1", Reason: "rows.replaced"})
			time.Sleep(10 * time.Millisecond)
		}
	}()

	var got []TableEvent
	stop := errors.New("stop")
	err := hook.Stream(ctx, "s1", func(evt TableEvent) error {
		got = append(got, evt)
		if len(got) == 3 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	for _, evt := range got {
		assert.Equal(t, "s1", evt.Session)
		assert.Equal(t, "rows.replaced", evt.Reason)
	}
}

func TestBroadcastStreamStopsOnContext(t *testing.T) {
	t.Parallel()
	hook := NewBroadcastHook()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := hook.Stream(ctx, "", func(TableEvent) error { return nil })
	assert.NoError(t, err)
}

func TestBroadcastWebSocket(t *testing.T) {
	t.Parallel()
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	go func() {
		for time.Now().Before(deadline) {
			_ = hook.TableUpdated(context.Background(), TableEvent{Table: "users", Session: "s1", Reason: "rows.deleted", Rows: 2})
			time.Sleep(20 * time.Millisecond)
		}
	}()

	var evt TableEvent
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, "users", evt.Table)
	assert.Equal(t, "rows.deleted", evt.Reason)
	assert.Equal(t, 2, evt.Rows)
}

func TestBroadcastSSE(t *testing.T) {
	t.Parallel()
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"?session=s9", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	go func() {
		for ctx.Err() == nil {
			_ = hook.TableUpdated(context.Background(), TableEvent{Table: "campaigns", Session: "s9", Reason: "export"})
			time.Sleep(20 * time.Millisecond)
		}
	}()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "), line)
	var evt TableEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt))
	assert.Equal(t, "campaigns", evt.Table)
}
