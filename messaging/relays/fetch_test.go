package relays

import (
	"net"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentListener accepts connections and never speaks, like a relay whose
// websocket handshake stalls.
func silentListener(t *testing.T) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var conns []net.Conn
	mu := &deadlock.Mutex{}
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		listener.Close()
		mu.Lock()
		for _, conn := range conns {
			conn.Close()
		}
		mu.Unlock()
	})
	return "ws://" + listener.Addr().String()
}

func TestFetchResolvesAgainstSilentRelay(t *testing.T) {
	pool := NewPool([]string{silentListener(t)}, 0)
	window := time.Millisecond * 500
	start := time.Now()
	_, found := pool.FetchOne(nostr.Filter{Kinds: []int{1}}, window)
	assert.False(t, found)
	assert.Less(t, time.Since(start), time.Second*5)
}

func TestFetchAllResolvesAgainstSilentRelay(t *testing.T) {
	pool := NewPool([]string{silentListener(t), silentListener(t)}, 0)
	start := time.Now()
	events := pool.FetchAll(nostr.Filters{{Kinds: []int{1}}}, time.Millisecond*500)
	assert.Empty(t, events)
	assert.Less(t, time.Since(start), time.Second*5)
}
