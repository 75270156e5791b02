package network

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/automoto/animlib/shared/messages"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

const syncQueueSize = 64

// Client manages a WebSocket connection to the relay.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state        ClientState
	lastError    error
	networkID    esync.NetworkId
	serverName   string
	tickRate     int
	conn         *websocket.Conn
	resyncNeeded bool
	resendNeeded bool

	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins

	syncCh chan messages.AbilitySync
	leftCh chan messages.EntityLeft
}

func NewClient() *Client {
	return &Client{
		state:      StateDisconnected,
		snapshotCh: make(chan esync.WorldSnapshot, 1),
		syncCh:     make(chan messages.AbilitySync, syncQueueSize),
		leftCh:     make(chan messages.EntityLeft, 8),
	}
}

// Connect dials the relay in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address, version, playerName string, mods []string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to relay")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		err := c.SendMessage(messages.JoinRequest{
			Version:    version,
			PlayerName: playerName,
			Mods:       mods,
		})
		if err != nil {
			c.setError(fmt.Errorf("failed to send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		log.Printf("[client] join accepted: networkID=%d server=%s tickRate=%d",
			msg.NetworkID, msg.ServerName, msg.TickRate)
		c.mu.Lock()
		c.networkID = msg.NetworkID
		c.serverName = msg.ServerName
		c.tickRate = msg.TickRate
		c.state = StateJoinedGame
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		log.Printf("[client] join rejected: %s", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- snapshot
	})

	router.On(func(_ *router.NetworkClient, msg messages.AbilitySync) {
		c.pushSync(msg)
	})

	router.On(func(_ *router.NetworkClient, _ messages.AbilityResend) {
		c.requestResend()
	})

	router.On(func(_ *router.NetworkClient, msg messages.EntityLeft) {
		select {
		case c.leftCh <- msg:
		default:
		}
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

// pushSync queues a received delta. A delta dropped on overflow would
// leave mirrors stale, so the next TakeResyncNeeded reports true.
func (c *Client) pushSync(msg messages.AbilitySync) {
	select {
	case c.syncCh <- msg:
	default:
		log.Printf("[client] ability sync queue full, dropping delta for %d", msg.NetworkID)
		c.mu.Lock()
		c.resyncNeeded = true
		c.mu.Unlock()
	}
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) NetworkID() esync.NetworkId {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.networkID
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// Joined reports whether the join handshake completed.
func (c *Client) Joined() bool {
	return c.State() == StateJoinedGame
}

// TakeResyncNeeded reports and clears the dropped-delta flag.
func (c *Client) TakeResyncNeeded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.resyncNeeded
	c.resyncNeeded = false
	return r
}

func (c *Client) requestResend() {
	log.Printf("[client] relay rejected our ability delta, resending in full")
	c.mu.Lock()
	c.resendNeeded = true
	c.mu.Unlock()
}

// TakeResendNeeded reports and clears the flag set when the relay asks
// for a full delta of our own entity.
func (c *Client) TakeResendNeeded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.resendNeeded
	c.resendNeeded = false
	return r
}

// LatestSnapshot returns the most recent WorldSnapshot, or nil. Non-blocking.
func (c *Client) LatestSnapshot() *esync.WorldSnapshot {
	select {
	case snap := <-c.snapshotCh:
		return &snap
	default:
		return nil
	}
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// DrainAbilitySyncs returns all pending ability deltas in arrival order, non-blocking.
func (c *Client) DrainAbilitySyncs() []messages.AbilitySync {
	return drainChan(c.syncCh)
}

// DrainLeft returns all pending entity removals, non-blocking.
func (c *Client) DrainLeft() []messages.EntityLeft {
	return drainChan(c.leftCh)
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
