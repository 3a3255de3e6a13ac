package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_SendToUser(t *testing.T) {
	h := NewHub()
	c := &Client{UserID: 1, Send: make(chan []byte, 1)}
	h.AddClient(c)

	assert.True(t, h.IsOnline(1))
	assert.True(t, h.SendToUser(1, []byte("hi")))
	assert.Equal(t, []byte("hi"), <-c.Send)

	assert.False(t, h.SendToUser(2, []byte("nobody")))

	// 队列已满
	assert.True(t, h.SendToUser(1, []byte("a")))
	assert.False(t, h.SendToUser(1, []byte("b")))
}

func TestHub_ReplaceAndRemove(t *testing.T) {
	h := NewHub()
	first := &Client{UserID: 1, Send: make(chan []byte, 1)}
	second := &Client{UserID: 1, Send: make(chan []byte, 1)}

	h.AddClient(first)
	h.AddClient(second)

	_, open := <-first.Send
	assert.False(t, open, "replaced connection should be closed")
	assert.Equal(t, 1, h.OnlineCount())

	// 旧连接的注销不影响新连接
	h.RemoveClient(first)
	assert.True(t, h.IsOnline(1))

	h.RemoveClient(second)
	assert.False(t, h.IsOnline(1))
	assert.Equal(t, 0, h.OnlineCount())
}

func TestHub_DisconnectSession(t *testing.T) {
	h := NewHub()
	c := &Client{UserID: 1, SessionToken: "current", Send: make(chan []byte, 1)}
	h.AddClient(c)

	// 其他会话失效不影响当前连接
	assert.False(t, h.DisconnectSession(1, "stale"))
	assert.True(t, h.IsOnline(1))

	assert.True(t, h.DisconnectSession(1, "current"))
	_, open := <-c.Send
	assert.False(t, open)
	assert.False(t, h.IsOnline(1))
	assert.False(t, h.SendToUser(1, []byte("after logout")))

	// 连接随后自行注销不会重复关闭
	h.RemoveClient(c)
	assert.False(t, h.DisconnectSession(1, "current"))
}

func TestHub_DisconnectUser(t *testing.T) {
	h := NewHub()
	c := &Client{UserID: 7, SessionToken: "s", Send: make(chan []byte, 1)}
	h.AddClient(c)

	assert.True(t, h.DisconnectUser(7))
	_, open := <-c.Send
	assert.False(t, open)
	assert.False(t, h.DisconnectUser(7))
	assert.Equal(t, 0, h.OnlineCount())
}
