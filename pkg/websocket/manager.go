package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client 一个用户的WebSocket连接
type Client struct {
	UserID       uint
	SessionToken string // 建立连接时使用的会话，会话失效后连接被断开
	Conn         *websocket.Conn
	Send         chan []byte
}

// Hub 管理在线用户连接，用于推送分享通知
// 单会话策略下每个用户只保留最新的连接
type Hub struct {
	clients map[uint]*Client
	lock    sync.RWMutex
}

// NewHub 创建连接管理器
func NewHub() *Hub {
	return &Hub{clients: make(map[uint]*Client)}
}

// AddClient 注册连接，替换该用户已有的连接
func (h *Hub) AddClient(client *Client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if old, ok := h.clients[client.UserID]; ok && old != client {
		close(old.Send)
	}
	h.clients[client.UserID] = client
}

// RemoveClient 注销连接；只有仍是当前连接时才移除
func (h *Hub) RemoveClient(client *Client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if current, ok := h.clients[client.UserID]; ok && current == client {
		close(current.Send)
		delete(h.clients, client.UserID)
	}
}

// DisconnectSession 断开使用指定会话建立的连接，返回是否有连接被断开
func (h *Hub) DisconnectSession(userID uint, sessionToken string) bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	current, ok := h.clients[userID]
	if !ok || current.SessionToken != sessionToken {
		return false
	}
	close(current.Send)
	delete(h.clients, userID)
	return true
}

// DisconnectUser 断开用户的连接
func (h *Hub) DisconnectUser(userID uint) bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	current, ok := h.clients[userID]
	if !ok {
		return false
	}
	close(current.Send)
	delete(h.clients, userID)
	return true
}

// SendToUser 推送消息；用户不在线或发送队列已满时返回 false
func (h *Hub) SendToUser(userID uint, msg []byte) bool {
	h.lock.RLock()
	defer h.lock.RUnlock()
	client, ok := h.clients[userID]
	if !ok {
		return false
	}
	select {
	case client.Send <- msg:
		return true
	default:
		return false
	}
}

// IsOnline 判断用户是否在线
func (h *Hub) IsOnline(userID uint) bool {
	h.lock.RLock()
	defer h.lock.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// OnlineCount 在线连接数
func (h *Hub) OnlineCount() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}
