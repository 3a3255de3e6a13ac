package websocket

import (
	"net/http"
	"time"

	"news-cms/config"
	"news-cms/pkg/jwt"
	"news-cms/pkg/logger"
	"news-cms/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// Handler 升级为WebSocket连接；需放在认证中间件之后
func (h *Hub) Handler(cfg config.WebSocketConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := jwt.GetActor(c)
		if !ok {
			response.Unauthorized(c, "未登录")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("WebSocket升级失败", zap.Error(err))
			return
		}

		client := &Client{
			UserID:       actor.UserID,
			SessionToken: jwt.GetSessionToken(c),
			Conn:         conn,
			Send:         make(chan []byte, 64),
		}
		h.AddClient(client)
		defer func() {
			h.RemoveClient(client)
			_ = conn.Close()
		}()

		go writePump(client, cfg.PingInterval)

		// 读循环只用于心跳，超时未收到任何数据则断开
		_ = conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		}
	}
}

// writePump 发送队列中的消息并定时 ping
// Send 被关闭（连接被替换或会话失效）时发送关闭帧并关闭连接，读循环随之退出
func writePump(client *Client, pingInterval time.Duration) {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = client.Conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session ended"), time.Now().Add(time.Second))
				_ = client.Conn.Close()
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
