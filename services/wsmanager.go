package services

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WSConn оборачивает соединение мьютексом записи: gorilla/websocket
// допускает не больше одного писателя на соединение, а писать в него
// могут и подписка ленты, и broadcast событий, и уведомления
type WSConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *WSConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

type WSConnManager struct {
	mu    sync.RWMutex
	users map[int64][]*WSConn
}

func NewWSConnManager() *WSConnManager {
	return &WSConnManager{
		users: make(map[int64][]*WSConn),
	}
}

func (m *WSConnManager) Add(userID int64, conn *websocket.Conn) *WSConn {
	wsConn := &WSConn{conn: conn}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = append(m.users[userID], wsConn)
	return wsConn
}

func (m *WSConnManager) Remove(userID int64, conn *WSConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conns := m.users[userID]
	for i, c := range conns {
		if c == conn {
			m.users[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(m.users[userID]) == 0 {
		delete(m.users, userID)
	}
}

func (m *WSConnManager) Send(userID int64, message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, conn := range m.users[userID] {
		_ = conn.WriteMessage(websocket.TextMessage, message)
	}
}

// Broadcast рассылает сообщение всем подключенным пользователям.
// Лента у сообщества одна, поэтому события контента получают все.
func (m *WSConnManager) Broadcast(message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, conns := range m.users {
		for _, conn := range conns {
			_ = conn.WriteMessage(websocket.TextMessage, message)
		}
	}
}

var GlobalWSConnManager = NewWSConnManager()
