package store

import (
	"log"
	"sync"
)

const (
	CollectionPosts    = "posts"
	CollectionComments = "comments"

	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Change - одно изменение в коллекции документов
type Change struct {
	Collection string `json:"collection"`
	PostID     int64  `json:"post_id"`
	Action     string `json:"action"`
}

// Subscription - живая подписка на изменения. Cancel можно вызывать
// сколько угодно раз, реальное освобождение произойдет один раз.
type Subscription struct {
	C    chan Change
	hub  *ChangeHub
	once sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.C)
	})
}

// ChangeHub рассылает изменения коллекций всем активным подпискам
type ChangeHub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewChangeHub() *ChangeHub {
	return &ChangeHub{
		subs: make(map[*Subscription]struct{}),
	}
}

// Subscribe регистрирует новую подписку на все изменения хаба
func (h *ChangeHub) Subscribe() *Subscription {
	sub := &Subscription{
		C:   make(chan Change, 64),
		hub: h,
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Publish доставляет изменение всем подписчикам в порядке публикации.
// Медленный подписчик с переполненным буфером событие теряет.
func (h *ChangeHub) Publish(change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.C <- change:
		default:
			log.Printf("change hub: subscriber buffer full, dropping %s/%s", change.Collection, change.Action)
		}
	}
}

func (h *ChangeHub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
}

// Hub - глобальный хаб изменений контента
var Hub = NewChangeHub()
