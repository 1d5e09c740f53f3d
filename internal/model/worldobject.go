package model

import "sync"

// WorldObject: базовый класс для всех объектов симуляции.
// Хранит ObjectID, имя и флаг физической коллизии.
type WorldObject struct {
	objectID  uint32
	name      string
	collision bool

	mu sync.RWMutex
}

// NewWorldObject создаёт объект с включённой коллизией.
func NewWorldObject(objectID uint32, name string) *WorldObject {
	return &WorldObject{
		objectID:  objectID,
		name:      name,
		collision: true,
	}
}

// ObjectID возвращает уникальный ID объекта (immutable после создания).
func (w *WorldObject) ObjectID() uint32 {
	return w.objectID
}

// Name возвращает имя объекта.
func (w *WorldObject) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

// SetName устанавливает имя объекта.
func (w *WorldObject) SetName(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.name = name
}

// SetCollision включает или выключает физическое взаимодействие
// (используется эффектами контроля движения, например прыжком).
func (w *WorldObject) SetCollision(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.collision = enabled
}

// CollisionEnabled сообщает, участвует ли объект в физических столкновениях.
func (w *WorldObject) CollisionEnabled() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.collision
}
