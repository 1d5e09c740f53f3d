package model

import (
	"log/slog"
	"sync"
)

// Character: живое существо с пулом здоровья.
// Реализует Life: IsAlive, Hit, Heal и хук смерти.
type Character struct {
	*WorldObject // embedded

	class     string
	level     int32
	currentHP int
	maxHP     int

	deathOnce sync.Once // protects die() from double execution
	onDeath   []func()
}

// NewCharacter создаёт персонажа с полным здоровьем.
func NewCharacter(objectID uint32, name, class string, level int32, maxHP int) *Character {
	if maxHP < 1 {
		maxHP = 1
	}
	return &Character{
		WorldObject: NewWorldObject(objectID, name),
		class:       class,
		level:       level,
		currentHP:   maxHP,
		maxHP:       maxHP,
	}
}

// Class возвращает класс персонажа (ключ таблицы базовых статов).
func (c *Character) Class() string { return c.class }

// Level возвращает уровень персонажа.
func (c *Character) Level() int32 { return c.level }

// CurrentHP возвращает текущее HP.
func (c *Character) CurrentHP() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentHP
}

// MaxHP возвращает максимальное HP.
func (c *Character) MaxHP() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxHP
}

// IsAlive возвращает true пока HP > 0.
func (c *Character) IsAlive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentHP > 0
}

// IsDead возвращает !IsAlive().
func (c *Character) IsDead() bool {
	return !c.IsAlive()
}

// Hit наносит урон. Отрицательное значение логируется и игнорируется.
// Если HP падает до нуля, вызываются хуки смерти (один раз).
func (c *Character) Hit(damage int) {
	if damage < 0 {
		slog.Error("negative damage ignored", "objectID", c.ObjectID(), "damage", damage)
		return
	}

	c.mu.Lock()
	if c.currentHP <= 0 {
		c.mu.Unlock()
		return
	}
	c.currentHP -= damage
	died := c.currentHP <= 0
	if died {
		c.currentHP = 0
	}
	c.mu.Unlock()

	if died {
		c.die()
	}
}

// Heal восстанавливает HP (не выше максимума).
// Отрицательное значение логируется и игнорируется; мёртвых не лечит.
func (c *Character) Heal(amount int) {
	if amount < 0 {
		slog.Error("negative heal ignored", "objectID", c.ObjectID(), "heal", amount)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentHP <= 0 {
		return
	}
	c.currentHP = min(c.currentHP+amount, c.maxHP)
}

// OnDeath регистрирует хук, вызываемый один раз при смерти.
// Хуки вызываются без удержания мьютекса.
func (c *Character) OnDeath(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDeath = append(c.onDeath, fn)
}

func (c *Character) die() {
	c.deathOnce.Do(func() {
		c.mu.RLock()
		hooks := make([]func(), len(c.onDeath))
		copy(hooks, c.onDeath)
		c.mu.RUnlock()

		slog.Debug("character died", "objectID", c.ObjectID(), "name", c.Name())
		for _, fn := range hooks {
			fn()
		}
	})
}
