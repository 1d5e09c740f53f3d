package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/auracore/internal/game/status"
)

// DefinitionRepository хранит определения эффектов в PostgreSQL.
// Модификаторы лежат отдельной таблицей, порядок задаётся position.
type DefinitionRepository struct {
	db *pgxpool.Pool
}

// NewDefinitionRepository создаёт новый DefinitionRepository.
func NewDefinitionRepository(db *pgxpool.Pool) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

// LoadAll загружает все определения в порядке кодов типов.
func (r *DefinitionRepository) LoadAll(ctx context.Context) ([]status.Definition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT effect_type, stacking, max_stacks, duration, refresh_mode, max_duration,
		       shield, shield_policy, tick_interval, disables_collision, removed_on_cast, blocked_by
		FROM effect_definitions
		ORDER BY effect_type
	`)
	if err != nil {
		return nil, fmt.Errorf("querying effect definitions: %w", err)
	}

	var (
		defs  []status.Definition
		index = make(map[status.EffectType]int)
	)
	for rows.Next() {
		var (
			typ                          int16
			stacking, refresh, shieldPol string
			blocked                      []int16
			def                          status.Definition
		)
		if err := rows.Scan(&typ, &stacking, &def.MaxStacks, &def.Duration, &refresh, &def.MaxDuration,
			&def.Shield, &shieldPol, &def.TickInterval, &def.DisablesCollision, &def.RemovedOnCast, &blocked,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning effect definition: %w", err)
		}

		def.Type = status.EffectType(typ)
		if def.Stacking, err = status.ParseStackingPolicy(stacking); err != nil {
			rows.Close()
			return nil, fmt.Errorf("effect %d: %w", typ, err)
		}
		if def.RefreshMode, err = status.ParseRefreshMode(refresh); err != nil {
			rows.Close()
			return nil, fmt.Errorf("effect %d: %w", typ, err)
		}
		if def.ShieldPolicy, err = status.ParseShieldPolicy(shieldPol); err != nil {
			rows.Close()
			return nil, fmt.Errorf("effect %d: %w", typ, err)
		}
		for _, b := range blocked {
			def.BlockedBy = append(def.BlockedBy, status.EffectType(b))
		}

		index[def.Type] = len(defs)
		defs = append(defs, def)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating effect definitions: %w", err)
	}

	if err := r.loadModifiers(ctx, defs, index); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *DefinitionRepository) loadModifiers(ctx context.Context, defs []status.Definition, index map[status.EffectType]int) error {
	rows, err := r.db.Query(ctx, `
		SELECT effect_type, property, value, mode
		FROM effect_modifiers
		ORDER BY effect_type, position
	`)
	if err != nil {
		return fmt.Errorf("querying effect modifiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			typ            int16
			property, mode string
			m              status.Modifier
		)
		if err := rows.Scan(&typ, &property, &m.Value, &mode); err != nil {
			return fmt.Errorf("scanning effect modifier: %w", err)
		}
		i, ok := index[status.EffectType(typ)]
		if !ok {
			continue
		}
		if m.Property, err = status.ParseProperty(property); err != nil {
			return fmt.Errorf("effect %d: %w", typ, err)
		}
		if m.Mode, err = status.ParseApplicationMode(mode); err != nil {
			return fmt.Errorf("effect %d: %w", typ, err)
		}
		defs[i].Modifiers = append(defs[i].Modifiers, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating effect modifiers: %w", err)
	}
	return nil
}

// Save сохраняет определение (upsert) и полностью перезаписывает его модификаторы
// в одной транзакции.
func (r *DefinitionRepository) Save(ctx context.Context, def status.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := saveDefinition(ctx, tx, def); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing effect %s: %w", def.Type, err)
	}
	return nil
}

// SaveAll сохраняет набор определений одной транзакцией.
func (r *DefinitionRepository) SaveAll(ctx context.Context, defs []status.Definition) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return err
		}
		if err := saveDefinition(ctx, tx, def); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing %d effect definitions: %w", len(defs), err)
	}
	slog.Info("saved effect definitions", "count", len(defs))
	return nil
}

func saveDefinition(ctx context.Context, tx pgx.Tx, def status.Definition) error {
	blocked := make([]int16, len(def.BlockedBy))
	for i, b := range def.BlockedBy {
		blocked[i] = int16(b)
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO effect_definitions (
			effect_type, label, stacking, max_stacks, duration, refresh_mode, max_duration,
			shield, shield_policy, tick_interval, disables_collision, removed_on_cast, blocked_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (effect_type) DO UPDATE SET
			label = EXCLUDED.label,
			stacking = EXCLUDED.stacking,
			max_stacks = EXCLUDED.max_stacks,
			duration = EXCLUDED.duration,
			refresh_mode = EXCLUDED.refresh_mode,
			max_duration = EXCLUDED.max_duration,
			shield = EXCLUDED.shield,
			shield_policy = EXCLUDED.shield_policy,
			tick_interval = EXCLUDED.tick_interval,
			disables_collision = EXCLUDED.disables_collision,
			removed_on_cast = EXCLUDED.removed_on_cast,
			blocked_by = EXCLUDED.blocked_by,
			updated_at = now()
	`,
		int16(def.Type), def.Type.String(), def.Stacking.String(), def.MaxStacks, def.Duration,
		def.RefreshMode.String(), def.MaxDuration, def.Shield, def.ShieldPolicy.String(),
		def.TickInterval, def.DisablesCollision, def.RemovedOnCast, blocked,
	)
	if err != nil {
		return fmt.Errorf("upserting effect %s: %w", def.Type, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM effect_modifiers WHERE effect_type = $1`, int16(def.Type)); err != nil {
		return fmt.Errorf("deleting modifiers of %s: %w", def.Type, err)
	}

	if len(def.Modifiers) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, m := range def.Modifiers {
		batch.Queue(
			`INSERT INTO effect_modifiers (effect_type, position, property, value, mode) VALUES ($1, $2, $3, $4, $5)`,
			int16(def.Type), int16(i), m.Property.String(), m.Value, m.Mode.String(),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting modifiers of %s: %w", def.Type, err)
	}
	return nil
}

// Delete удаляет определение; модификаторы удаляются каскадом.
// Возвращает false, если определения не было.
func (r *DefinitionRepository) Delete(ctx context.Context, t status.EffectType) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM effect_definitions WHERE effect_type = $1`, int16(t))
	if err != nil {
		return false, fmt.Errorf("deleting effect %s: %w", t, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Count возвращает количество сохранённых определений.
func (r *DefinitionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM effect_definitions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting effect definitions: %w", err)
	}
	return n, nil
}
