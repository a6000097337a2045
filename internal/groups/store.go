package groups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/homecast/internal/home"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store is a SQLite-backed group repository with an in-memory cache.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Slices returned by Groups must not be modified.
type Store struct {
	db     *sql.DB
	logger Logger

	mu    sync.RWMutex
	cache []home.DeviceGroup
}

// NewStore creates a Store on an open, migrated database and loads the cache.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{db: db, logger: noopLogger{}}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Groups returns the cached groups ordered by sort order then name.
func (s *Store) Groups() []home.DeviceGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache
}

// Refresh reloads the cache from the database.
func (s *Store) Refresh(ctx context.Context) error {
	groups, err := s.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cache = groups
	s.mu.Unlock()
	return nil
}

// Create inserts a group with its members. Empty ID and slug are generated.
func (s *Store) Create(ctx context.Context, g *home.DeviceGroup) error {
	if err := prepare(g); err != nil {
		return err
	}
	if g.ID == "" {
		g.ID = newID()
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO device_groups (id, name, slug, icon, room_id, sort_order)
			VALUES (?, ?, ?, ?, ?, ?)`,
			g.ID, g.Name, g.Slug, nullable(g.Icon), nullable(g.RoomID), g.SortOrder,
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return ErrExists
			}
			return fmt.Errorf("inserting device group: %w", err)
		}
		return replaceMembers(ctx, tx, g.ID, g.Members)
	})
	if err != nil {
		return err
	}

	s.logger.Info("device group created", "group_id", g.ID, "name", g.Name, "members", len(g.Members))
	return s.Refresh(ctx)
}

// Get returns the group with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*home.DeviceGroup, error) {
	groups, err := s.query(ctx, "WHERE g.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ErrNotFound
	}
	return &groups[0], nil
}

// List returns every group from the database, bypassing the cache.
func (s *Store) List(ctx context.Context) ([]home.DeviceGroup, error) {
	return s.query(ctx, "")
}

// Update replaces a group's fields and members.
func (s *Store) Update(ctx context.Context, g *home.DeviceGroup) error {
	if err := prepare(g); err != nil {
		return err
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE device_groups SET
				name = ?, slug = ?, icon = ?, room_id = ?, sort_order = ?,
				updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
			WHERE id = ?`,
			g.Name, g.Slug, nullable(g.Icon), nullable(g.RoomID), g.SortOrder, g.ID,
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return ErrExists
			}
			return fmt.Errorf("updating device group: %w", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		} else if n == 0 {
			return ErrNotFound
		}
		return replaceMembers(ctx, tx, g.ID, g.Members)
	})
	if err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Delete removes a group and its members.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM device_groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device group: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	s.logger.Info("device group deleted", "group_id", id)
	return s.Refresh(ctx)
}

// SetMembers replaces a group's member list, keeping the given order.
func (s *Store) SetMembers(ctx context.Context, groupID string, serviceIDs []string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM device_groups WHERE id = ?", groupID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("checking device group: %w", err)
		}
		return replaceMembers(ctx, tx, groupID, serviceIDs)
	})
	if err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Seed creates each group whose slug is not stored yet and returns the
// number created. Existing groups are left untouched.
func (s *Store) Seed(ctx context.Context, seeds []home.DeviceGroup) (int, error) {
	existing := make(map[string]bool)
	for _, g := range s.Groups() {
		existing[g.Slug] = true
	}

	created := 0
	for i := range seeds {
		g := seeds[i]
		if g.Slug == "" {
			g.Slug = Slugify(g.Name)
		}
		if existing[g.Slug] {
			continue
		}
		if err := s.Create(ctx, &g); err != nil {
			return created, fmt.Errorf("seeding group %q: %w", g.Name, err)
		}
		existing[g.Slug] = true
		created++
	}
	return created, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// query loads groups matching where, with members, in display order.
func (s *Store) query(ctx context.Context, where string, args ...any) ([]home.DeviceGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.slug, g.icon, g.room_id, g.sort_order, g.created_at, g.updated_at
		FROM device_groups g `+where+`
		ORDER BY g.sort_order, g.name`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying device groups: %w", err)
	}
	defer rows.Close()

	var groups []home.DeviceGroup
	index := make(map[string]int)
	for rows.Next() {
		var (
			g                    home.DeviceGroup
			icon, roomID         sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug, &icon, &roomID, &g.SortOrder, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning device group: %w", err)
		}
		g.Icon = fromNullable(icon)
		g.RoomID = fromNullable(roomID)
		g.CreatedAt, _ = time.Parse(timestampLayout, createdAt) //nolint:errcheck // Format is controlled
		g.UpdatedAt, _ = time.Parse(timestampLayout, updatedAt) //nolint:errcheck // Format is controlled
		g.Members = []string{}
		index[g.ID] = len(groups)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device groups: %w", err)
	}
	rows.Close() // release the connection before the member query
	if len(groups) == 0 {
		return groups, nil
	}

	members, err := s.db.QueryContext(ctx,
		`SELECT group_id, service_id FROM device_group_members ORDER BY group_id, sort_order`)
	if err != nil {
		return nil, fmt.Errorf("querying group members: %w", err)
	}
	defer members.Close()

	for members.Next() {
		var groupID, serviceID string
		if err := members.Scan(&groupID, &serviceID); err != nil {
			return nil, fmt.Errorf("scanning group member: %w", err)
		}
		if i, ok := index[groupID]; ok {
			groups[i].Members = append(groups[i].Members, serviceID)
		}
	}
	if err := members.Err(); err != nil {
		return nil, fmt.Errorf("iterating group members: %w", err)
	}
	return groups, nil
}

func replaceMembers(ctx context.Context, tx *sql.Tx, groupID string, serviceIDs []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM device_group_members WHERE group_id = ?", groupID); err != nil {
		return fmt.Errorf("clearing group members: %w", err)
	}
	seen := make(map[string]bool, len(serviceIDs))
	order := 0
	for _, id := range serviceIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO device_group_members (group_id, service_id, sort_order) VALUES (?, ?, ?)",
			groupID, id, order,
		); err != nil {
			return fmt.Errorf("inserting group member: %w", err)
		}
		order++
	}
	return nil
}

func prepare(g *home.DeviceGroup) error {
	if g == nil {
		return fmt.Errorf("%w: group is required", ErrInvalid)
	}
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if g.Slug == "" {
		g.Slug = Slugify(g.Name)
	}
	if g.Slug == "" {
		return fmt.Errorf("%w: name %q yields an empty slug", ErrInvalid, g.Name)
	}
	return nil
}

func nullable(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
