package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/ident"
)

// User is an identity row. Identities are the endpoints other rows
// reference; they carry no edges of their own.
type User struct {
	ID        string
	CreatedAt string
}

// CreateUser inserts an identity row.
func (s *Store) CreateUser(ctx context.Context, id string) error {
	if err := s.requireRouter(); err != nil {
		return err
	}
	id = ident.Normalize(id)
	if err := ident.Validate(id); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	defer rollback()

	if _, err := tx.ExecContext(ctx, "INSERT INTO users (id) VALUES (?)", id); err != nil {
		return fmt.Errorf("create user %s: %w", id, err)
	}

	// Identity events map to no edge ops; routed anyway so the event
	// stream covers every source table.
	if err := s.rt.Route(ctx, edge.Event{Category: edge.CategoryUser, Kind: edge.Insert, IdentityID: id}); err != nil {
		return fmt.Errorf("create user %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create user: commit: %w", err)
	}
	return nil
}

// GetUser looks up an identity row. Returns ErrNotFound when absent.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	id = ident.Normalize(id)
	var u User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, created_at FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// DeleteUser removes an identity and cascades to every dependent row.
//
// The cascade runs in Go rather than through ON DELETE CASCADE so each
// dependent row fires its own removal event through the router:
//
//  1. beacons authored by the user (which cascade their own comments
//     and votes),
//  2. remaining comments authored by the user,
//  3. votes cast by the user in all three categories,
//  4. votes on the user's identity.
//
// Everything shares one transaction; an adapter failure anywhere rolls
// the whole cascade back.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.requireRouter(); err != nil {
		return err
	}
	id = ident.Normalize(id)
	if err := ident.Validate(id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	defer rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("delete user: lookup: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("delete user %s: %w", id, ErrNotFound)
	}

	// Beacons authored by the user.
	beaconIDs, err := collectIDs(tx.QueryContext(ctx, "SELECT id FROM beacons WHERE author_id = ?", id))
	if err != nil {
		return fmt.Errorf("delete user: scan beacons: %w", err)
	}
	for _, bid := range beaconIDs {
		if err := s.deleteBeaconTx(ctx, tx, bid); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
	}

	// Comments authored by the user under surviving beacons.
	commentIDs, err := collectIDs(tx.QueryContext(ctx, "SELECT id FROM comments WHERE author_id = ?", id))
	if err != nil {
		return fmt.Errorf("delete user: scan comments: %w", err)
	}
	for _, cid := range commentIDs {
		if err := s.deleteCommentTx(ctx, tx, cid); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
	}

	// Votes cast by the user.
	for _, cat := range edge.VoteCategories() {
		if err := s.deleteVotesWhereTx(ctx, tx, cat, "subject", id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
	}

	// Votes on the user's identity.
	if err := s.deleteVotesWhereTx(ctx, tx, edge.CategoryVoteUser, "object", id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := s.rt.Route(ctx, edge.Event{Category: edge.CategoryUser, Kind: edge.Delete, IdentityID: id}); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete user: commit: %w", err)
	}

	slog.Info("user deleted",
		"user", id,
		"beacons", len(beaconIDs),
		"comments", len(commentIDs),
	)
	return nil
}

// collectIDs drains a single-column id result set.
func collectIDs(rows *sql.Rows, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return out, nil
}
