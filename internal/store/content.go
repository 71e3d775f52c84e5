package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/ident"
)

// Beacon is an authored-content row of subtype beacon.
type Beacon struct {
	ID        string
	AuthorID  string
	Title     string
	CreatedAt string
}

// Comment is an authored-content row of subtype comment, attached to a
// beacon.
type Comment struct {
	ID        string
	AuthorID  string
	BeaconID  string
	Body      string
	CreatedAt string
}

// CreateBeacon inserts a beacon row and synthesizes its ownership edge
// pair, (id → author, 1) and (author → id, 10). The row ID comes from
// the store's generator. Returns the new ID.
func (s *Store) CreateBeacon(ctx context.Context, authorID, title string) (string, error) {
	if err := s.requireRouter(); err != nil {
		return "", err
	}
	authorID = ident.Normalize(authorID)
	if err := ident.Validate(authorID); err != nil {
		return "", fmt.Errorf("create beacon: author: %w", err)
	}
	id := s.gen.Generate()

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return "", fmt.Errorf("create beacon: %w", err)
	}
	defer rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO beacons (id, author_id, title) VALUES (?, ?, ?)",
		id, authorID, title,
	); err != nil {
		return "", fmt.Errorf("create beacon: insert: %w", err)
	}

	err = s.rt.Route(ctx, edge.Event{
		Category:     edge.CategoryBeacon,
		Kind:         edge.Insert,
		ContentAfter: &edge.ContentRow{ID: id, AuthorID: authorID},
	})
	if err != nil {
		return "", fmt.Errorf("create beacon: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("create beacon: commit: %w", err)
	}
	return id, nil
}

// GetBeacon looks up a beacon row. Returns ErrNotFound when absent.
func (s *Store) GetBeacon(ctx context.Context, id string) (Beacon, error) {
	id = ident.Normalize(id)
	var b Beacon
	err := s.db.QueryRowContext(ctx,
		"SELECT id, author_id, title, created_at FROM beacons WHERE id = ?", id,
	).Scan(&b.ID, &b.AuthorID, &b.Title, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return Beacon{}, ErrNotFound
	}
	if err != nil {
		return Beacon{}, fmt.Errorf("get beacon: %w", err)
	}
	return b, nil
}

// UpdateBeacon edits payload columns only. Ownership edges are
// immutable, so the routed update maps to no graph operations; it is
// routed anyway to keep the event stream total over source tables.
func (s *Store) UpdateBeacon(ctx context.Context, id, title string) error {
	if err := s.requireRouter(); err != nil {
		return err
	}
	id = ident.Normalize(id)

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("update beacon: %w", err)
	}
	defer rollback()

	var authorID string
	err = tx.QueryRowContext(ctx, "SELECT author_id FROM beacons WHERE id = ?", id).Scan(&authorID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("update beacon %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update beacon: lookup: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE beacons SET title = ? WHERE id = ?", title, id,
	); err != nil {
		return fmt.Errorf("update beacon: update: %w", err)
	}

	row := &edge.ContentRow{ID: id, AuthorID: authorID}
	err = s.rt.Route(ctx, edge.Event{
		Category:      edge.CategoryBeacon,
		Kind:          edge.Update,
		ContentBefore: row,
		ContentAfter:  row,
	})
	if err != nil {
		return fmt.Errorf("update beacon: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update beacon: commit: %w", err)
	}
	return nil
}

// DeleteBeacon removes a beacon, its comments, and all votes on any of
// them, firing one removal event per dependent row. Everything shares
// one transaction.
func (s *Store) DeleteBeacon(ctx context.Context, id string) error {
	if err := s.requireRouter(); err != nil {
		return err
	}
	id = ident.Normalize(id)

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("delete beacon: %w", err)
	}
	defer rollback()

	if err := s.deleteBeaconTx(ctx, tx, id); err != nil {
		return fmt.Errorf("delete beacon: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete beacon: commit: %w", err)
	}
	return nil
}

// deleteBeaconTx removes one beacon inside an open transaction:
// comments under it first (each cascading its own votes), then votes on
// the beacon, then the row and its ownership edge pair.
func (s *Store) deleteBeaconTx(ctx context.Context, tx *sql.Tx, id string) error {
	var authorID string
	err := tx.QueryRowContext(ctx, "SELECT author_id FROM beacons WHERE id = ?", id).Scan(&authorID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("beacon %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("beacon %s: lookup: %w", id, err)
	}

	commentIDs, err := collectIDs(tx.QueryContext(ctx, "SELECT id FROM comments WHERE beacon_id = ?", id))
	if err != nil {
		return fmt.Errorf("beacon %s: scan comments: %w", id, err)
	}
	for _, cid := range commentIDs {
		if err := s.deleteCommentTx(ctx, tx, cid); err != nil {
			return fmt.Errorf("beacon %s: %w", id, err)
		}
	}

	if err := s.deleteVotesWhereTx(ctx, tx, edge.CategoryVoteBeacon, "object", id); err != nil {
		return fmt.Errorf("beacon %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM beacons WHERE id = ?", id); err != nil {
		return fmt.Errorf("beacon %s: delete: %w", id, err)
	}

	err = s.rt.Route(ctx, edge.Event{
		Category:      edge.CategoryBeacon,
		Kind:          edge.Delete,
		ContentBefore: &edge.ContentRow{ID: id, AuthorID: authorID},
	})
	if err != nil {
		return fmt.Errorf("beacon %s: %w", id, err)
	}

	slog.Debug("beacon deleted", "beacon", id, "comments", len(commentIDs))
	return nil
}

// CreateComment inserts a comment row under a beacon and synthesizes
// its ownership edge pair, (id → author, 1) and (author → id, 1).
// Returns the new ID.
func (s *Store) CreateComment(ctx context.Context, authorID, beaconID, body string) (string, error) {
	if err := s.requireRouter(); err != nil {
		return "", err
	}
	authorID = ident.Normalize(authorID)
	if err := ident.Validate(authorID); err != nil {
		return "", fmt.Errorf("create comment: author: %w", err)
	}
	beaconID = ident.Normalize(beaconID)
	if err := ident.Validate(beaconID); err != nil {
		return "", fmt.Errorf("create comment: beacon: %w", err)
	}
	id := s.gen.Generate()

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return "", fmt.Errorf("create comment: %w", err)
	}
	defer rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO comments (id, author_id, beacon_id, body) VALUES (?, ?, ?, ?)",
		id, authorID, beaconID, body,
	); err != nil {
		return "", fmt.Errorf("create comment: insert: %w", err)
	}

	err = s.rt.Route(ctx, edge.Event{
		Category:     edge.CategoryComment,
		Kind:         edge.Insert,
		ContentAfter: &edge.ContentRow{ID: id, AuthorID: authorID},
	})
	if err != nil {
		return "", fmt.Errorf("create comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("create comment: commit: %w", err)
	}
	return id, nil
}

// GetComment looks up a comment row. Returns ErrNotFound when absent.
func (s *Store) GetComment(ctx context.Context, id string) (Comment, error) {
	id = ident.Normalize(id)
	var c Comment
	err := s.db.QueryRowContext(ctx,
		"SELECT id, author_id, beacon_id, body, created_at FROM comments WHERE id = ?", id,
	).Scan(&c.ID, &c.AuthorID, &c.BeaconID, &c.Body, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return Comment{}, ErrNotFound
	}
	if err != nil {
		return Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// UpdateComment edits payload columns only; no graph operations result.
func (s *Store) UpdateComment(ctx context.Context, id, body string) error {
	if err := s.requireRouter(); err != nil {
		return err
	}
	id = ident.Normalize(id)

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	defer rollback()

	var authorID string
	err = tx.QueryRowContext(ctx, "SELECT author_id FROM comments WHERE id = ?", id).Scan(&authorID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("update comment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update comment: lookup: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE comments SET body = ? WHERE id = ?", body, id,
	); err != nil {
		return fmt.Errorf("update comment: update: %w", err)
	}

	row := &edge.ContentRow{ID: id, AuthorID: authorID}
	err = s.rt.Route(ctx, edge.Event{
		Category:      edge.CategoryComment,
		Kind:          edge.Update,
		ContentBefore: row,
		ContentAfter:  row,
	})
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update comment: commit: %w", err)
	}
	return nil
}

// DeleteComment removes a comment and the votes on it, firing one
// removal event per dependent row.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	if err := s.requireRouter(); err != nil {
		return err
	}
	id = ident.Normalize(id)

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	defer rollback()

	if err := s.deleteCommentTx(ctx, tx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete comment: commit: %w", err)
	}
	return nil
}

// deleteCommentTx removes one comment inside an open transaction: votes
// on the comment first, then the row and its ownership edge pair.
func (s *Store) deleteCommentTx(ctx context.Context, tx *sql.Tx, id string) error {
	var authorID string
	err := tx.QueryRowContext(ctx, "SELECT author_id FROM comments WHERE id = ?", id).Scan(&authorID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("comment %s: lookup: %w", id, err)
	}

	if err := s.deleteVotesWhereTx(ctx, tx, edge.CategoryVoteComment, "object", id); err != nil {
		return fmt.Errorf("comment %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id); err != nil {
		return fmt.Errorf("comment %s: delete: %w", id, err)
	}

	err = s.rt.Route(ctx, edge.Event{
		Category:      edge.CategoryComment,
		Kind:          edge.Delete,
		ContentBefore: &edge.ContentRow{ID: id, AuthorID: authorID},
	})
	if err != nil {
		return fmt.Errorf("comment %s: %w", id, err)
	}
	return nil
}
