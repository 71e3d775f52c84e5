package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/ident"
)

// Vote is a vote row in one of the three vote tables.
type Vote struct {
	Category edge.Category
	Subject  string
	Object   string
	Amount   float64
}

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("row not found")

// voteTable maps a vote category to its table name. Table names are
// never interpolated from user input, only from this whitelist.
func voteTable(c edge.Category) (string, error) {
	switch c {
	case edge.CategoryVoteBeacon:
		return "vote_beacon", nil
	case edge.CategoryVoteComment:
		return "vote_comment", nil
	case edge.CategoryVoteUser:
		return "vote_user", nil
	default:
		return "", fmt.Errorf("category %q is not a vote category", c)
	}
}

// SetVote inserts or fully replaces the vote for (subject, object) in
// the category's table. An existing row routes as an update —
// delete(before) then add(after) at the engine, never a weight patch.
//
// The row write and the graph mutations share one transaction: if the
// adapter fails, the vote does not land.
func (s *Store) SetVote(ctx context.Context, category edge.Category, subject, object string, amount float64) error {
	if err := s.requireRouter(); err != nil {
		return err
	}
	table, err := voteTable(category)
	if err != nil {
		return err
	}
	subject, object, err = normalizePair(subject, object)
	if err != nil {
		return fmt.Errorf("set vote: %w", err)
	}

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("set vote: %w", err)
	}
	defer rollback()

	var before sql.NullFloat64
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT amount FROM %s WHERE subject = ? AND object = ?", table),
		subject, object,
	).Scan(&before)
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (subject, object, amount) VALUES (?, ?, ?)", table),
			subject, object, amount,
		); err != nil {
			return fmt.Errorf("set vote: insert: %w", err)
		}
		err = s.rt.Route(ctx, edge.Event{
			Category:  category,
			Kind:      edge.Insert,
			VoteAfter: &edge.VoteRow{Subject: subject, Object: object, Amount: amount},
		})
		if err != nil {
			return fmt.Errorf("set vote: %w", err)
		}

	case err != nil:
		return fmt.Errorf("set vote: lookup: %w", err)

	default:
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET amount = ?, updated_at = CURRENT_TIMESTAMP WHERE subject = ? AND object = ?", table),
			amount, subject, object,
		); err != nil {
			return fmt.Errorf("set vote: update: %w", err)
		}
		err = s.rt.Route(ctx, edge.Event{
			Category:   category,
			Kind:       edge.Update,
			VoteBefore: &edge.VoteRow{Subject: subject, Object: object, Amount: before.Float64},
			VoteAfter:  &edge.VoteRow{Subject: subject, Object: object, Amount: amount},
		})
		if err != nil {
			return fmt.Errorf("set vote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set vote: commit: %w", err)
	}
	return nil
}

// DeleteVote removes the vote row and its edge. Returns ErrNotFound if
// no such vote exists.
func (s *Store) DeleteVote(ctx context.Context, category edge.Category, subject, object string) error {
	if err := s.requireRouter(); err != nil {
		return err
	}
	table, err := voteTable(category)
	if err != nil {
		return err
	}
	subject, object, err = normalizePair(subject, object)
	if err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}
	defer rollback()

	var amount float64
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT amount FROM %s WHERE subject = ? AND object = ?", table),
		subject, object,
	).Scan(&amount)
	if err == sql.ErrNoRows {
		return fmt.Errorf("delete vote %s (%s -> %s): %w", category, subject, object, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete vote: lookup: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE subject = ? AND object = ?", table),
		subject, object,
	); err != nil {
		return fmt.Errorf("delete vote: delete: %w", err)
	}

	err = s.rt.Route(ctx, edge.Event{
		Category:   category,
		Kind:       edge.Delete,
		VoteBefore: &edge.VoteRow{Subject: subject, Object: object, Amount: amount},
	})
	if err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete vote: commit: %w", err)
	}
	return nil
}

// GetVote looks up a single vote row. Returns ErrNotFound when absent.
func (s *Store) GetVote(ctx context.Context, category edge.Category, subject, object string) (Vote, error) {
	table, err := voteTable(category)
	if err != nil {
		return Vote{}, err
	}
	subject, object, err = normalizePair(subject, object)
	if err != nil {
		return Vote{}, fmt.Errorf("get vote: %w", err)
	}

	var amount float64
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT amount FROM %s WHERE subject = ? AND object = ?", table),
		subject, object,
	).Scan(&amount)
	if err == sql.ErrNoRows {
		return Vote{}, ErrNotFound
	}
	if err != nil {
		return Vote{}, fmt.Errorf("get vote: %w", err)
	}
	return Vote{Category: category, Subject: subject, Object: object, Amount: amount}, nil
}

// deleteVotesWhereTx removes every vote row matching column = id in one
// vote table, routing a delete event per row. Used by the identity and
// content cascades so each dependent row fires its own removal event.
func (s *Store) deleteVotesWhereTx(ctx context.Context, tx *sql.Tx, category edge.Category, column, id string) error {
	table, err := voteTable(category)
	if err != nil {
		return err
	}
	if column != "subject" && column != "object" {
		return fmt.Errorf("invalid vote column %q", column)
	}

	rows, err := tx.QueryContext(ctx,
		fmt.Sprintf("SELECT subject, object, amount FROM %s WHERE %s = ?", table, column),
		id,
	)
	if err != nil {
		return fmt.Errorf("scan %s by %s: %w", table, column, err)
	}
	votes, err := collectVotes(rows, category)
	if err != nil {
		return err
	}

	for _, v := range votes {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE subject = ? AND object = ?", table),
			v.Subject, v.Object,
		); err != nil {
			return fmt.Errorf("cascade delete %s: %w", table, err)
		}
		err = s.rt.Route(ctx, edge.Event{
			Category:   category,
			Kind:       edge.Delete,
			VoteBefore: &edge.VoteRow{Subject: v.Subject, Object: v.Object, Amount: v.Amount},
		})
		if err != nil {
			return fmt.Errorf("cascade delete %s: %w", table, err)
		}
	}
	return nil
}

// collectVotes drains a (subject, object, amount) result set.
func collectVotes(rows *sql.Rows, category edge.Category) ([]Vote, error) {
	defer rows.Close()

	var out []Vote
	for rows.Next() {
		v := Vote{Category: category}
		if err := rows.Scan(&v.Subject, &v.Object, &v.Amount); err != nil {
			return nil, fmt.Errorf("scan vote row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vote rows: %w", err)
	}
	return out, nil
}

// normalizePair canonicalizes and validates a (subject, object) pair at
// the store boundary, so relational keys and engine edge slots agree
// byte-for-byte.
func normalizePair(subject, object string) (string, string, error) {
	subject = ident.Normalize(subject)
	object = ident.Normalize(object)
	if err := ident.Validate(subject); err != nil {
		return "", "", fmt.Errorf("subject: %w", err)
	}
	if err := ident.Validate(object); err != nil {
		return "", "", fmt.Errorf("object: %w", err)
	}
	return subject, object, nil
}
