package store

import (
	"context"
	"fmt"

	"github.com/reputel/repgraph/internal/edge"
)

// Content is a scanned authored-content row reduced to the columns the
// graph mapping uses.
type Content struct {
	Category edge.Category
	ID       string
	AuthorID string
}

// contentTable maps a content category to its table name.
func contentTable(c edge.Category) (string, error) {
	switch c {
	case edge.CategoryBeacon:
		return "beacons", nil
	case edge.CategoryComment:
		return "comments", nil
	default:
		return "", fmt.Errorf("category %q is not a content category", c)
	}
}

// ScanVotes streams every vote row of one category to fn in batches of
// at most batchSize rows, ordered by primary key so a rescan visits
// rows in a stable order. fn errors stop the scan.
//
// Scans run outside any write transaction: the rebuild coordinator
// reads committed state only.
func (s *Store) ScanVotes(ctx context.Context, category edge.Category, batchSize int, fn func([]Vote) error) error {
	table, err := voteTable(category)
	if err != nil {
		return err
	}
	if batchSize <= 0 {
		return fmt.Errorf("scan %s: batch size must be positive", table)
	}

	lastSubject, lastObject := "", ""
	for {
		rows, err := s.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT subject, object, amount FROM %s
				WHERE (subject, object) > (?, ?)
				ORDER BY subject, object LIMIT ?`, table),
			lastSubject, lastObject, batchSize,
		)
		if err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		batch, err := collectVotes(rows, category)
		if err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		if len(batch) == 0 {
			return nil
		}

		if err := fn(batch); err != nil {
			return err
		}

		last := batch[len(batch)-1]
		lastSubject, lastObject = last.Subject, last.Object
		if len(batch) < batchSize {
			return nil
		}
	}
}

// ScanContent streams every content row of one subtype to fn in batches
// of at most batchSize rows, ordered by id.
func (s *Store) ScanContent(ctx context.Context, category edge.Category, batchSize int, fn func([]Content) error) error {
	table, err := contentTable(category)
	if err != nil {
		return err
	}
	if batchSize <= 0 {
		return fmt.Errorf("scan %s: batch size must be positive", table)
	}

	lastID := ""
	for {
		rows, err := s.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT id, author_id FROM %s
				WHERE id > ? ORDER BY id LIMIT ?`, table),
			lastID, batchSize,
		)
		if err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}

		var batch []Content
		for rows.Next() {
			c := Content{Category: category}
			if err := rows.Scan(&c.ID, &c.AuthorID); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s: row: %w", table, err)
			}
			batch = append(batch, c)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("scan %s: iterate: %w", table, err)
		}
		rows.Close()

		if len(batch) == 0 {
			return nil
		}

		if err := fn(batch); err != nil {
			return err
		}

		lastID = batch[len(batch)-1].ID
		if len(batch) < batchSize {
			return nil
		}
	}
}

// Counts holds per-table row counts for the status drift report.
// EdgesExpected is the edge count a consistent graph would hold:
// one edge per vote row, two per content row.
type Counts struct {
	Users    int
	Beacons  int
	Comments int
	Votes    map[edge.Category]int
}

// EdgesExpected returns the edge count implied by the live source rows.
func (c Counts) EdgesExpected() int {
	n := 2 * (c.Beacons + c.Comments)
	for _, v := range c.Votes {
		n += v
	}
	return n
}

// CountRows counts live source rows across every table.
func (s *Store) CountRows(ctx context.Context) (Counts, error) {
	c := Counts{Votes: make(map[edge.Category]int)}

	count := func(table string) (int, error) {
		var n int
		// Table names come from the fixed schema, never from input.
		err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", table, err)
		}
		return n, nil
	}

	var err error
	if c.Users, err = count("users"); err != nil {
		return Counts{}, err
	}
	if c.Beacons, err = count("beacons"); err != nil {
		return Counts{}, err
	}
	if c.Comments, err = count("comments"); err != nil {
		return Counts{}, err
	}
	for _, cat := range edge.VoteCategories() {
		table, err := voteTable(cat)
		if err != nil {
			return Counts{}, err
		}
		n, err := count(table)
		if err != nil {
			return Counts{}, err
		}
		c.Votes[cat] = n
	}
	return c, nil
}
