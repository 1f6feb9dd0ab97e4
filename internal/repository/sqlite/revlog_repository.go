package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/ankistore/internal/logger"
	"github.com/vytor/ankistore/internal/models"
	"github.com/vytor/ankistore/internal/repository"
)

type revlogRepository struct {
	db *sql.DB
}

// NewRevlogRepository creates a new RevlogRepository implementation
func NewRevlogRepository(db *sql.DB) repository.RevlogRepository {
	return &revlogRepository{db: db}
}

func (r *revlogRepository) Insert(ctx context.Context, entry models.RevlogEntry) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("revlog_repo")

	if entry.TimeMS > models.MaxReviewTimeMS {
		entry.TimeMS = models.MaxReviewTimeMS
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO revlog (cid, usn, ease, ivl, lastIvl, factor, time, type)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, entry.CardID, entry.USN, entry.Ease, entry.Ivl, entry.LastIvl, entry.Factor, entry.TimeMS, entry.Type)
	if err != nil {
		log.Error("failed to insert revlog entry: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *revlogRepository) SelectByCard(ctx context.Context, cardID int64) ([]models.RevlogEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("revlog_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, cid, usn, ease, ivl, lastIvl, factor, time, type
FROM revlog
WHERE cid = ?
ORDER BY id
`, cardID)
	if err != nil {
		log.Error("failed to query revlog: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.RevlogEntry
	for rows.Next() {
		var e models.RevlogEntry
		if err := rows.Scan(&e.ID, &e.CardID, &e.USN, &e.Ease, &e.Ivl, &e.LastIvl, &e.Factor, &e.TimeMS, &e.Type); err != nil {
			log.Error("failed to scan revlog row: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
