package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/logger"
	"github.com/vytor/ankistore/internal/models"
	"github.com/vytor/ankistore/internal/repository"
)

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = "id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data"

func (r *cardRepository) Insert(ctx context.Context, card *models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting card: nid=%d did=%d ord=%d", card.NoteID, card.DeckID, card.Ord)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO cards (nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, card.NoteID, card.DeckID, card.Ord, card.Mod, card.USN, card.Type, card.Queue, card.Due,
		card.Ivl, card.Factor, card.Reps, card.Lapses, card.Left, card.ODue, card.ODid, card.Flags, card.Data)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get card id: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *cardRepository) Get(ctx context.Context, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	row := r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("card", id)
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	return card, nil
}

func (r *cardRepository) SelectByIDs(ctx context.Context, ids []int64) ([]*models.Card, error) {
	query, args, err := sqlBuilder.
		Select(cardColumns).
		From("cards").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.selectCards(ctx, query, args...)
}

func (r *cardRepository) SelectByNote(ctx context.Context, noteID int64) ([]*models.Card, error) {
	return r.selectCards(ctx, `SELECT `+cardColumns+` FROM cards WHERE nid = ? ORDER BY ord`, noteID)
}

func (r *cardRepository) SelectByDeck(ctx context.Context, deckID int64) ([]*models.Card, error) {
	return r.selectCards(ctx, `SELECT `+cardColumns+` FROM cards WHERE did = ? ORDER BY id`, deckID)
}

func (r *cardRepository) selectCards(ctx context.Context, query string, args ...any) ([]*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (r *cardRepository) UpdateDeck(ctx context.Context, cardIDs []int64, deckID int64) (int64, error) {
	return r.bulkUpdate(ctx, cardIDs, squirrel.Eq{"did": deckID})
}

func (r *cardRepository) UpdateQueue(ctx context.Context, cardIDs []int64, queue models.CardQueue) (int64, error) {
	return r.bulkUpdate(ctx, cardIDs, squirrel.Eq{"queue": queue})
}

func (r *cardRepository) RestoreQueueFromType(ctx context.Context, cardIDs []int64) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	// queue must be restored per row from each card's own type column.
	query, args, err := sqlBuilder.
		Update("cards").
		Set("queue", squirrel.Expr("type")).
		Set("mod", time.Now().Unix()).
		Where(squirrel.Eq{"id": cardIDs}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to restore card queues: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *cardRepository) bulkUpdate(ctx context.Context, cardIDs []int64, set squirrel.Eq) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("bulk updating %d cards: %v", len(cardIDs), set)

	builder := sqlBuilder.Update("cards").Set("mod", time.Now().Unix())
	for col, v := range set {
		builder = builder.Set(col, v)
	}
	query, args, err := builder.Where(squirrel.Eq{"id": cardIDs}).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to bulk update cards: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *cardRepository) SetNextReview(ctx context.Context, id int64, typ models.CardType, queue models.CardQueue, due int64) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("setting next review: id=%d type=%d queue=%d due=%d", id, typ, queue, due)

	res, err := r.db.ExecContext(ctx, `
UPDATE cards SET type = ?, queue = ?, due = ?, mod = ? WHERE id = ?
`, typ, queue, due, time.Now().Unix(), id)
	if err != nil {
		log.Error("failed to set next review: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NewNotFoundError("card", id)
	}
	return nil
}

func (r *cardRepository) SetStat(ctx context.Context, id int64, reps, lapses int, entry models.RevlogEntry) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("setting card stat: id=%d reps=%d lapses=%d", id, reps, lapses)

	if entry.TimeMS > models.MaxReviewTimeMS {
		entry.TimeMS = models.MaxReviewTimeMS
	}

	// Counter update and log append must land together or not at all.
	return tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `
UPDATE cards SET reps = ?, lapses = ?, mod = ? WHERE id = ?
`, reps, lapses, time.Now().Unix(), id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.NewNotFoundError("card", id)
		}

		_, err = t.ExecContext(ctx, `
INSERT INTO revlog (cid, usn, ease, ivl, lastIvl, factor, time, type)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, id, entry.USN, entry.Ease, entry.Ivl, entry.LastIvl, entry.Factor, entry.TimeMS, entry.Type)
		return err
	})
}

func (r *cardRepository) DeleteByDeck(ctx context.Context, deckID int64) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	var ids []int64
	err := tx(ctx, r.db, func(t *sql.Tx) error {
		rows, err := t.QueryContext(ctx, `SELECT id FROM cards WHERE did = ?`, deckID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, id := range ids {
			if _, err := t.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
				return err
			}
			if _, err := t.ExecContext(ctx, `INSERT INTO graves (usn, oid, type) VALUES (?, ?, ?)`,
				-1, id, models.GraveCard); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to delete deck cards: %v", err)
		return nil, err
	}
	log.Debug("deleted %d cards from deck %d", len(ids), deckID)
	return ids, nil
}

func scanCard(row rowScanner) (*models.Card, error) {
	var c models.Card
	if err := row.Scan(&c.ID, &c.NoteID, &c.DeckID, &c.Ord, &c.Mod, &c.USN, &c.Type, &c.Queue,
		&c.Due, &c.Ivl, &c.Factor, &c.Reps, &c.Lapses, &c.Left, &c.ODue, &c.ODid, &c.Flags, &c.Data); err != nil {
		return nil, err
	}
	return &c, nil
}
