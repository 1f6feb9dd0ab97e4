package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/logger"
	"github.com/vytor/ankistore/internal/models"
	"github.com/vytor/ankistore/internal/repository"
)

type colRepository struct {
	db *sql.DB
}

// NewColRepository creates a new ColRepository implementation
func NewColRepository(db *sql.DB) repository.ColRepository {
	return &colRepository{db: db}
}

func (r *colRepository) Get(ctx context.Context) (*models.Col, error) {
	col, err := r.GetOrNone(ctx)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, errors.NewNotFoundError("collection metadata", 1)
	}
	return col, nil
}

func (r *colRepository) GetOrNone(ctx context.Context) (*models.Col, error) {
	log := logger.FromContext(ctx).WithPrefix("col_repo")

	var (
		col                               models.Col
		conf, modelsCol, decks, dconf, ts string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags
FROM col
LIMIT 1
`).Scan(&col.ID, &col.Crt, &col.Mod, &col.Scm, &col.Ver, &col.Dty, &col.USN, &col.Ls,
		&conf, &modelsCol, &decks, &dconf, &ts)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get collection metadata: %v", err)
		return nil, err
	}

	col.Conf = make(map[string]any)
	col.Models = make(map[string]*models.Model)
	col.Decks = make(map[string]*models.Deck)
	col.Dconf = make(map[string]*models.DeckConfig)
	col.Tags = make(map[string]int)
	for _, pair := range []struct {
		raw string
		out any
	}{
		{conf, &col.Conf},
		{modelsCol, &col.Models},
		{decks, &col.Decks},
		{dconf, &col.Dconf},
		{ts, &col.Tags},
	} {
		if err := unmarshalColumn(pair.raw, pair.out); err != nil {
			log.Error("failed to decode metadata column: %v", err)
			return nil, err
		}
	}
	return &col, nil
}

func (r *colRepository) Create(ctx context.Context, col *models.Col) error {
	log := logger.FromContext(ctx).WithPrefix("col_repo")
	log.Debug("creating collection metadata: models=%d decks=%d dconf=%d",
		len(col.Models), len(col.Decks), len(col.Dconf))

	cols, err := encodeMetaColumns(col)
	if err != nil {
		log.Error("failed to encode metadata columns: %v", err)
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, col.ID, col.Crt, col.Mod, col.Scm, col.Ver, col.Dty, col.USN, col.Ls,
		cols[0], cols[1], cols[2], cols[3], cols[4])
	if err != nil {
		log.Error("failed to create collection metadata: %v", err)
	}
	return err
}

func (r *colRepository) Save(ctx context.Context, col *models.Col) error {
	log := logger.FromContext(ctx).WithPrefix("col_repo")
	log.Debug("saving collection metadata: models=%d decks=%d dconf=%d",
		len(col.Models), len(col.Decks), len(col.Dconf))

	cols, err := encodeMetaColumns(col)
	if err != nil {
		log.Error("failed to encode metadata columns: %v", err)
		return err
	}

	_, err = r.db.ExecContext(ctx, `
UPDATE col
SET crt = ?, mod = ?, scm = ?, ver = ?, dty = ?, usn = ?, ls = ?,
    conf = ?, models = ?, decks = ?, dconf = ?, tags = ?
WHERE id = ?
`, col.Crt, col.Mod, col.Scm, col.Ver, col.Dty, col.USN, col.Ls,
		cols[0], cols[1], cols[2], cols[3], cols[4], col.ID)
	if err != nil {
		log.Error("failed to save collection metadata: %v", err)
	}
	return err
}

func encodeMetaColumns(col *models.Col) ([5]string, error) {
	var out [5]string
	for i, v := range []any{col.Conf, col.Models, col.Decks, col.Dconf, col.Tags} {
		s, err := marshalColumn(v)
		if err != nil {
			return out, err
		}
		out[i] = s
	}
	return out, nil
}
