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

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new NoteRepository implementation
func NewNoteRepository(db *sql.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

const noteColumns = "id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data"

func (r *noteRepository) Insert(ctx context.Context, note *models.Note) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("inserting note: mid=%d fields=%d", note.ModelID, len(note.Fields))

	res, err := r.db.ExecContext(ctx, `
INSERT INTO notes (guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, note.GUID, note.ModelID, note.Mod, note.USN, models.JoinTags(note.Tags),
		models.JoinFields(note.Fields), note.SortField, note.Checksum, note.Flags, note.Data)
	if err != nil {
		log.Error("failed to insert note: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get note id: %v", err)
		return 0, err
	}
	log.Debug("note inserted: id=%d", id)
	return id, nil
}

func (r *noteRepository) Get(ctx context.Context, id int64) (*models.Note, error) {
	note, err := r.GetOrNone(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, errors.NewNotFoundError("note", id)
	}
	return note, nil
}

func (r *noteRepository) GetOrNone(ctx context.Context, id int64) (*models.Note, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")

	row := r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	note, err := scanNote(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get note: %v", err)
		return nil, err
	}
	return note, nil
}

func (r *noteRepository) AnyExists(ctx context.Context) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM notes LIMIT 1`).Scan(&one)
	if stderrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *noteRepository) SelectByIDs(ctx context.Context, ids []int64) ([]*models.Note, error) {
	query, args, err := sqlBuilder.
		Select(noteColumns).
		From("notes").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.selectNotes(ctx, query, args...)
}

func (r *noteRepository) SelectAll(ctx context.Context) ([]*models.Note, error) {
	return r.selectNotes(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY id`)
}

func (r *noteRepository) selectNotes(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query notes: %v", err)
		return nil, err
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			log.Error("failed to scan note row: %v", err)
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *noteRepository) Update(ctx context.Context, note *models.Note) error {
	return r.update(ctx, r.db, note)
}

func (r *noteRepository) UpdateMany(ctx context.Context, notes []*models.Note) error {
	return tx(ctx, r.db, func(t *sql.Tx) error {
		for _, note := range notes {
			if err := r.update(ctx, t, note); err != nil {
				return err
			}
		}
		return nil
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *noteRepository) update(ctx context.Context, ex execer, note *models.Note) error {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("updating note: id=%d", note.ID)

	note.RefreshSort()
	_, err := ex.ExecContext(ctx, `
UPDATE notes
SET mod = ?, usn = ?, tags = ?, flds = ?, sfld = ?, csum = ?
WHERE id = ?
`, time.Now().Unix(), note.USN, models.JoinTags(note.Tags),
		models.JoinFields(note.Fields), note.SortField, note.Checksum, note.ID)
	if err != nil {
		log.Error("failed to update note: %v", err)
	}
	return err
}

func (r *noteRepository) UpdateTags(ctx context.Context, id int64, tags []string) error {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("updating note tags: id=%d tags=%v", id, tags)

	_, err := r.db.ExecContext(ctx, `
UPDATE notes SET tags = ?, mod = ? WHERE id = ?
`, models.JoinTags(tags), time.Now().Unix(), id)
	if err != nil {
		log.Error("failed to update note tags: %v", err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	var (
		n          models.Note
		tags, flds string
	)
	if err := row.Scan(&n.ID, &n.GUID, &n.ModelID, &n.Mod, &n.USN, &tags, &flds,
		&n.SortField, &n.Checksum, &n.Flags, &n.Data); err != nil {
		return nil, err
	}
	n.Tags = models.SplitTags(tags)
	n.Fields = models.SplitFields(flds)
	return &n, nil
}
