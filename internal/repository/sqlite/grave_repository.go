package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/ankistore/internal/logger"
	"github.com/vytor/ankistore/internal/models"
	"github.com/vytor/ankistore/internal/repository"
)

type graveRepository struct {
	db *sql.DB
}

// NewGraveRepository creates a new GraveRepository implementation
func NewGraveRepository(db *sql.DB) repository.GraveRepository {
	return &graveRepository{db: db}
}

func (r *graveRepository) Insert(ctx context.Context, grave models.Grave) error {
	log := logger.FromContext(ctx).WithPrefix("grave_repo")
	log.Debug("inserting tombstone: oid=%d type=%d", grave.OID, grave.Type)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO graves (usn, oid, type) VALUES (?, ?, ?)
`, grave.USN, grave.OID, grave.Type)
	if err != nil {
		log.Error("failed to insert tombstone: %v", err)
	}
	return err
}

func (r *graveRepository) SelectByType(ctx context.Context, typ models.GraveType) ([]models.Grave, error) {
	log := logger.FromContext(ctx).WithPrefix("grave_repo")

	rows, err := r.db.QueryContext(ctx, `SELECT usn, oid, type FROM graves WHERE type = ? ORDER BY oid`, typ)
	if err != nil {
		log.Error("failed to query tombstones: %v", err)
		return nil, err
	}
	defer rows.Close()

	var graves []models.Grave
	for rows.Next() {
		var g models.Grave
		if err := rows.Scan(&g.USN, &g.OID, &g.Type); err != nil {
			log.Error("failed to scan tombstone row: %v", err)
			return nil, err
		}
		graves = append(graves, g)
	}
	return graves, rows.Err()
}
