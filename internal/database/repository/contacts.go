package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// ContactRepo handles directory contacts.
type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Upsert inserts or refreshes a contact, matching on extension when it is
// set so a directory re-sync updates rows in place. The extension index is
// partial (blank extensions are not unique), so the conflict target must
// repeat its WHERE clause and blank-extension contacts insert plainly.
func (r *ContactRepo) Upsert(ctx context.Context, c Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Extension == "" {
		_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts(id, display_name, extension, gsm, sip_address, created_at, updated_at)
		VALUES(?, ?, '', ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
		`, c.ID, c.DisplayName, c.GSM, c.SIPAddress)
		return err
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO contacts(id, display_name, extension, gsm, sip_address, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(extension) WHERE extension != '' DO UPDATE SET
	 display_name = excluded.display_name,
	 gsm = excluded.gsm,
	 sip_address = excluded.sip_address,
	 updated_at = CURRENT_TIMESTAMP;
	`, c.ID, c.DisplayName, c.Extension, c.GSM, c.SIPAddress)
	return err
}

func (r *ContactRepo) List(ctx context.Context) ([]Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, display_name, extension, gsm, sip_address, created_at, updated_at
	FROM contacts ORDER BY display_name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.Extension, &c.GSM, &c.SIPAddress, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ContactRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	return err
}
