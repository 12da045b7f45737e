package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// profileColumns maps externally visible billing field names onto columns.
var profileColumns = map[string]string{
	"billing_first_name": "first_name",
	"billing_last_name":  "last_name",
	"billing_phone":      "phone",
	"billing_address_1":  "address_1",
	"billing_city":       "city",
	"billing_email":      "email",
}

// GetProfileField returns a single stored billing field for a user, or an
// empty string when the user or field is unknown.
func (r *PostgresRepository) GetProfileField(ctx context.Context, userID, field string) (string, error) {
	column, ok := profileColumns[field]
	if !ok {
		return "", fmt.Errorf("unknown profile field: %s", field)
	}
	q := fmt.Sprintf(`SELECT COALESCE(%s, '') FROM profiles WHERE user_id = $1 LIMIT 1;`, column)
	var value string
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get profile field %s: %w", field, err)
	}
	return value, nil
}

// UpsertProfile stores or updates billing fields for a user.
func (r *PostgresRepository) UpsertProfile(ctx context.Context, p Profile) error {
	const q = `
INSERT INTO profiles (user_id, first_name, last_name, phone, address_1, city, email, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (user_id) DO UPDATE SET
    first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    phone = EXCLUDED.phone,
    address_1 = EXCLUDED.address_1,
    city = EXCLUDED.city,
    email = EXCLUDED.email,
    updated_at = NOW();
`
	_, err := r.pool.Exec(ctx, q, p.UserID, p.FirstName, p.LastName, p.Phone, p.Address1, p.City, p.Email)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}
