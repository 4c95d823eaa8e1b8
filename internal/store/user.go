package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/transitlk/notifier/internal/model"
)

// UserStore is a read-only view of the identity system's user directory.
// Create exists for seeding and tests only.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByCriteria returns users matching every provided criteria field by
// equality. Empty fields impose no constraint.
func (s *UserStore) FindByCriteria(c model.TargetCriteria) ([]model.User, error) {
	query := `SELECT user_id, user_type, province, city, route, email FROM users`

	var conds []string
	var args []any
	if c.UserType != "" {
		conds = append(conds, "user_type = ?")
		args = append(args, c.UserType)
	}
	if c.Province != "" {
		conds = append(conds, "province = ?")
		args = append(args, c.Province)
	}
	if c.City != "" {
		conds = append(conds, "city = ?")
		args = append(args, c.City)
	}
	if c.Route != "" {
		conds = append(conds, "route = ?")
		args = append(args, c.Route)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.UserID, &u.UserType, &u.Province, &u.City, &u.Route, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create upserts a user record.
func (s *UserStore) Create(u model.User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (user_id, user_type, province, city, route, email)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET user_type = excluded.user_type,
		     province = excluded.province, city = excluded.city,
		     route = excluded.route, email = excluded.email`,
		u.UserID, u.UserType, u.Province, u.City, u.Route, u.Email,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
