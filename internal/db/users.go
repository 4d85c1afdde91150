package db

import (
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/sekine/internal/model"
)

const userColumns = `id, email, hashed_password, name, created_at, updated_at`

// inserts new user into table, returns new user ID.
func (s *pgStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	const q = `
	INSERT INTO users (email, hashed_password, name, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id;`
	var id int
	if err := s.db.QueryRow(q, email, hashedPassword, name).Scan(&id); err != nil {
		log.Error().Err(err).Str("email", email).Msg("CreateUser failed")
		return 0, err
	}
	return id, nil
}

func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	if err := s.db.Get(&u, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email); err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	var u model.User
	if err := s.db.Get(&u, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id); err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("GetUserByID failed")
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// updates a user's email and name, and bumps updated_at.
func (s *pgStore) UpdateUserProfile(id int, email string, name *string) error {
	res, err := s.db.Exec(`
	UPDATE users
	   SET email = $2, name = $3, updated_at = now()
	 WHERE id = $1;`, id, email, name)
	if err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("UpdateUserProfile failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(errNoRows, "user")
	}
	return nil
}
