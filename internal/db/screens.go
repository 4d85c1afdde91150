package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/sekine/internal/model"
)

var errNoRows = sql.ErrNoRows

// unique_violation, raised by screens.device_id
const uniqueViolation = pq.ErrorCode("23505")

const screenColumns = `id, device_id, name, location, latitude, longitude, timezone, paired, created_by, created_at, updated_at`

func (s *pgStore) ListScreens(ownerID int) ([]model.Screen, error) {
	out := []model.Screen{}
	err := s.db.Select(&out, `SELECT `+screenColumns+` FROM screens WHERE created_by = $1 ORDER BY id;`, ownerID)
	if err != nil {
		log.Error().Err(err).Int("owner_id", ownerID).Msg("ListScreens failed")
		return nil, err
	}
	return out, nil
}

// ListAnnounceableScreens returns paired screens that know both their device
// and their location.
func (s *pgStore) ListAnnounceableScreens() ([]model.Screen, error) {
	out := []model.Screen{}
	err := s.db.Select(&out, `
	SELECT `+screenColumns+`
	  FROM screens
	 WHERE paired = TRUE
	   AND device_id IS NOT NULL
	   AND latitude IS NOT NULL
	   AND longitude IS NOT NULL
	 ORDER BY id;`)
	if err != nil {
		log.Error().Err(err).Msg("ListAnnounceableScreens failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) GetScreenByID(id int) (model.Screen, error) {
	var screen model.Screen
	err := s.db.Get(&screen, `SELECT `+screenColumns+` FROM screens WHERE id = $1;`, id)
	if err != nil {
		return model.Screen{}, notFound(err, "screen")
	}
	return screen, nil
}

func (s *pgStore) GetScreenByDeviceID(deviceID string) (model.Screen, error) {
	var screen model.Screen
	err := s.db.Get(&screen, `SELECT `+screenColumns+` FROM screens WHERE device_id = $1;`, deviceID)
	if err != nil {
		return model.Screen{}, notFound(err, "screen")
	}
	return screen, nil
}

func (s *pgStore) IsDevicePaired(deviceID string) (bool, error) {
	var paired bool
	err := s.db.Get(&paired, `SELECT paired FROM screens WHERE device_id = $1;`, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return paired, err
}

func (s *pgStore) CreateScreen(name string, location *string, createdBy int) (model.Screen, error) {
	var screen model.Screen
	q := `
	INSERT INTO screens (name, location, paired, created_by, created_at, updated_at)
	VALUES ($1, $2, false, $3, now(), now())
	RETURNING ` + screenColumns + `;`
	if err := s.db.Get(&screen, q, name, location, createdBy); err != nil {
		log.Error().Err(err).Msg("CreateScreen failed")
		return model.Screen{}, err
	}
	return screen, nil
}

func (s *pgStore) UpdateScreen(id int, name, location *string) error {
	_, err := s.db.Exec(`
	UPDATE screens
	   SET name = COALESCE($2, name),
	       location = COALESCE($3, location),
	       updated_at = now()
	 WHERE id = $1;`, id, name, location)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("UpdateScreen failed")
	}
	return err
}

func (s *pgStore) SetScreenCoordinates(id int, lat, lon float64, timezone *string) error {
	_, err := s.db.Exec(`
	UPDATE screens
	   SET latitude = $2,
	       longitude = $3,
	       timezone = COALESCE($4, timezone),
	       updated_at = now()
	 WHERE id = $1;`, id, lat, lon, timezone)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("SetScreenCoordinates failed")
	}
	return err
}

func (s *pgStore) PairScreen(id int, deviceID string) error {
	_, err := s.db.Exec(`
	UPDATE screens
	   SET device_id = $2,
	       paired = TRUE,
	       updated_at = now()
	 WHERE id = $1;`, id, deviceID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("pair screen %d: %w", id, ErrDeviceTaken)
	}
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Str("device_id", deviceID).Msg("PairScreen failed")
	}
	return err
}

func (s *pgStore) DeleteScreen(id int) error {
	_, err := s.db.Exec(`DELETE FROM screens WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("DeleteScreen failed")
	}
	return err
}
