// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/sekine/internal/model"
)

// ErrNotFound wraps sql.ErrNoRows for lookups by id, email or device.
var ErrNotFound = errors.New("not found")

// ErrDeviceTaken is returned when a device is already paired to another screen.
var ErrDeviceTaken = errors.New("device already paired to another screen")

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// screen functions
	ListScreens(ownerID int) ([]model.Screen, error)
	ListAnnounceableScreens() ([]model.Screen, error)
	GetScreenByID(id int) (model.Screen, error)
	GetScreenByDeviceID(deviceID string) (model.Screen, error)
	IsDevicePaired(deviceID string) (bool, error)
	CreateScreen(name string, location *string, createdBy int) (model.Screen, error)
	UpdateScreen(id int, name, location *string) error
	SetScreenCoordinates(id int, lat, lon float64, timezone *string) error
	PairScreen(id int, deviceID string) error
	DeleteScreen(id int) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
