package endpoints

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/sekine/internal/db"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api/admin/auth/packets"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/sekine/internal/model"
)

// AuthPublicModule mounts public auth endpoints (/auth/signup, /auth/login)
func AuthPublicModule(jwtSecret string, store db.Store) api.Module {
	ctl := newAccountManager(jwtSecret, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/auth/signup", ctl.userSignup)
		c.PUBLIC_POST("/auth/login", ctl.userLogin)
	})
}

// AuthSessionModule mounts private session/profile endpoints (JWT required)
func AuthSessionModule(jwtSecret string, store db.Store) api.Module {
	ctl := newAccountManager(jwtSecret, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/auth/current_profile", ctl.getCurrentProfile)
		c.PUT("/auth/current_profile", ctl.updateCurrentProfile)
	})
}

type AccountManager struct {
	jwtSecret string
	store     db.Store
}

func newAccountManager(secret string, store db.Store) *AccountManager {
	return &AccountManager{jwtSecret: secret, store: store}
}

func (a *AccountManager) emailTaken(email string) (bool, *api.APIError) {
	_, err := a.store.GetUserByEmail(email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrNotFound):
		return false, nil
	default:
		log.Error().Err(err).Msg("email lookup failed")
		return false, api.Internal("could not check email")
	}
}

// POST /api/admin/auth/signup
func (a *AccountManager) userSignup(ctx *gin.Context) (any, *api.APIError) {
	var request packets.SignupRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	taken, apiErr := a.emailTaken(request.Email)
	if apiErr != nil {
		return nil, apiErr
	}
	if taken {
		log.Warn().Str("email", request.Email).Msg("signup email already registered")
		return nil, api.Conflict("email already registered")
	}

	hashed, err := middleware.HashPassword(request.Password)
	if err != nil {
		return nil, api.Internal("could not hash password")
	}

	userID, err := a.store.CreateUser(request.Email, hashed, request.Name)
	if err != nil {
		return nil, api.Internal("could not create user")
	}

	token, err := middleware.GenerateJWT(userID, a.jwtSecret)
	if err != nil {
		return nil, api.Internal("could not generate token")
	}
	return packets.TokenResponse{Token: token}, nil
}

// POST /api/admin/auth/login
func (a *AccountManager) userLogin(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	found, err := a.store.GetUserByEmail(request.Email)
	if err != nil || !middleware.CheckPassword(found.HashedPassword, request.Password) {
		return nil, api.Unauthorized(middleware.ErrInvalidCredentials.Error())
	}

	token, err := middleware.GenerateJWT(found.ID, a.jwtSecret)
	if err != nil {
		return nil, api.Internal("could not generate token")
	}
	return packets.TokenResponse{Token: token}, nil
}

func profile(u *model.User) packets.ProfileResponse {
	return packets.ProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// GET /api/admin/auth/current_profile
func (a *AccountManager) getCurrentProfile(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return profile(user), nil
}

// PUT /api/admin/auth/current_profile
func (a *AccountManager) updateCurrentProfile(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.UpdateCurrentProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	if request.Email != user.Email {
		taken, apiErr := a.emailTaken(request.Email)
		if apiErr != nil {
			return nil, apiErr
		}
		if taken {
			return nil, api.Conflict("email already in use")
		}
	}

	if err := a.store.UpdateUserProfile(user.ID, request.Email, request.Name); err != nil {
		return nil, api.Internal("could not update profile")
	}

	updated, err := a.store.GetUserByID(user.ID)
	if err != nil {
		return nil, api.Internal("could not fetch updated profile")
	}
	return profile(updated), nil
}
