package packets

type CreateScreenRequest struct {
	Name     string  `json:"name" binding:"required"`
	Location *string `json:"location"`
}

type UpdateScreenRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

// SetLocationRequest places a screen on the map. Latitude and longitude are
// pointers so a missing field is told apart from 0.
type SetLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Timezone  *string  `json:"timezone"`
}

type PairScreenRequest struct {
	PairingCode string `json:"code" binding:"required"`
	ScreenID    int    `json:"screen_id" binding:"required"`
}
