package packets

// ScreenResponse mirrors model.Screen but flattens times to RFC3339
type ScreenResponse struct {
	ID        int      `json:"id"`
	DeviceID  *string  `json:"device_id"`
	Name      string   `json:"name"`
	Location  *string  `json:"location"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  *string  `json:"timezone"`
	Paired    bool     `json:"paired"`
	Online    bool     `json:"online"` // TV connected to its command topic
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}
