package packets

// REQUESTS FOR /api/tv/*

type RegisterPairingCodeRequest struct {
	PairingCode string `json:"code" binding:"required,min=4,max=12"`
	DeviceID    string `json:"device_id" binding:"required"`
}

type ConnectRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}
