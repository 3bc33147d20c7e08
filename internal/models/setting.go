package models

import "time"

// Setting is one named configuration record in the key/value settings store.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Named settings keys.
const (
	SettingDefaultDuration  = "default_duration"
	SettingDefaultDevice    = "default_device"
	SettingShowDeviceFrame  = "show_device_frame"
	SettingAutoAddToLibrary = "auto_add_to_library"
	SettingRetentionDays    = "retention_days"
	SettingAPIKey           = "api_key"
)
