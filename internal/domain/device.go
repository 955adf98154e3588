package domain

import (
	"fmt"
	"strings"
)

// DeviceClass identifies the hardware class this instance runs on.
// It is chosen once during startup and is read-only afterwards.
type DeviceClass string

const (
	// DeviceMobile routes security alerts to email and SMS.
	DeviceMobile DeviceClass = "MOBILE"
	// DeviceLaptop routes security alerts to email only.
	DeviceLaptop DeviceClass = "LAPTOP"
)

// ParseDeviceClass parses a device-class answer, case-insensitively.
func ParseDeviceClass(s string) (DeviceClass, error) {
	switch DeviceClass(strings.ToUpper(strings.TrimSpace(s))) {
	case DeviceMobile:
		return DeviceMobile, nil
	case DeviceLaptop:
		return DeviceLaptop, nil
	default:
		return "", fmt.Errorf("invalid device class %q: expected Mobile or Laptop", s)
	}
}

// Preference is a durable user-specific key/value fact.
type Preference struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Well-known preference keys consulted as handler fallbacks.
const (
	PrefUserName     = "user_name"
	PrefFavoriteCity = "favorite_city"
)
