package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LoginStatus is the outcome recorded in the login history.
type LoginStatus string

const (
	LoginStatusSuccess LoginStatus = "success"
	LoginStatusFailed  LoginStatus = "failed"
)

// LoginEvent is one immutable entry of the login history.
type LoginEvent struct {
	ID        int64       `json:"-"`
	Timestamp time.Time   `json:"timestamp"`
	DeviceID  string      `json:"deviceId"`
	Location  Location    `json:"location"`
	Status    LoginStatus `json:"status"`
}

// HistoryCursor marks a position in a user's login history. Entries are
// ordered by (OccurredAt, ID) so entries sharing a timestamp page cleanly.
// The zero value starts from the most recent entry.
type HistoryCursor struct {
	OccurredAt time.Time
	ID         int64
}

// IsZero reports whether c is the start of the history.
func (c HistoryCursor) IsZero() bool {
	return c.OccurredAt.IsZero()
}

// CursorAfter returns the cursor that continues after e.
func (e LoginEvent) CursorAfter() HistoryCursor {
	return HistoryCursor{OccurredAt: e.Timestamp, ID: e.ID}
}

// LoginAttempt is the context a client reports with a login.
type LoginAttempt struct {
	DeviceID string   `json:"deviceId"`
	Location Location `json:"location"`
}

// Validate checks that the attempt carries a device and a usable location.
func (a LoginAttempt) Validate() error {
	if strings.TrimSpace(a.DeviceID) == "" {
		return ErrMissingContext
	}
	return a.Location.Validate()
}

// UserContext is the per-account record of known devices, known locations
// and login history.
type UserContext struct {
	UserID         uuid.UUID
	KnownDevices   []string
	KnownLocations []KnownLocation
	// LoginHistory holds the most recent entries loaded with the context,
	// oldest first. The full ledger is paged through the context store.
	LoginHistory []LoginEvent
	// Version is incremented on every save and guards against lost updates.
	Version   int64
	UpdatedAt time.Time
}

// NewUserContext returns the zero-value context for an account that has not
// logged in with context data yet.
func NewUserContext(userID uuid.UUID) *UserContext {
	return &UserContext{
		UserID:         userID,
		KnownDevices:   []string{},
		KnownLocations: []KnownLocation{},
		LoginHistory:   []LoginEvent{},
	}
}

// HasDevice returns true if deviceID is a known device.
func (c *UserContext) HasDevice(deviceID string) bool {
	return slices.Contains(c.KnownDevices, deviceID)
}

// HasKnownLocation returns true if any known location covers loc.
func (c *UserContext) HasKnownLocation(loc Location, nearbyKm float64) bool {
	for _, known := range c.KnownLocations {
		if known.Covers(loc, nearbyKm) {
			return true
		}
	}
	return false
}

// HasNearbyLocation returns true if any known location is within nearbyKm
// of loc.
func (c *UserContext) HasNearbyLocation(loc Location, nearbyKm float64) bool {
	for _, known := range c.KnownLocations {
		if known.IsNear(loc, nearbyKm) {
			return true
		}
	}
	return false
}

// LearnedLogin describes what RecordSuccessfulLogin changed.
type LearnedLogin struct {
	NewDevice   bool
	NewLocation bool
	Event       LoginEvent
}

// RecordSuccessfulLogin adds the device and location if they are not known
// yet and appends a success entry. Calling it again with the same device and
// location only appends another history entry.
func (c *UserContext) RecordSuccessfulLogin(deviceID string, loc Location, at time.Time, radiusKm, nearbyKm float64) LearnedLogin {
	learned := LearnedLogin{}

	if deviceID != "" && !c.HasDevice(deviceID) {
		c.KnownDevices = append(c.KnownDevices, deviceID)
		learned.NewDevice = true
	}

	if !c.HasKnownLocation(loc, nearbyKm) {
		c.KnownLocations = append(c.KnownLocations, KnownLocation{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			RadiusKm:  radiusKm,
		})
		learned.NewLocation = true
	}

	learned.Event = LoginEvent{
		Timestamp: at,
		DeviceID:  deviceID,
		Location:  loc,
		Status:    LoginStatusSuccess,
	}
	c.LoginHistory = append(c.LoginHistory, learned.Event)
	return learned
}

// RecordFailedLogin appends a failed entry without learning anything.
func (c *UserContext) RecordFailedLogin(deviceID string, loc Location, at time.Time) LoginEvent {
	event := LoginEvent{
		Timestamp: at,
		DeviceID:  deviceID,
		Location:  loc,
		Status:    LoginStatusFailed,
	}
	c.LoginHistory = append(c.LoginHistory, event)
	return event
}
