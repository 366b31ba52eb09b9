// Package platform delivers desktop notifications through the host's
// notification service.
package platform

import "time"

// DefaultApp is the application name shown by notification centres.
const DefaultApp = "Sketchpad"

// Urgency follows the freedesktop urgency levels.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// App overrides DefaultApp.
	App string
	// IconPath is an image file shown with the notification where supported.
	// Save notifications use the written file, copies a temporary preview.
	IconPath string
	// Timeout is how long the notification stays visible where the platform
	// lets the sender choose. Zero uses the platform default.
	Timeout time.Duration
	// Urgency defaults to UrgencyLow; failed loads are sent as critical.
	Urgency Urgency
}

func (o Options) app() string {
	if o.App != "" {
		return o.App
	}
	return DefaultApp
}

// expireMillis is the freedesktop expire_timeout: -1 leaves the choice to
// the server and critical notifications never expire on their own.
func (o Options) expireMillis() int32 {
	if o.Urgency == UrgencyCritical {
		return 0
	}
	if o.Timeout > 0 {
		return int32(o.Timeout.Milliseconds())
	}
	return -1
}
