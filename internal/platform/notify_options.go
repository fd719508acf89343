package platform

import "time"

// AppName is reported to the host notification service.
const AppName = "Inkwell"

// DefaultTimeout is how long a notification stays visible when Options
// leaves Timeout unset.
const DefaultTimeout = 5 * time.Second

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Timeout overrides DefaultTimeout where the platform honours it.
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
