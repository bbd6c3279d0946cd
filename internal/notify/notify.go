// Package notify wraps desktop notifications.
package notify

import "github.com/gen2brain/beeep"

// Desktop sends OS-level notifications. Delivery failures are dropped;
// a missed notification must never break the timer.
type Desktop struct{}

func NewDesktop() *Desktop {
	return &Desktop{}
}

func (d *Desktop) Notify(title, body string) {
	_ = beeep.Notify(title, body, "")
}
