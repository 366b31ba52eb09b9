//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
)

// Notify displays a notification through Notification Center. Critical
// notifications play the alert sound.
func Notify(title, body string, opts Options) error {
	return exec.Command("osascript", "-e", appleScript(title, body, opts)).Run()
}

func appleScript(title, body string, opts Options) string {
	script := fmt.Sprintf("display notification %q with title %q subtitle %q", body, opts.app(), title)
	if opts.Urgency == UrgencyCritical {
		script += ` sound name "Basso"`
	}
	return script
}
