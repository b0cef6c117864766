// Package notify turns annotation events into desktop notifications.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/example/boxannotator/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventExport fires when an archive has been written.
	EventExport Event = "export"
	// EventImport fires when annotations were read from files or an archive.
	EventImport Event = "import"
	// EventLoad fires when an image list was opened.
	EventLoad Event = "load"
)

// Preferences holds the title and the body template of each event.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Box annotator",
		Templates: map[Event]string{
			EventExport: "Exported %s",
			EventImport: "Imported %s",
			EventLoad:   "Opened %s",
		},
	}
}

// LoadPreferences applies BOXANNOTATOR_NOTIFY_* environment overrides to
// the defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("BOXANNOTATOR_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, e := range []Event{EventExport, EventImport, EventLoad} {
		key := "BOXANNOTATOR_NOTIFY_" + strings.ToUpper(string(e)) + "_TEXT"
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			prefs.Templates[e] = v
		}
	}
	return prefs
}

// Sender delivers one notification.
type Sender func(title, body string, opts platform.Options) error

// Notifier sends notifications for the enabled events. A nil Notifier is
// silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    Sender
	log     logrus.FieldLogger
}

// New creates a Notifier that sends through the platform service.
func New(prefs Preferences, log logrus.FieldLogger) *Notifier {
	cloned := Preferences{Title: prefs.Title, Templates: make(map[Event]string, len(prefs.Templates))}
	for k, v := range prefs.Templates {
		cloned.Templates[k] = v
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Notifier{prefs: cloned, enabled: map[Event]bool{}, send: platform.Notify, log: log}
}

// SetSender replaces the delivery function.
func (n *Notifier) SetSender(s Sender) { n.send = s }

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Export reports a written archive and its size.
func (n *Notifier) Export(path string, size int64) {
	detail := path
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
	}
	n.dispatch(EventExport, fmt.Sprintf("%s (%s)", detail, humanize.Bytes(uint64(max(size, 0)))))
}

// Import reports how many images received annotations and how many entries
// matched no image.
func (n *Notifier) Import(source string, applied, unmatched int) {
	detail := fmt.Sprintf("%s: %d %s", filepath.Base(source), applied, plural(applied, "image"))
	if unmatched > 0 {
		detail += fmt.Sprintf(", %d unmatched", unmatched)
	}
	n.dispatch(EventImport, detail)
}

// Load reports an opened image list.
func (n *Notifier) Load(count int) {
	n.dispatch(EventLoad, fmt.Sprintf("%s %s", humanize.Comma(int64(count)), plural(count, "image")))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string) {
	if !n.enabledFor(event) {
		return
	}
	template := strings.TrimSpace(n.prefs.Templates[event])
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	opts := platform.Options{Timeout: 5 * time.Second}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		n.log.WithError(err).WithField("event", event).Warn("notification failed")
	}
}
