package client

import (
	"strings"

	"github.com/gen2brain/beeep"
)

// maybeNotifyMention fires a desktop notification when an incoming chat
// message addresses the local user by @name. Quiet sessions never notify.
func (s *Session) maybeNotifyMention(sender, body string) {
	if s.quiet || s.username == "" {
		return
	}
	if !mentionsUser(body, s.username) {
		return
	}
	if s.notifier != nil {
		s.notifier(sender, body)
	}
}

// mentionsUser reports whether body contains @username as a whole token, so
// that @alice does not fire for @alicia.
func mentionsUser(body, username string) bool {
	needle := "@" + username
	for start := 0; ; {
		idx := strings.Index(body[start:], needle)
		if idx < 0 {
			return false
		}
		end := start + idx + len(needle)
		if end == len(body) || !isNameByte(body[end]) {
			return true
		}
		start = end
	}
}

func isNameByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_'
}

// desktopNotify is the default notifier. Notification failures are not
// worth surfacing in the chat view.
func desktopNotify(sender, body string) {
	_ = beeep.Notify("mycord", sender+": "+body, "")
}
