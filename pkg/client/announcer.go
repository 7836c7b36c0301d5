package client

import (
	"math/rand"
	"time"
)

// Announcer timing. Each interval is drawn anew from [min, max); the loop
// sleeps in short increments so it notices shutdown promptly instead of
// blocking for the whole interval.
const (
	announceMinInterval = 7 * time.Second
	announceMaxInterval = 15 * time.Second
	announceSleepStep   = 250 * time.Millisecond
)

// announceLoop periodically injects a themed system line while Gravemind
// mode is active. Purely decorative, but it is a second concurrent producer
// into the scrollback and follows the same locking discipline as the
// receive loop.
func (s *Session) announceLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		spread := int64(announceMaxInterval - announceMinInterval)
		delay := announceMinInterval + time.Duration(rand.Int63n(spread))
		if !s.sleepRunning(delay) {
			return
		}

		if s.Mode() != ModeGravemind {
			continue
		}
		if s.plain || !s.menuDone.Load() {
			continue
		}

		quote := gravemindQuotes[rand.Intn(len(gravemindQuotes))]
		s.scrollback.Append(DisplayLine{
			Time:   time.Now().Format("15:04:05"),
			Author: "GRAVEMIND",
			Text:   quote,
			Kind:   LineSystem,
		})
	}
}

// sleepRunning sleeps for d in small steps, returning false as soon as the
// session stops.
func (s *Session) sleepRunning(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if !s.running.Load() {
			return false
		}
		time.Sleep(announceSleepStep)
	}
	return s.running.Load()
}
