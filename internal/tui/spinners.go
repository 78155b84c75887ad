package tui

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerAnimation defines a spinner animation with its frames.
type SpinnerAnimation struct {
	Frames   []string
	Interval time.Duration
}

// Available spinner animations. Each turn picks one at random.
var spinnerAnimations = []SpinnerAnimation{
	// Braille dots (classic)
	{
		Frames:   []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
		Interval: 80 * time.Millisecond,
	},
	// Bouncing ball
	{
		Frames:   []string{"⠁", "⠂", "⠄", "⡀", "⢀", "⠠", "⠐", "⠈"},
		Interval: 100 * time.Millisecond,
	},
	// Growing dots
	{
		Frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		Interval: 80 * time.Millisecond,
	},
	// Arc
	{
		Frames:   []string{"◜", "◠", "◝", "◞", "◡", "◟"},
		Interval: 100 * time.Millisecond,
	},
	// Circle quarters
	{
		Frames:   []string{"◴", "◷", "◶", "◵"},
		Interval: 120 * time.Millisecond,
	},
	// Cooking pot
	{
		Frames:   []string{"🍳", "🥘", "🍲", "🥣"},
		Interval: 200 * time.Millisecond,
	},
	// Pulse
	{
		Frames:   []string{"█", "▓", "▒", "░", "▒", "▓"},
		Interval: 120 * time.Millisecond,
	},
}

// Spinner colors for variety
var spinnerColors = []lipgloss.Color{
	lipgloss.Color("#FF79C6"), // Pink
	lipgloss.Color("#8BE9FD"), // Cyan
	lipgloss.Color("#50FA7B"), // Green
	lipgloss.Color("#FFB86C"), // Orange
	lipgloss.Color("#BD93F9"), // Purple
	lipgloss.Color("#F1FA8C"), // Yellow
}

// AnimatedSpinner renders a per-turn spinner with a random animation and
// starting frame.
type AnimatedSpinner struct {
	animation  SpinnerAnimation
	frameIndex int
	style      lipgloss.Style
	lastUpdate time.Time
}

// NewAnimatedSpinner creates a new spinner with a random animation and starting frame.
func NewAnimatedSpinner() *AnimatedSpinner {
	// #nosec G404 -- Using math/rand for UI animation variety, not cryptography
	anim := spinnerAnimations[rand.Intn(len(spinnerAnimations))]

	// #nosec G404 -- Using math/rand for UI animation variety, not cryptography
	startFrame := rand.Intn(len(anim.Frames))

	// #nosec G404 -- Using math/rand for UI animation variety, not cryptography
	style := lipgloss.NewStyle().
		Foreground(spinnerColors[rand.Intn(len(spinnerColors))]).
		Bold(true)

	return &AnimatedSpinner{
		animation:  anim,
		frameIndex: startFrame,
		style:      style,
		lastUpdate: time.Now(),
	}
}

// View returns the current spinner frame with styling.
func (s *AnimatedSpinner) View() string {
	return s.style.Render(s.animation.Frames[s.frameIndex])
}

// Tick advances the spinner to the next frame if enough time has passed.
// Returns true if the frame changed.
func (s *AnimatedSpinner) Tick() bool {
	now := time.Now()
	if now.Sub(s.lastUpdate) >= s.animation.Interval {
		s.frameIndex = (s.frameIndex + 1) % len(s.animation.Frames)
		s.lastUpdate = now
		return true
	}
	return false
}
