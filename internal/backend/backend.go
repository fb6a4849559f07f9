// Package backend defines the capabilities the dispatcher drives: launching
// programs and paths, filesystem mutation, messaging and telephony.
package backend

import (
	"context"
	"time"
)

// Launcher starts processes and hands paths and URLs to the desktop.
type Launcher interface {
	// SpawnProcess starts an executable without waiting for it to exit.
	SpawnProcess(ctx context.Context, path string, args ...string) error

	// OpenPath opens a file or folder with its default handler.
	OpenPath(ctx context.Context, path string) error

	// RevealPath opens a folder in the platform file manager. It is the
	// fallback when OpenPath fails.
	RevealPath(ctx context.Context, path string) error

	// OpenURL opens url in the default browser.
	OpenURL(ctx context.Context, url string) error

	// CaptureScreen writes a PNG of the full screen to dest.
	CaptureScreen(ctx context.Context, dest string) error
}

// FileSystem is the mutating filesystem surface. Callers check paths against
// the safety policy before calling any of these.
type FileSystem interface {
	Exists(path string) bool
	IsDir(path string) bool
	CreateFile(path string) error
	MkdirAll(path string) error
	Remove(path string) error
	RemoveAll(path string) error
}

// Messenger sends messages and returns a status line for the user.
type Messenger interface {
	SendWhatsApp(ctx context.Context, phone, message string) (string, error)
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

// Scheduler sends a WhatsApp message at a later time.
type Scheduler interface {
	ScheduleWhatsApp(ctx context.Context, phone, message string, at time.Time) (string, error)
}

// Telephony places voice calls. An empty message places a plain call.
type Telephony interface {
	PlaceCall(ctx context.Context, phone, message string) (string, error)
}

// Set bundles the capabilities handed to the dispatcher. A nil member means
// the capability is not configured.
type Set struct {
	Launcher  Launcher
	Files     FileSystem
	Messenger Messenger
	Scheduler Scheduler
	Telephony Telephony

	// Dialers are tried in order for plain calls when Telephony is not
	// configured.
	Dialers []Dialer
}
