package model

import "errors"

var (
	// ErrMeetingNotFound is returned when a meeting is not found.
	ErrMeetingNotFound = errors.New("meeting not found")

	// ErrTaskNotFound is returned when a task is not found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAlreadyAttached is returned when a connection is attached to a
	// session while still registered under another one.
	ErrAlreadyAttached = errors.New("connection already attached to a session")

	// ErrSessionNotStarted is returned for commands against a live session
	// that has not been started or has already ended. It is reported to the
	// sender only; the connection stays attached.
	ErrSessionNotStarted = errors.New("session not started")

	// ErrUnknownCommand is returned when an inbound envelope carries an
	// unrecognized type tag.
	ErrUnknownCommand = errors.New("unknown command type")

	// ErrAccessDenied is returned when a client fails authorization for a
	// meeting. The transport is closed without any session interaction.
	ErrAccessDenied = errors.New("access denied")

	// ErrTitleRequired is returned when a meeting creation request is missing the title.
	ErrTitleRequired = errors.New("title is required")
)
