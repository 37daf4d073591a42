package service

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrBusy            = errors.New("session busy")
	ErrNoModeSelected  = errors.New("no game mode selected")
	ErrUnknownMode     = errors.New("unknown game mode")
	ErrNotStarted      = errors.New("service not started")
)
