package services

import (
	"errors"

	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/internal/session"
	"gamifiedFitnessAPI/internal/sustainability"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrActiveSessionExists = errors.New("you already have an active session")
	ErrSessionNotActive    = errors.New("session is not active")
	ErrAlreadyFriends      = errors.New("already friends with this user")
	ErrSelfFriend          = errors.New("cannot add yourself as friend")
	ErrAlreadyCheckedIn    = errors.New("already checked in today")
	ErrUserExists          = errors.New("user already registered")
	ErrProfilePrivate      = errors.New("profile is private")

	ErrAlreadyParticipating = mission.ErrAlreadyParticipating
	ErrMissionExpired       = mission.ErrMissionExpired
	ErrNotParticipating     = mission.ErrNotParticipating
	ErrRequirementsNotMet   = mission.ErrRequirementsNotMet

	ErrInsufficientGreenMiles = sustainability.ErrInsufficientGreenMiles
	ErrNotEcoFriendly         = sustainability.ErrNotEcoFriendly

	ErrGeofenceAlreadyEntered = session.ErrGeofenceAlreadyEntered
	ErrGeofenceNotEntered     = session.ErrGeofenceNotEntered
)
