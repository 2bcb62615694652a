package model

// Destination names a place the user can navigate to from a menu.
type Destination int

const (
	DestinationRepositories Destination = iota
	DestinationStarred
	DestinationNotifications
	DestinationExplore
	DestinationSettings
)

func (d Destination) String() string {
	switch d {
	case DestinationRepositories:
		return "repositories"
	case DestinationStarred:
		return "starred"
	case DestinationNotifications:
		return "notifications"
	case DestinationExplore:
		return "explore"
	case DestinationSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
