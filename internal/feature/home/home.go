// Package home is the landing menu.
package home

import (
	"octoterm/internal/model"
	"octoterm/internal/store"
)

// MenuItem is one row of the home menu.
type MenuItem struct {
	Destination model.Destination
	Title       string
}

// DefaultMenu is shown on a fresh home screen.
var DefaultMenu = []MenuItem{
	{Destination: model.DestinationRepositories, Title: "Repositories"},
	{Destination: model.DestinationStarred, Title: "Starred"},
	{Destination: model.DestinationNotifications, Title: "Notifications"},
	{Destination: model.DestinationExplore, Title: "Explore"},
	{Destination: model.DestinationSettings, Title: "Settings"},
}

type State struct {
	Menu   []MenuItem
	Cursor int
}

func NewState() State {
	return State{Menu: DefaultMenu}
}

// Selected returns the item under the cursor.
func (s State) Selected() (MenuItem, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Menu) {
		return MenuItem{}, false
	}
	return s.Menu[s.Cursor], true
}

type Action interface{ homeAction() }

// CursorMoved moves the selection by Delta rows, clamped to the menu.
type CursorMoved struct{ Delta int }

// ItemSelected asks to open the item under the cursor. The app decides where
// that leads.
type ItemSelected struct{ Destination model.Destination }

func (CursorMoved) homeAction()  {}
func (ItemSelected) homeAction() {}

func Reducer() store.Reducer[State, Action] {
	return func(s State, action Action) (State, []store.Effect[Action]) {
		switch a := action.(type) {
		case CursorMoved:
			if len(s.Menu) == 0 {
				return s, nil
			}
			s.Cursor = min(max(s.Cursor+a.Delta, 0), len(s.Menu)-1)
		}
		return s, nil
	}
}
