// Package access decides what a signed-in user may see and do on each
// dashboard screen. Handlers consult it instead of branching on roles.
package access

import (
	"sort"

	"meganote_dashboard/internal/model"
)

type Screen string

const (
	ScreenMenu      Screen = "menu"
	ScreenNotesList Screen = "notes"
	ScreenUsersList Screen = "users"
	ScreenEditNote  Screen = "edit-note"
	ScreenEditUser  Screen = "edit-user"
)

type Action string

const (
	ActionEditProfile Action = "edit-profile"
	ActionViewNotes   Action = "view-notes"
	ActionNewNote     Action = "new-note"
	ActionEditNote    Action = "edit-note"
	ActionDeleteNote  Action = "delete-note"
	ActionViewUsers   Action = "view-users"
	ActionNewUser     Action = "new-user"
	ActionEditUser    Action = "edit-user"
	ActionDeleteUser  Action = "delete-user"
)

// ActionSet is an unordered set of actions
type ActionSet map[Action]struct{}

func newSet(actions ...Action) ActionSet {
	s := make(ActionSet, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

// List returns the actions sorted by name
func (s ActionSet) List() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func isStaff(user *model.User) bool {
	return user.Role == model.RoleAdmin || user.Role == model.RoleManager
}

// VisibleActions returns the actions offered to user on screen.
// A nil user sees nothing.
func VisibleActions(user *model.User, screen Screen) ActionSet {
	if user == nil {
		return newSet()
	}
	admin := user.Role == model.RoleAdmin

	switch screen {
	case ScreenMenu:
		s := newSet(ActionEditProfile, ActionViewNotes, ActionNewNote)
		if admin {
			s[ActionViewUsers] = struct{}{}
			s[ActionNewUser] = struct{}{}
		}
		return s
	case ScreenNotesList:
		s := newSet(ActionNewNote, ActionEditNote)
		if isStaff(user) {
			s[ActionDeleteNote] = struct{}{}
		}
		if admin {
			s[ActionViewUsers] = struct{}{}
		}
		return s
	case ScreenEditNote:
		s := newSet(ActionEditNote, ActionViewNotes)
		if isStaff(user) {
			s[ActionDeleteNote] = struct{}{}
		}
		return s
	case ScreenUsersList:
		if !admin {
			return newSet()
		}
		return newSet(ActionNewUser, ActionEditUser, ActionViewNotes)
	case ScreenEditUser:
		if !admin {
			return newSet()
		}
		return newSet(ActionEditUser, ActionDeleteUser, ActionViewUsers)
	}
	return newSet()
}

// CanEditNote applies the per-note edit rule: Admins may not edit other
// Admins' notes, Managers may not edit other Managers' notes, Employees
// edit only their own.
func CanEditNote(user *model.User, note model.Note) bool {
	if user == nil {
		return false
	}
	own := user.ID == note.User
	switch user.Role {
	case model.RoleAdmin:
		return note.Role != model.RoleAdmin || own
	case model.RoleManager:
		return note.Role != model.RoleManager || own
	case model.RoleEmployee:
		return own
	}
	return false
}

// CanDeleteNote mirrors CanEditNote for staff; Employees never delete.
func CanDeleteNote(user *model.User, note model.Note) bool {
	if user == nil || !isStaff(user) {
		return false
	}
	return CanEditNote(user, note)
}

// VisibleNotes filters a page of notes down to what user may see.
func VisibleNotes(user *model.User, notes []model.Note) []model.Note {
	if user == nil {
		return []model.Note{}
	}
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		switch user.Role {
		case model.RoleEmployee:
			if n.User != user.ID {
				continue
			}
		case model.RoleManager:
			if n.Role == model.RoleAdmin {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// AssignableUsers lists the active users user may assign a note to.
func AssignableUsers(user *model.User, users []model.User) []model.User {
	out := make([]model.User, 0, len(users))
	if user == nil {
		return out
	}
	for _, u := range users {
		if !u.Active {
			continue
		}
		switch user.Role {
		case model.RoleEmployee:
			if u.Role != model.RoleEmployee {
				continue
			}
		case model.RoleManager:
			if u.Role == model.RoleAdmin {
				continue
			}
		}
		out = append(out, u)
	}
	return out
}

// NoteActions are the per-row actions for one note on the list screen
type NoteActions struct {
	NoteID    string `json:"noteId"`
	CanEdit   bool   `json:"canEdit"`
	CanDelete bool   `json:"canDelete"`
}

// RowActions computes NoteActions for each visible note.
func RowActions(user *model.User, notes []model.Note) []NoteActions {
	out := make([]NoteActions, 0, len(notes))
	for _, n := range notes {
		out = append(out, NoteActions{
			NoteID:    n.ID,
			CanEdit:   CanEditNote(user, n),
			CanDelete: CanDeleteNote(user, n),
		})
	}
	return out
}
