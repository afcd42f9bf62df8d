package access

import (
	"testing"

	"meganote_dashboard/internal/model"

	"github.com/stretchr/testify/assert"
)

var (
	admin    = &model.User{ID: "a1", Role: model.RoleAdmin}
	admin2   = &model.User{ID: "a2", Role: model.RoleAdmin}
	manager  = &model.User{ID: "m1", Role: model.RoleManager}
	employee = &model.User{ID: "e1", Role: model.RoleEmployee}
)

func noteFor(u *model.User) model.Note {
	return model.Note{ID: "n-" + u.ID, User: u.ID, Role: u.Role}
}

func TestVisibleActions_Menu(t *testing.T) {
	assert.True(t, VisibleActions(admin, ScreenMenu).Has(ActionViewUsers))
	assert.True(t, VisibleActions(admin, ScreenMenu).Has(ActionNewUser))
	assert.False(t, VisibleActions(manager, ScreenMenu).Has(ActionViewUsers))
	assert.Equal(t,
		[]Action{ActionEditProfile, ActionNewNote, ActionViewNotes},
		VisibleActions(employee, ScreenMenu).List())
	assert.Empty(t, VisibleActions(nil, ScreenMenu))
}

func TestVisibleActions_Notes(t *testing.T) {
	assert.True(t, VisibleActions(admin, ScreenNotesList).Has(ActionDeleteNote))
	assert.True(t, VisibleActions(manager, ScreenNotesList).Has(ActionDeleteNote))
	assert.False(t, VisibleActions(employee, ScreenNotesList).Has(ActionDeleteNote))
	assert.False(t, VisibleActions(employee, ScreenEditNote).Has(ActionDeleteNote))
	assert.Empty(t, VisibleActions(manager, ScreenUsersList))
}

func TestCanEditNote(t *testing.T) {
	assert.True(t, CanEditNote(admin, noteFor(admin)))
	assert.False(t, CanEditNote(admin, noteFor(admin2)))
	assert.True(t, CanEditNote(admin, noteFor(manager)))
	assert.True(t, CanEditNote(manager, noteFor(employee)))
	assert.False(t, CanEditNote(manager, noteFor(&model.User{ID: "m2", Role: model.RoleManager})))
	assert.True(t, CanEditNote(manager, noteFor(manager)))
	assert.True(t, CanEditNote(employee, noteFor(employee)))
	assert.False(t, CanEditNote(employee, noteFor(manager)))
	assert.False(t, CanEditNote(nil, noteFor(employee)))
}

func TestCanDeleteNote(t *testing.T) {
	assert.False(t, CanDeleteNote(employee, noteFor(employee)))
	assert.False(t, CanDeleteNote(admin, noteFor(admin2)))
	assert.True(t, CanDeleteNote(admin, noteFor(employee)))
	assert.True(t, CanDeleteNote(manager, noteFor(employee)))
}

func TestVisibleNotes(t *testing.T) {
	notes := []model.Note{noteFor(admin), noteFor(manager), noteFor(employee), noteFor(&model.User{ID: "e2", Role: model.RoleEmployee})}

	assert.Len(t, VisibleNotes(admin, notes), 4)
	assert.Len(t, VisibleNotes(manager, notes), 3)
	got := VisibleNotes(employee, notes)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "e1", got[0].User)
	}
	assert.Empty(t, VisibleNotes(nil, notes))
}

func TestAssignableUsers(t *testing.T) {
	users := []model.User{
		{ID: "a1", Role: model.RoleAdmin, Active: true},
		{ID: "m1", Role: model.RoleManager, Active: true},
		{ID: "e1", Role: model.RoleEmployee, Active: true},
		{ID: "e2", Role: model.RoleEmployee, Active: false},
	}

	assert.Len(t, AssignableUsers(admin, users), 3)
	assert.Len(t, AssignableUsers(manager, users), 2)
	got := AssignableUsers(employee, users)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "e1", got[0].ID)
	}
}

func TestRowActions(t *testing.T) {
	rows := RowActions(manager, []model.Note{noteFor(employee), noteFor(&model.User{ID: "m2", Role: model.RoleManager})})

	assert.Equal(t, []NoteActions{
		{NoteID: "n-e1", CanEdit: true, CanDelete: true},
		{NoteID: "n-m2", CanEdit: false, CanDelete: false},
	}, rows)
}
