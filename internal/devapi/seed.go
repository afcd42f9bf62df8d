package devapi

import (
	"meganote_dashboard/internal/model"
)

// DemoPassword is the password of every seeded account
const DemoPassword = "secret"

// Seed fills the store with one account per role and a few notes
func Seed(s *Store) error {
	accounts := []model.User{
		{ID: "u1", Username: "alice", Fullname: "Alice Admin", Email: "alice@meganote.dev", Role: model.RoleAdmin, Active: true},
		{ID: "u2", Username: "mark", Fullname: "Mark Manager", Email: "mark@meganote.dev", Role: model.RoleManager, Active: true},
		{ID: "u3", Username: "erin", Fullname: "Erin Employee", Email: "erin@meganote.dev", Role: model.RoleEmployee, Active: true},
		{ID: "u4", Username: "olaf", Fullname: "Olaf Offboarded", Email: "olaf@meganote.dev", Role: model.RoleEmployee, Active: false},
	}
	for _, u := range accounts {
		if _, err := s.AddUser(u, DemoPassword); err != nil {
			return err
		}
	}

	notes := []model.NoteInput{
		{User: "u1", Title: "Quarterly review", Text: "Prepare the deck", Status: model.StatusOpen},
		{User: "u2", Title: "Hire a designer", Text: "Two candidates left", Status: model.StatusInProgress},
		{User: "u3", Title: "Fix printer", Text: "Third floor, again", Status: model.StatusCompleted},
		{User: "u3", Title: "Order toner", Text: "Black only", Status: model.StatusOpen},
	}
	for _, n := range notes {
		if _, err := s.AddNote(n); err != nil {
			return err
		}
	}
	return nil
}
