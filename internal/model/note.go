package model

import (
	"encoding/json"
	"time"
)

// NoteStatus is the workflow state of a note
type NoteStatus string

const (
	StatusOpen       NoteStatus = "Open"
	StatusInProgress NoteStatus = "In Progress"
	StatusCompleted  NoteStatus = "Completed"
)

// Note represents a ticketed note assigned to a user
type Note struct {
	ID        string     `json:"_id"`
	Ticket    int        `json:"ticket"`
	Title     string     `json:"title"`
	Text      string     `json:"text"`
	Status    NoteStatus `json:"status"`
	User      string     `json:"user"`               // assigned user ID
	Username  string     `json:"username,omitempty"` // assigned user's name
	Role      Role       `json:"role,omitempty"`     // assigned user's role
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// UnmarshalJSON accepts both "_id" and "id" for the identifier.
func (n *Note) UnmarshalJSON(data []byte) error {
	type plain Note
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = Note(aux.plain)
	if n.ID == "" {
		n.ID = aux.AltID
	}
	return nil
}

// NotePage is one page of the paginated /notes listing
type NotePage struct {
	Notes      []Note `json:"notes"`
	Count      int    `json:"count"`
	TotalPages int    `json:"totalPages"`
}

// NoteInput is the body of note create and update requests
type NoteInput struct {
	User   string     `json:"user" binding:"required"`
	Title  string     `json:"title" binding:"required"`
	Text   string     `json:"text" binding:"required"`
	Status NoteStatus `json:"status,omitempty"`
}
