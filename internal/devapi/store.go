// Package devapi is an in-memory stand-in for the Meganote REST backend.
// It serves local development (cmd/devapi) and the end-to-end tests of the
// dashboard; it is not meant to hold real data.
package devapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"meganote_dashboard/internal/model"
	"meganote_dashboard/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("User not found")
	ErrNoteNotFound      = errors.New("Note not found")
	ErrDuplicateUsername = errors.New("Duplicate username")
	ErrInvalidResetToken = errors.New("Invalid or expired reset token")
)

const firstTicket = 500

type userRecord struct {
	model.User
	passwordHash string
}

type noteRecord struct {
	ID        string
	Ticket    int
	Title     string
	Text      string
	Status    model.NoteStatus
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserQuery filters the users listing
type UserQuery struct {
	Fullname string
	Role     string
	Active   *bool
}

// NoteQuery filters the notes listing
type NoteQuery struct {
	Ticket *int
	Term   string
	Status string
}

// Store holds users and notes in memory
type Store struct {
	mu          sync.RWMutex
	users       map[string]*userRecord
	notes       map[string]*noteRecord
	nextTicket  int
	resetTokens map[string]string // reset token -> user ID
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]*userRecord),
		notes:       make(map[string]*noteRecord),
		nextTicket:  firstTicket,
		resetTokens: make(map[string]string),
		now:         time.Now,
	}
}

// AddUser stores a new user with a hashed password and returns it
func (s *Store) AddUser(u model.User, password string) (model.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return model.User{}, ErrDuplicateUsername
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = model.RoleEmployee
	}
	s.users[u.ID] = &userRecord{User: u, passwordHash: hash}
	return u, nil
}

// Authenticate returns the active user matching the credentials
func (s *Store) Authenticate(username, password string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			if !u.Active || !utils.CheckPasswordHash(password, u.passwordHash) {
				return model.User{}, false
			}
			return u.User, true
		}
	}
	return model.User{}, false
}

func (s *Store) User(id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u.User, nil
}

// Users returns every user ordered by username
func (s *Store) Users(q UserQuery) []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		if q.Fullname != "" && !strings.Contains(strings.ToLower(u.Fullname), strings.ToLower(q.Fullname)) {
			continue
		}
		if q.Role != "" && !strings.EqualFold(string(u.Role), q.Role) {
			continue
		}
		if q.Active != nil && u.Active != *q.Active {
			continue
		}
		out = append(out, u.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// UpdateUser applies fn to the stored user; a non-empty password is rehashed
func (s *Store) UpdateUser(id string, password string, fn func(*model.User)) error {
	var hash string
	if password != "" {
		h, err := utils.HashPassword(password)
		if err != nil {
			return err
		}
		hash = h
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	updated := u.User
	fn(&updated)
	updated.ID = id
	for otherID, other := range s.users {
		if otherID != id && strings.EqualFold(other.Username, updated.Username) {
			return ErrDuplicateUsername
		}
	}
	u.User = updated
	if hash != "" {
		u.passwordHash = hash
	}
	return nil
}

func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, id)
	for noteID, n := range s.notes {
		if n.UserID == id {
			delete(s.notes, noteID)
		}
	}
	return nil
}

// IssueResetToken creates a password reset token for the user with email
func (s *Store) IssueResetToken(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			token := uuid.NewString()
			s.resetTokens[token] = id
			return token, true
		}
	}
	return "", false
}

// RedeemResetToken consumes token and sets the new password
func (s *Store) RedeemResetToken(token, password string) error {
	s.mu.Lock()
	id, ok := s.resetTokens[token]
	if ok {
		delete(s.resetTokens, token)
	}
	s.mu.Unlock()
	if !ok {
		return ErrInvalidResetToken
	}
	return s.UpdateUser(id, password, func(*model.User) {})
}

func (s *Store) noteView(n *noteRecord) model.Note {
	note := model.Note{
		ID:        n.ID,
		Ticket:    n.Ticket,
		Title:     n.Title,
		Text:      n.Text,
		Status:    n.Status,
		User:      n.UserID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if u, ok := s.users[n.UserID]; ok {
		note.Username = u.Username
		note.Role = u.Role
	}
	return note
}

// AddNote creates a note with the next ticket number
func (s *Store) AddNote(in model.NoteInput) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[in.User]; !ok {
		return model.Note{}, ErrUserNotFound
	}
	status := in.Status
	if status == "" {
		status = model.StatusOpen
	}
	now := s.now()
	n := &noteRecord{
		ID:        uuid.NewString(),
		Ticket:    s.nextTicket,
		Title:     in.Title,
		Text:      in.Text,
		Status:    status,
		UserID:    in.User,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextTicket++
	s.notes[n.ID] = n
	return s.noteView(n), nil
}

func (s *Store) Note(id string) (model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	if !ok {
		return model.Note{}, ErrNoteNotFound
	}
	return s.noteView(n), nil
}

// Notes returns matching notes ordered by ticket
func (s *Store) Notes(q NoteQuery) []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term := strings.ToLower(q.Term)
	out := make([]model.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if q.Ticket != nil && n.Ticket != *q.Ticket {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(n.Title), term) && !strings.Contains(strings.ToLower(n.Text), term) {
			continue
		}
		if q.Status != "" && string(n.Status) != q.Status {
			continue
		}
		out = append(out, s.noteView(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticket < out[j].Ticket })
	return out
}

func (s *Store) UpdateNote(id string, in model.NoteInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok {
		return ErrNoteNotFound
	}
	if _, ok := s.users[in.User]; !ok {
		return ErrUserNotFound
	}
	n.Title = in.Title
	n.Text = in.Text
	n.UserID = in.User
	if in.Status != "" {
		n.Status = in.Status
	}
	n.UpdatedAt = s.now()
	return nil
}

func (s *Store) DeleteNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

// paginate slices items to the requested 1-based page
func paginate[T any](items []T, page, limit int) ([]T, int) {
	if limit < 1 {
		limit = 12
	}
	if page < 1 {
		page = 1
	}
	totalPages := (len(items) + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}, totalPages
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], totalPages
}
