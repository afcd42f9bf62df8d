package service

import (
	"context"
	"net/url"

	"meganote_dashboard/internal/apiclient"
	"meganote_dashboard/internal/listing"
	"meganote_dashboard/internal/model"
	"meganote_dashboard/internal/notice"
	"meganote_dashboard/internal/query"

	"github.com/rs/zerolog"
)

// NoteService provides the notes screens' backend operations
type NoteService interface {
	List(ctx context.Context, f query.Filter) (*model.NotePage, error)
	All(ctx context.Context) ([]model.Note, error)
	Get(ctx context.Context, id string) (*model.Note, error)
	Create(ctx context.Context, in model.NoteInput) error
	Update(ctx context.Context, id string, in model.NoteInput) error
	Delete(ctx context.Context, id string) error

	Screen() *listing.Screen[model.Note]
	Refresh(ctx context.Context) (listing.State[model.Note], error)
}

type noteService struct {
	clients ClientSource
	notices *notice.Queue
	screen  *listing.Screen[model.Note]
	logger  zerolog.Logger
}

// NewNoteService creates a NoteService whose list screen starts with pageSize rows
func NewNoteService(clients ClientSource, notices *notice.Queue, pageSize int, logger zerolog.Logger) NoteService {
	return &noteService{
		clients: clients,
		notices: notices,
		screen:  listing.NewScreen[model.Note](pageSize),
		logger:  logger.With().Str("component", "notes").Logger(),
	}
}

func (s *noteService) List(ctx context.Context, f query.Filter) (*model.NotePage, error) {
	return fetchPage[model.NotePage](ctx, s.clients.Client(), "/notes", f, query.NoteParams, s.notices, s.logger)
}

func (s *noteService) All(ctx context.Context) ([]model.Note, error) {
	var notes []model.Note
	if err := s.clients.Client().Get(ctx, "/notes/all", nil, &notes); err != nil {
		s.notices.Error(apiclient.Message(err))
		return nil, err
	}
	return notes, nil
}

func (s *noteService) Get(ctx context.Context, id string) (*model.Note, error) {
	var note model.Note
	if err := s.clients.Client().Get(ctx, "/notes/"+url.PathEscape(id), nil, &note); err != nil {
		s.notices.Error(apiclient.Message(err))
		return nil, err
	}
	return &note, nil
}

func (s *noteService) Create(ctx context.Context, in model.NoteInput) error {
	return passThrough(s.notices, func(out *model.MessageResponse) error {
		return s.clients.Client().Post(ctx, "/notes", in, out)
	})
}

func (s *noteService) Update(ctx context.Context, id string, in model.NoteInput) error {
	body := struct {
		ID string `json:"id"`
		model.NoteInput
	}{ID: id, NoteInput: in}
	return passThrough(s.notices, func(out *model.MessageResponse) error {
		return s.clients.Client().Patch(ctx, "/notes/"+url.PathEscape(id), body, out)
	})
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	return passThrough(s.notices, func(out *model.MessageResponse) error {
		return s.clients.Client().Delete(ctx, "/notes/"+url.PathEscape(id), out)
	})
}

func (s *noteService) Screen() *listing.Screen[model.Note] {
	return s.screen
}

// Refresh fetches the screen's current filter. A response overtaken by a
// newer request is dropped with listing.ErrStale.
func (s *noteService) Refresh(ctx context.Context) (listing.State[model.Note], error) {
	req := s.screen.Begin()
	page, err := s.List(ctx, req.Filter)
	if err != nil {
		state, staleErr := s.screen.Fail(req, apiclient.Message(err))
		if staleErr != nil {
			return state, staleErr
		}
		return state, err
	}
	return s.screen.Complete(req, page.Notes, page.Count, page.TotalPages)
}
