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

// UserService provides the users screens' backend operations
type UserService interface {
	List(ctx context.Context, f query.Filter) (*model.UserPage, error)
	All(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, in model.UserInput) error
	Update(ctx context.Context, id string, in model.UserInput) error
	Delete(ctx context.Context, id string) error

	Screen() *listing.Screen[model.User]
	Refresh(ctx context.Context) (listing.State[model.User], error)
}

type userService struct {
	clients ClientSource
	notices *notice.Queue
	screen  *listing.Screen[model.User]
	logger  zerolog.Logger
}

// NewUserService creates a UserService whose list screen starts with pageSize rows
func NewUserService(clients ClientSource, notices *notice.Queue, pageSize int, logger zerolog.Logger) UserService {
	return &userService{
		clients: clients,
		notices: notices,
		screen:  listing.NewScreen[model.User](pageSize),
		logger:  logger.With().Str("component", "users").Logger(),
	}
}

func (s *userService) List(ctx context.Context, f query.Filter) (*model.UserPage, error) {
	return fetchPage[model.UserPage](ctx, s.clients.Client(), "/users", f, query.UserParams, s.notices, s.logger)
}

func (s *userService) All(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.clients.Client().Get(ctx, "/users/all", nil, &users); err != nil {
		s.notices.Error(apiclient.Message(err))
		return nil, err
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.clients.Client().Get(ctx, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		s.notices.Error(apiclient.Message(err))
		return nil, err
	}
	return &user, nil
}

func (s *userService) Create(ctx context.Context, in model.UserInput) error {
	return passThrough(s.notices, func(out *model.MessageResponse) error {
		return s.clients.Client().Post(ctx, "/users", in, out)
	})
}

func (s *userService) Update(ctx context.Context, id string, in model.UserInput) error {
	body := struct {
		ID string `json:"id"`
		model.UserInput
	}{ID: id, UserInput: in}
	return passThrough(s.notices, func(out *model.MessageResponse) error {
		return s.clients.Client().Patch(ctx, "/users/"+url.PathEscape(id), body, out)
	})
}

func (s *userService) Delete(ctx context.Context, id string) error {
	return passThrough(s.notices, func(out *model.MessageResponse) error {
		return s.clients.Client().Delete(ctx, "/users/"+url.PathEscape(id), out)
	})
}

func (s *userService) Screen() *listing.Screen[model.User] {
	return s.screen
}

func (s *userService) Refresh(ctx context.Context) (listing.State[model.User], error) {
	req := s.screen.Begin()
	page, err := s.List(ctx, req.Filter)
	if err != nil {
		state, staleErr := s.screen.Fail(req, apiclient.Message(err))
		if staleErr != nil {
			return state, staleErr
		}
		return state, err
	}
	return s.screen.Complete(req, page.Users, page.Count, page.TotalPages)
}
