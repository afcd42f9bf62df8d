package service

import (
	"context"
	"net/url"

	"meganote_dashboard/internal/apiclient"
	"meganote_dashboard/internal/notice"
	"meganote_dashboard/internal/query"

	"github.com/rs/zerolog"
)

// fetchPage GETs one page of a list endpoint. When a text-filtered
// request fails, the error is shown and the page is fetched once more
// without the text filter; there is no retry for unfiltered requests.
func fetchPage[P any](
	ctx context.Context,
	client *apiclient.Client,
	path string,
	f query.Filter,
	build func(query.Filter) url.Values,
	notices *notice.Queue,
	logger zerolog.Logger,
) (*P, error) {
	var page P
	err := client.Get(ctx, path, build(f), &page)
	if err == nil {
		return &page, nil
	}
	notices.Error(apiclient.Message(err))
	if f.Search == "" {
		return nil, err
	}

	logger.Warn().
		Str("path", path).
		Str("search", f.Search).
		Str("reason", apiclient.Message(err)).
		Msg("filtered list failed; retrying without the text filter")

	var fallback P
	if err := client.Get(ctx, path, build(f.Fallback()), &fallback); err != nil {
		notices.Error(apiclient.Message(err))
		return nil, err
	}
	return &fallback, nil
}
