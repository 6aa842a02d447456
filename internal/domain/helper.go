package domain

import (
	"context"
	"errors"

	"github.com/pkg/math"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/pkg/errorx"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

const defaultPageSize = 50

// pageLimit clamps the requested page size to the configured bounds.
func pageLimit(ctx context.Context, requested int) int {
	cfg := xcontext.Configs(ctx).Sync

	limit := requested
	if limit <= 0 {
		limit = cfg.PageSize
	}
	if limit <= 0 {
		limit = defaultPageSize
	}

	if cfg.MaxPageSize > 0 {
		limit = math.MinInt(limit, cfg.MaxPageSize)
	}

	return limit
}

// cachedPage finds the page fetched with the given parameter.
func cachedPage(list entity.CachedList, param int) (entity.Page, bool) {
	for i, p := range list.PageParams {
		if p == param {
			return list.Pages[i], true
		}
	}

	return entity.Page{}, false
}

// classifyError folds transport-level failures into one typed error while
// passing already-typed errors through untouched.
func classifyError(ctx context.Context, err error) error {
	var appErr errorx.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	xcontext.Logger(ctx).Errorf("Server call failed: %v", err)
	return errorx.New(errorx.TransportFailed, "Cannot reach the server")
}
