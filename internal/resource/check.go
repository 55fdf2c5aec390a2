package resource

import (
	"context"

	"github.com/koustreak/s3-resource/internal/logger"
)

// Check reports the versions currently selected by the source filters.
// The response is never nil so it always encodes as a JSON array.
func Check(ctx context.Context, c *Client, req Request) (CheckResponse, error) {
	selected, err := c.ListFiltered(ctx, req.Source.Filters)
	if err != nil {
		return nil, err
	}

	resp := make(CheckResponse, len(selected))
	for i, s := range selected {
		resp[i] = Version{Key: s.Key}
	}

	logger.FromContext(ctx).With().
		Int("count", len(resp)).
		Logger().
		Infof("Versions found: %v", resp)
	return resp, nil
}
