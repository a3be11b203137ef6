package openaichat

import (
	"context"
	"net/http"
	"time"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// ListModels fetches the upstream model listing and translates it to the
// Messages API shape. The upstream has no display names, so the model id
// doubles as one.
func (a *CreateMessageAdapter) ListModels(
	ctx context.Context,
	transport http.RoundTripper,
) (*types.ModelList, error) {
	c, err := newClient(a.BaseURL, transport)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	defer cancel()

	upstream, err := c.listModels(ctx)
	if err != nil {
		return nil, err
	}

	return toModelList(*upstream), nil
}

// toModelList converts an upstream model listing. The upstream list is not
// paginated, so the translated page is always complete.
func toModelList(upstream ModelList) *types.ModelList {
	list := &types.ModelList{
		Data:    make([]types.ModelInfo, 0, len(upstream.Data)),
		HasMore: false,
	}

	for _, model := range upstream.Data {
		list.Data = append(list.Data, types.NewModelInfo(
			model.ID,
			model.ID,
			time.Unix(model.Created, 0).UTC(),
		))
	}

	if len(list.Data) > 0 {
		first := list.Data[0].ID
		last := list.Data[len(list.Data)-1].ID
		list.FirstID = &first
		list.LastID = &last
	}

	return list
}
