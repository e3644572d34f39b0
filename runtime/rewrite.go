package runtime

import (
	"interaction-lab/customid"
	"interaction-lab/domain"
	"interaction-lab/state"
	"strings"
)

// rewriteResponse returns a copy of resp where every bare custom id (see
// state.State.CustomID) is wrapped under prefix. Ids built elsewhere are kept.
func rewriteResponse(prefix string, resp *domain.Response) (*domain.Response, error) {
	if resp == nil {
		return nil, nil
	}
	data, err := rewriteData(prefix, resp.Data)
	if err != nil {
		return nil, err
	}
	return &domain.Response{Type: resp.Type, Data: data}, nil
}

func rewriteData(prefix string, data *domain.ResponseData) (*domain.ResponseData, error) {
	if data == nil {
		return nil, nil
	}
	out := *data
	id, err := rewriteID(prefix, data.CustomID)
	if err != nil {
		return nil, err
	}
	out.CustomID = id
	if out.Components, err = rewriteComponents(prefix, data.Components); err != nil {
		return nil, err
	}
	return &out, nil
}

func rewriteComponents(prefix string, components []domain.Component) ([]domain.Component, error) {
	if components == nil {
		return nil, nil
	}
	out := make([]domain.Component, len(components))
	for i, c := range components {
		id, err := rewriteID(prefix, c.CustomID)
		if err != nil {
			return nil, err
		}
		c.CustomID = id
		if c.Components, err = rewriteComponents(prefix, c.Components); err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func rewriteID(prefix, id string) (string, error) {
	payload, bare := strings.CutPrefix(id, state.BareMarker)
	if !bare {
		return id, nil
	}
	return customid.Build(prefix, payload)
}
