package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-destform/pkg/destination"
	"github.com/goliatone/go-destform/pkg/form"
	"github.com/goliatone/go-destform/pkg/validation"
)

var (
	_ validation.Querier      = (*Client)(nil)
	_ form.DisplayInfoQuerier = (*Client)(nil)
)

const (
	destinationTypesQuery = `query DestinationTypes {
  destinationTypes {
    type
    name
    enabled
    disabledMessage
    isContactMethod
    isEPTarget
    isSchedOnCallNotify
    requiredFields {
      fieldID
      labelSingular
      labelPlural
      hint
      hintURL
      placeholderText
      prefix
      inputType
      isSearchSelectable
      supportsValidation
    }
  }
}`

	validateFieldQuery = `query ValidateDestField($input: DestinationFieldValidateInput!) {
  destinationFieldValidate(input: $input)
}`

	displayInfoQuery = `query DestinationDisplayInfo($input: DestinationInput!) {
  destinationDisplayInfo(input: $input) {
    text
    iconURL
    iconAltText
    linkURL
  }
}`

	fieldSearchQuery = `query DestinationFieldSearch($input: DestinationFieldSearchInput!) {
  destinationFieldSearch(input: $input) {
    nodes {
      value
      label
      isFavorite
    }
  }
}`

	fieldValueNameQuery = `query DestinationFieldValueName($input: DestinationFieldValidateInput!) {
  destinationFieldValueName(input: $input)
}`
)

type fieldValueInput struct {
	DestType string `json:"destType"`
	FieldID  string `json:"fieldID"`
	Value    string `json:"value"`
}

// DestinationTypes returns the type catalog. It is fetched once per client;
// concurrent callers share the request. Free text is reduced to plain text.
func (c *Client) DestinationTypes(ctx context.Context) ([]destination.TypeInfo, error) {
	if types, ok := c.cachedTypes(); ok {
		return types, nil
	}

	v, err, _ := c.group.Do("destinationTypes", func() (any, error) {
		if types, ok := c.cachedTypes(); ok {
			return types, nil
		}
		data, err := c.Do(context.WithoutCancel(ctx), destinationTypesQuery, nil)
		if err != nil {
			return nil, err
		}
		raw := data.Get("destinationTypes")
		if !raw.IsArray() {
			return nil, &TransportError{Operation: "DestinationTypes", Err: ErrInvalidResponse}
		}
		var types []destination.TypeInfo
		if err := json.Unmarshal([]byte(raw.Raw), &types); err != nil {
			return nil, &TransportError{Operation: "DestinationTypes", Err: fmt.Errorf("%w: %v", ErrInvalidResponse, err)}
		}
		for i := range types {
			types[i] = types[i].Sanitized()
		}

		c.mu.Lock()
		c.types = types
		c.mu.Unlock()
		c.logger.Info("graphql: destination types loaded", "count", len(types))
		return types, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneTypes(v.([]destination.TypeInfo)), nil
}

func (c *Client) cachedTypes() ([]destination.TypeInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.types == nil {
		return nil, false
	}
	return cloneTypes(c.types), true
}

func cloneTypes(types []destination.TypeInfo) []destination.TypeInfo {
	out := make([]destination.TypeInfo, len(types))
	for i, t := range types {
		t.RequiredFields = append([]destination.FieldConfig(nil), t.RequiredFields...)
		out[i] = t
	}
	return out
}

// Registry builds a registry from the fetched catalog.
func (c *Client) Registry(ctx context.Context) (*destination.Registry, error) {
	types, err := c.DestinationTypes(ctx)
	if err != nil {
		return nil, err
	}
	return destination.NewRegistry(types)
}

// ValidateDestField asks the server whether value is acceptable for the
// field.
func (c *Client) ValidateDestField(ctx context.Context, destType, fieldID, value string) (bool, error) {
	data, err := c.Do(ctx, validateFieldQuery, map[string]any{
		"input": fieldValueInput{DestType: destType, FieldID: fieldID, Value: value},
	})
	if err != nil {
		return false, err
	}
	res := data.Get("destinationFieldValidate")
	if res.Type != gjson.True && res.Type != gjson.False {
		return false, &TransportError{Operation: "ValidateDestField", Err: ErrInvalidResponse}
	}
	return res.Bool(), nil
}

// DestinationDisplayInfo renders the preview of input.
func (c *Client) DestinationDisplayInfo(ctx context.Context, input destination.Input) (destination.DisplayInfo, error) {
	data, err := c.Do(ctx, displayInfoQuery, map[string]any{"input": input})
	if err != nil {
		return destination.DisplayInfo{}, err
	}
	res := data.Get("destinationDisplayInfo")
	if !res.IsObject() {
		return destination.DisplayInfo{}, &TransportError{Operation: "DestinationDisplayInfo", Err: ErrInvalidResponse}
	}
	return destination.DisplayInfo{
		Text:        destination.PlainText(res.Get("text").String()),
		IconURL:     res.Get("iconURL").String(),
		IconAltText: destination.PlainText(res.Get("iconAltText").String()),
		LinkURL:     res.Get("linkURL").String(),
	}, nil
}

// SearchField lists the selectable options of a search-selectable field.
func (c *Client) SearchField(ctx context.Context, in destination.SearchInput) ([]destination.FieldOption, error) {
	data, err := c.Do(ctx, fieldSearchQuery, map[string]any{"input": in})
	if err != nil {
		return nil, err
	}
	nodes := data.Get("destinationFieldSearch.nodes")
	if !nodes.Exists() {
		return nil, &TransportError{Operation: "DestinationFieldSearch", Err: ErrInvalidResponse}
	}
	var out []destination.FieldOption
	nodes.ForEach(func(_, node gjson.Result) bool {
		value := node.Get("value").String()
		if value == "" {
			return true
		}
		label := destination.PlainText(node.Get("label").String())
		if label == "" {
			label = value
		}
		out = append(out, destination.FieldOption{
			Label:      label,
			Value:      value,
			IsFavorite: node.Get("isFavorite").Bool(),
		})
		return true
	})
	return out, nil
}

// FieldValueName resolves the display name of a selected value.
func (c *Client) FieldValueName(ctx context.Context, destType, fieldID, value string) (string, error) {
	data, err := c.Do(ctx, fieldValueNameQuery, map[string]any{
		"input": fieldValueInput{DestType: destType, FieldID: fieldID, Value: value},
	})
	if err != nil {
		return "", err
	}
	return destination.PlainText(data.Get("destinationFieldValueName").String()), nil
}

// VarsFunc maps a submission to mutation variables.
type VarsFunc func(sub form.Submission) map[string]any

// DefaultVars nests the form-level values and the destination payload under
// "input", with the payload at "input.dest".
func DefaultVars(sub form.Submission) map[string]any {
	input := maps.Clone(sub.Values)
	if input == nil {
		input = map[string]any{}
	}
	input["dest"] = sub.Input
	return map[string]any{"input": input}
}

// Mutation returns a SubmitFunc running query. A nil vars uses DefaultVars.
func (c *Client) Mutation(query string, vars VarsFunc) form.SubmitFunc {
	if vars == nil {
		vars = DefaultVars
	}
	return func(ctx context.Context, sub form.Submission) error {
		_, err := c.Do(ctx, query, vars(sub))
		return err
	}
}
