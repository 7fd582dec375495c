package evaluator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Status is the loosely typed health payload of the API.
type Status struct {
	Status  string         `mapstructure:"status"`
	Version string         `mapstructure:"version"`
	Raw     map[string]any `mapstructure:",remain"`
}

// GetStatus probes the status endpoint. Callers treat failures as best-effort.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	data, err := c.getJSON(ctx, "get status", c.url(statusPath), nil)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &NetworkError{Op: "get status", Err: fmt.Errorf("decode response: %w", err)}
	}

	var status Status
	cfg := &mapstructure.DecoderConfig{
		Result:           &status,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	// The payload shape is not fixed; keep everything in Raw when the known keys do not fit.
	if err := decoder.Decode(raw); err != nil {
		c.logger.Debug("status payload has unexpected shape")
		return &Status{Raw: raw}, nil
	}

	return &status, nil
}
