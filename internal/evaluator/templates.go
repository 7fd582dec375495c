package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spigell/resume-matcher/internal/jsonmap"
)

// Template is a named job-role definition.
type Template struct {
	Key          string                    `json:"key,omitempty"`
	Title        string                    `json:"title,omitempty"`
	Description  string                    `json:"description,omitempty"`
	Levels       jsonmap.Map[LevelProfile] `json:"levels"`
	BonusSignals []string                  `json:"bonus_signals,omitempty"`
}

// LevelProfile holds what a seniority tier expects from a candidate.
type LevelProfile struct {
	Requirements     []string `json:"requirements,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

// Catalog is the ordered set of templates returned by the catalog endpoint.
type Catalog struct {
	Templates *jsonmap.Map[*Template]
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return c.Templates.Len()
}

// GetTemplates loads the template catalog. The endpoint answers either with
// {"templates": {...}} or with a bare mapping.
func (c *Client) GetTemplates(ctx context.Context) (*Catalog, error) {
	var envelope jsonmap.Map[json.RawMessage]
	if _, err := c.getJSON(ctx, "get templates", c.url(templatesPath), &envelope); err != nil {
		return nil, err
	}

	catalog, err := decodeCatalog(&envelope)
	if err != nil {
		return nil, &NetworkError{Op: "get templates", Err: err}
	}

	c.logger.Debug("loaded templates catalog")

	return catalog, nil
}

// GetTemplate loads a single template by key.
func (c *Client) GetTemplate(ctx context.Context, key string) (*Template, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, &ValidationError{Field: "template", Message: "template key is required"}
	}

	var t Template
	op := fmt.Sprintf("get template %s", key)
	if _, err := c.getJSON(ctx, op, c.url(templatesPath+"/"+url.PathEscape(key)), &t); err != nil {
		return nil, err
	}

	if t.Key == "" {
		t.Key = key
	}

	return &t, nil
}

func decodeCatalog(envelope *jsonmap.Map[json.RawMessage]) (*Catalog, error) {
	entries := envelope
	// A present "templates" key is always the envelope; only its absence means a bare mapping.
	if raw, ok := envelope.Get("templates"); ok {
		nested := jsonmap.New[json.RawMessage]()
		switch {
		case isNull(raw):
		case isObject(raw):
			if err := json.Unmarshal(raw, nested); err != nil {
				return nil, fmt.Errorf("decode templates: %w", err)
			}
		default:
			return nil, fmt.Errorf("decode templates: expected an object, got %s", truncate(raw))
		}
		entries = nested
	}

	templates := jsonmap.New[*Template]()
	var decodeErr error
	entries.Range(func(key string, raw json.RawMessage) bool {
		var t Template
		if err := json.Unmarshal(raw, &t); err != nil {
			decodeErr = fmt.Errorf("decode template %q: %w", key, err)
			return false
		}
		t.Key = key
		templates.Set(key, &t)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}

	return &Catalog{Templates: templates}, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

func truncate(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}

func isObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}
