// Package dialogflow holds the wire types of the Dialogflow ES fulfillment
// webhook and the session context helpers built on them.
package dialogflow

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FallbackIntent is the display name of the NLU's catch-all intent.
const FallbackIntent = "Default Fallback Intent"

// Request is the fulfillment request body.
type Request struct {
	ResponseID                  string          `json:"responseId"`
	Session                     string          `json:"session"`
	QueryResult                 QueryResult     `json:"queryResult"`
	OriginalDetectIntentRequest OriginalRequest `json:"originalDetectIntentRequest"`
}

// QueryResult is the NLU's reading of one user turn.
type QueryResult struct {
	QueryText                 string     `json:"queryText"`
	Parameters                Parameters `json:"parameters"`
	AllRequiredParamsPresent  bool       `json:"allRequiredParamsPresent,omitempty"`
	FulfillmentText           string     `json:"fulfillmentText,omitempty"`
	OutputContexts            []Context  `json:"outputContexts,omitempty"`
	Intent                    Intent     `json:"intent"`
	IntentDetectionConfidence float64    `json:"intentDetectionConfidence"`
	LanguageCode              string     `json:"languageCode,omitempty"`
}

// Intent identifies the matched intent.
type Intent struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName"`
}

// OriginalRequest carries the messaging platform's own event, untouched.
type OriginalRequest struct {
	Source  string          `json:"source,omitempty"`
	Version string          `json:"version,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Parameters is a loosely typed parameter bag. Values may be scalars or
// single-element lists.
type Parameters map[string]any

// String returns the value at key as a trimmed string, reducing lists to
// their first element. Missing and non-scalar values yield "".
func (p Parameters) String(key string) string {
	v := p[key]
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		v = list[0]
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	}
	return ""
}

// Int returns the value at key as a positive integer, or 0.
func (p Parameters) Int(key string) int {
	n, err := strconv.Atoi(p.String(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Int64 returns the value at key as a positive id, or 0.
func (p Parameters) Int64(key string) int64 {
	n, err := strconv.ParseInt(p.String(key), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Payload returns the raw platform payload, or nil.
func (r *Request) Payload() []byte {
	if len(r.OriginalDetectIntentRequest.Payload) == 0 {
		return nil
	}
	return r.OriginalDetectIntentRequest.Payload
}

// IntentName returns the matched intent's display name.
func (r *Request) IntentName() string {
	return r.QueryResult.Intent.DisplayName
}

// IsFallback reports whether the NLU fell back to its catch-all intent.
func (r *Request) IsFallback() bool {
	return r.QueryResult.Intent.DisplayName == FallbackIntent
}

// Contexts returns the inbound contexts of the session.
func (r *Request) Contexts() Contexts {
	return NewContexts(r.Session, r.QueryResult.OutputContexts)
}
