// Package push turns push-service payloads into navigation targets and keeps
// the backend informed about this installation's push subscriber id.
package push

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

type TargetKind string

const (
	TargetCase    TargetKind = "case"
	TargetCompany TargetKind = "company"
	TargetMessage TargetKind = "message"
	TargetKeyword TargetKind = "keyword"
)

type Target struct {
	Kind  TargetKind
	ID    int
	IsSou bool
}

// Parse reads OneSignal-style payloads. Extra data is looked up in "custom",
// then "a", then "additionalData"; missing fields fall back to the top level.
func Parse(payload map[string]any) (Target, bool) {
	var extra map[string]any
	for _, k := range []string{"custom", "a", "additionalData"} {
		if m, ok := payload[k].(map[string]any); ok {
			extra = m
			break
		}
	}

	kind, _ := lookup(extra, payload, "type").(string)
	caseID, hasCase := firstInt(extra, payload, "id", "case_id")
	companyID, hasCompany := firstInt(extra, payload, "company_id")
	keywordID, hasKeyword := firstInt(extra, payload, "keyword_id")
	isSou := boolLike(lookup(extra, payload, "is_sou"))

	switch TargetKind(kind) {
	case "":
		if hasCase {
			return Target{Kind: TargetCase, ID: caseID, IsSou: isSou}, true
		}
		if hasCompany {
			return Target{Kind: TargetCompany, ID: companyID}, true
		}
	case TargetCase:
		if hasCase {
			return Target{Kind: TargetCase, ID: caseID, IsSou: isSou}, true
		}
	case TargetCompany:
		if hasCompany {
			return Target{Kind: TargetCompany, ID: companyID}, true
		}
	case TargetMessage:
		return Target{Kind: TargetMessage}, true
	case TargetKeyword:
		if hasKeyword {
			return Target{Kind: TargetKeyword, ID: keywordID}, true
		}
	}
	return Target{}, false
}

func lookup(extra, top map[string]any, key string) any {
	if v, ok := extra[key]; ok && v != nil {
		return v
	}
	return top[key]
}

// firstInt tries keys in order in extra, then in order at the top level.
func firstInt(extra, top map[string]any, keys ...string) (int, bool) {
	for _, m := range []map[string]any{extra, top} {
		for _, k := range keys {
			if n, ok := toInt(m[k]); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case json.Number:
		n, err := x.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		return n, err == nil
	}
	return 0, false
}

func boolLike(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes", "y":
			return true
		}
	}
	return false
}

// Handler parses payloads and hands the target to the app's navigation.
type Handler struct {
	open func(Target)
	log  logging.Logger
}

func NewHandler(open func(Target), log logging.Logger) *Handler {
	return &Handler{open: open, log: log.With("component", "push")}
}

// Handle reports whether the payload pointed somewhere.
func (h *Handler) Handle(ctx context.Context, payload map[string]any) bool {
	t, ok := Parse(payload)
	if !ok {
		h.log.Debug(ctx, "push payload without a target", "keys", len(payload))
		return false
	}
	h.log.Info(ctx, "push opened", "kind", t.Kind, "id", t.ID)
	h.open(t)
	return true
}

func (h *Handler) HandleJSON(ctx context.Context, raw []byte) (bool, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false, err
	}
	return h.Handle(ctx, payload), nil
}
