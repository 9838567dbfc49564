package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownType = errors.New("unknown action type")

// Encode writes a as {"type": ..., ...payload}.
func Encode(a Action) ([]byte, error) {
	if a == nil {
		return nil, errors.New("nil action")
	}
	m, err := Payload(a)
	if err != nil {
		return nil, err
	}
	m["type"] = string(a.Type())
	return json.Marshal(m)
}

// Payload returns the action fields (without "type") as a generic map.
func Payload(a Action) (map[string]any, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Decode parses a flat action object produced by Encode (or by a browser client).
func Decode(b []byte) (Action, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	switch Type(strings.TrimSpace(head.Type)) {
	case TypeSetTaskName:
		var a SetTaskNameAction
		if err := unmarshalInto(b, &a); err != nil {
			return nil, err
		}
		return SetTaskName(a.ID, a.Name), nil
	case TypeSetTaskGroup:
		var a SetTaskGroupAction
		if err := unmarshalInto(b, &a); err != nil {
			return nil, err
		}
		return SetTaskGroup(a.ID, a.Group), nil
	case TypeSetTaskCompletion:
		var a SetTaskCompletionAction
		if err := unmarshalInto(b, &a); err != nil {
			return nil, err
		}
		return SetTaskCompletion(a.ID, a.IsComplete), nil
	case TypeAddComment:
		var a AddCommentAction
		if err := json.Unmarshal(b, &a); err != nil {
			return nil, fmt.Errorf("decode %s: %w", head.Type, err)
		}
		a.Task = strings.TrimSpace(a.Task)
		// Clients may omit identity; fill it in like the action creator would.
		if strings.TrimSpace(a.CommentID) == "" || a.CreatedAt.IsZero() {
			fresh := AddComment(a.Task, a.Contents)
			if strings.TrimSpace(a.CommentID) == "" {
				a.CommentID = fresh.CommentID
			}
			if a.CreatedAt.IsZero() {
				a.CreatedAt = fresh.CreatedAt
			}
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}
}

func unmarshalInto(b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode action: %w", err)
	}
	return nil
}
