package mutate

import (
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/state"
)

// AddComment appends c to the comments collection.
// It is a no-op when the task does not exist, the contents are blank, or a comment with
// the same id is already present (replayed actions).
func AddComment(t state.Tree, c model.Comment) Result {
	c.TaskID = strings.TrimSpace(c.TaskID)
	c.Contents = strings.TrimSpace(c.Contents)
	if c.Contents == "" || strings.TrimSpace(c.ID) == "" {
		return unchanged(t)
	}
	if t.TaskIndex(c.TaskID) < 0 {
		return unchanged(t)
	}
	for _, existing := range t.Comments {
		if existing.ID == c.ID {
			return unchanged(t)
		}
	}

	comments := make([]model.Comment, len(t.Comments), len(t.Comments)+1)
	copy(comments, t.Comments)
	t.Comments = append(comments, c)
	return Result{
		Tree:    t,
		Changed: true,
		EventPayload: map[string]any{
			"commentId": c.ID,
			"taskId":    c.TaskID,
			"contents":  c.Contents,
		},
	}
}
