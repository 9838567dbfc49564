package mutate

import (
	"taskboard/internal/action"
	"taskboard/internal/model"
	"taskboard/internal/state"
)

// Apply routes an action to its mutation. Unknown action types leave the tree unchanged.
func Apply(t state.Tree, a action.Action) Result {
	switch a := a.(type) {
	case action.SetTaskNameAction:
		return SetTaskName(t, a.ID, a.Name)
	case action.SetTaskGroupAction:
		return SetTaskGroup(t, a.ID, a.Group)
	case action.SetTaskCompletionAction:
		return SetTaskCompletion(t, a.ID, a.IsComplete)
	case action.AddCommentAction:
		return AddComment(t, model.Comment{
			ID:        a.CommentID,
			TaskID:    a.Task,
			Contents:  a.Contents,
			CreatedAt: a.CreatedAt,
		})
	default:
		return unchanged(t)
	}
}

// Reduce is the root state-transition function handed to the store. The boolean reports
// whether the returned tree differs from t.
func Reduce(t state.Tree, a action.Action) (state.Tree, bool) {
	res := Apply(t, a)
	return res.Tree, res.Changed
}
