// Package action defines the plain data records dispatched to the store.
//
// Every action serializes to a flat JSON object of the form {"type": ..., ...payload}.
// Action creators share the name of the mutation they drive.
package action

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSetTaskName       Type = "SET_TASK_NAME"
	TypeSetTaskGroup      Type = "SET_TASK_GROUP"
	TypeSetTaskCompletion Type = "SET_TASK_COMPLETE"
	TypeAddComment        Type = "ADD_TASK_COMMENT"
)

type Action interface {
	Type() Type
	// TaskID is the task the action targets.
	TaskID() string
}

type SetTaskNameAction struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (SetTaskNameAction) Type() Type       { return TypeSetTaskName }
func (a SetTaskNameAction) TaskID() string { return a.ID }

type SetTaskGroupAction struct {
	ID    string `json:"id"`
	Group string `json:"group"`
}

func (SetTaskGroupAction) Type() Type       { return TypeSetTaskGroup }
func (a SetTaskGroupAction) TaskID() string { return a.ID }

type SetTaskCompletionAction struct {
	ID         string `json:"id"`
	IsComplete bool   `json:"isComplete"`
}

func (SetTaskCompletionAction) Type() Type       { return TypeSetTaskCompletion }
func (a SetTaskCompletionAction) TaskID() string { return a.ID }

// AddCommentAction carries a fully-formed comment: identity and timestamp are assigned when
// the action is created so the reducer stays deterministic.
type AddCommentAction struct {
	CommentID string    `json:"commentId"`
	Task      string    `json:"taskId"`
	Contents  string    `json:"contents"`
	CreatedAt time.Time `json:"createdAt"`
}

func (AddCommentAction) Type() Type       { return TypeAddComment }
func (a AddCommentAction) TaskID() string { return a.Task }

func SetTaskName(id, name string) SetTaskNameAction {
	return SetTaskNameAction{ID: strings.TrimSpace(id), Name: name}
}

func SetTaskGroup(id, groupID string) SetTaskGroupAction {
	return SetTaskGroupAction{ID: strings.TrimSpace(id), Group: strings.TrimSpace(groupID)}
}

func SetTaskCompletion(id string, isComplete bool) SetTaskCompletionAction {
	return SetTaskCompletionAction{ID: strings.TrimSpace(id), IsComplete: isComplete}
}

func AddComment(taskID, contents string) AddCommentAction {
	return AddCommentAction{
		CommentID: NewCommentID(),
		Task:      strings.TrimSpace(taskID),
		Contents:  strings.TrimSpace(contents),
		CreatedAt: time.Now().UTC(),
	}
}

// NewCommentID returns cmt-<first 8 hex chars of a random uuid>.
func NewCommentID() string {
	return "cmt-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
