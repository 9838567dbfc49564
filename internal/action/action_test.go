package action

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestCreators_TrimIDs(t *testing.T) {
	if got := SetTaskName(" t1 ", "  Buy milk "); got.ID != "t1" || got.Name != "  Buy milk " {
		t.Fatalf("SetTaskName = %+v", got)
	}
	if got := SetTaskGroup("t1", " g2 "); got.Group != "g2" {
		t.Fatalf("SetTaskGroup = %+v", got)
	}
	if got := SetTaskCompletion("t1", true); !got.IsComplete || got.Type() != TypeSetTaskCompletion {
		t.Fatalf("SetTaskCompletion = %+v", got)
	}
}

func TestAddComment_AssignsIdentity(t *testing.T) {
	a := AddComment("t1", " hello ")
	if !strings.HasPrefix(a.CommentID, "cmt-") || len(a.CommentID) != len("cmt-")+8 {
		t.Fatalf("unexpected comment id %q", a.CommentID)
	}
	if a.Contents != "hello" {
		t.Fatalf("contents = %q", a.Contents)
	}
	if a.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt")
	}
	if b := AddComment("t1", "x"); b.CommentID == a.CommentID {
		t.Fatalf("expected distinct ids")
	}
}

func TestEncode_FlatObject(t *testing.T) {
	b, err := Encode(SetTaskCompletion("t1", false))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{"type": "SET_TASK_COMPLETE", "id": "t1", "isComplete": false}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("Encode:\n got: %#v\nwant: %#v", m, want)
	}
}

func TestDecode(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   Action
	}{
		{name: "name", in: SetTaskName("t1", "Buy oat milk")},
		{name: "group", in: SetTaskGroup("t1", "g2")},
		{name: "completion", in: SetTaskCompletion("t1", true)},
		{name: "comment", in: AddCommentAction{CommentID: "cmt-1", Task: "t1", Contents: "hi", CreatedAt: ts}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Encode(tt.in)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Decode(b)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.in) {
				t.Fatalf("Decode:\n got: %#v\nwant: %#v", got, tt.in)
			}
		})
	}
}

func TestDecode_CommentWithoutIdentity(t *testing.T) {
	got, err := Decode([]byte(`{"type":"ADD_TASK_COMMENT","taskId":"t1","contents":"hi"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	c, ok := got.(AddCommentAction)
	if !ok {
		t.Fatalf("expected AddCommentAction, got %T", got)
	}
	if c.CommentID == "" || c.CreatedAt.IsZero() || c.TaskID() != "t1" {
		t.Fatalf("expected identity filled in: %+v", c)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"NOPE"}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestDecode_TrimsIDs(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{in: `{"type":"SET_TASK_NAME","id":" t1 ","name":"x"}`, want: SetTaskName("t1", "x")},
		{in: `{"type":"SET_TASK_GROUP","id":"t1 ","group":" g2"}`, want: SetTaskGroup("t1", "g2")},
		{in: `{"type":"SET_TASK_COMPLETE","id":" t1","isComplete":true}`, want: SetTaskCompletion("t1", true)},
	}
	for _, tt := range tests {
		got, err := Decode([]byte(tt.in))
		if err != nil {
			t.Fatalf("Decode(%s): %v", tt.in, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Decode(%s) = %#v, want %#v", tt.in, got, tt.want)
		}
	}

	got, err := Decode([]byte(`{"type":"ADD_TASK_COMMENT","taskId":" t1 ","contents":"hi"}`))
	if err != nil {
		t.Fatalf("Decode comment: %v", err)
	}
	if got.TaskID() != "t1" {
		t.Fatalf("comment task id = %q", got.TaskID())
	}
}
