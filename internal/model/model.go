package model

import "time"

type Group struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Task belongs to exactly one group. Group is a foreign key into the groups collection,
// never an embedded Group.
type Task struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Group      string `json:"group" yaml:"group"`
	IsComplete bool   `json:"isComplete" yaml:"isComplete"`
}

type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	TaskID    string    `json:"taskId" yaml:"taskId"`
	Contents  string    `json:"contents" yaml:"contents"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Event is a persisted record of a dispatched action.
type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}
