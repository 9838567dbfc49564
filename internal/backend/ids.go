package backend

import (
	"strings"

	"github.com/google/uuid"
)

func newEventID() string {
	return "evt-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
