package session

import (
	"fmt"
	"strings"
)

// MissingFieldsInstruction is a ready-made corrective message for an
// [AugmentFunc] to append to the next prompt. The session itself never calls
// it.
func MissingFieldsInstruction(missing []string) string {
	quoted := make([]string, len(missing))
	for i, key := range missing {
		quoted[i] = fmt.Sprintf("%q", key)
	}
	return fmt.Sprintf("Your previous response was missing these required fields: [%s]. "+
		"Please provide a complete response with ALL required fields according to the schema.",
		strings.Join(quoted, ", "))
}
