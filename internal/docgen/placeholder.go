package docgen

import (
	"bytes"
	"fmt"
	"time"
)

// RenderPlaceholder produces the minimal artifact stored in place of a failed
// generation under the fail-isolated policy. It is flagged for mandatory
// human follow-up and never passes verification.
func RenderPlaceholder(docType, projectName, reason string, at time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s: GENERATION FAILED\n\n", Title(docType))
	fmt.Fprintf(&buf, "**Project:** %s\n", projectName)
	fmt.Fprintf(&buf, "**Attempted:** %s\n\n", at.Format(time.RFC3339))
	buf.WriteString("This document could not be generated and requires manual preparation.\n\n")
	fmt.Fprintf(&buf, "Reason: %s\n", reason)
	return buf.Bytes()
}
