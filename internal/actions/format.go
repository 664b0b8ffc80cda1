package actions

import (
	"fmt"
	"strings"

	"github.com/sashanclrp/wappa-expiry/internal/domain"
)

// formatMessageHistory renders the accumulated messages echoed back to an
// inactive user, oldest first.
func formatMessageHistory(messages []domain.UserMessage) string {
	plural := ""
	if len(messages) != 1 {
		plural = "s"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Message History* (%d message%s)\n\n", len(messages), plural)
	b.WriteString("_You went inactive. Here's what you sent:_\n\n")

	for i, msg := range messages {
		text := msg.Text
		if text == "" {
			text = "[No content]"
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, msg.Timestamp.Format("15:04:05"), text)
	}

	b.WriteString("\n_Send another message to start a new session._")
	return b.String()
}
