package llm

import (
	"fmt"
	"strings"

	"github.com/satriahrh/arunika/avatar/domain"
)

// SystemPrompt builds the fixed system instruction. The persona is the head;
// the reply format constraints after it do not change.
func SystemPrompt(persona string) string {
	expressions := make([]string, len(domain.FacialExpressions))
	for i, e := range domain.FacialExpressions {
		expressions[i] = string(e)
	}
	animations := make([]string, len(domain.Animations))
	for i, a := range domain.Animations {
		animations[i] = string(a)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(persona))
	b.WriteString("\n")
	fmt.Fprintf(&b, "You will always reply with a JSON array of messages. With a maximum of %d messages.\n", domain.MaxReplyMessages)
	b.WriteString("Each message has a text, facialExpression, and animation property.\n")
	fmt.Fprintf(&b, "The different facial expressions are: %s.\n", joinList(expressions))
	fmt.Fprintf(&b, "The different animations are: %s.\n", joinList(animations))
	b.WriteString(`If you must answer with a JSON object, put the array in its "messages" property.`)
	return b.String()
}

func joinList(items []string) string {
	if len(items) < 2 {
		return strings.Join(items, "")
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
