package skills

import (
	"fmt"
	"strings"
)

// serialization overhead per skill entry (tags, indentation, newlines)
const entryOverhead = 150

// PromptBudget bounds the size of the assembled skills block.
type PromptBudget struct {
	MaxSkills        int
	MaxCharsPerSkill int
	MaxTotalChars    int
	IncludeContent   bool
}

// Prompt is the rendered skills block plus the skills that made it in.
type Prompt struct {
	Text     string
	Included []Record
}

const promptPreamble = `When you are asked to perform a task, check whether any of the skills below can help you complete it more effectively. When a skill applies, read its definition file and follow its instructions before responding. Treat skill directories as read-only reference material.`

const noSkillsSentinel = "No skills found."

// AssemblePrompt greedily selects skills from the given list, in order,
// until either MaxSkills is reached or the next skill would push the
// estimated character budget past MaxTotalChars. The first overflowing
// skill ends selection; later, smaller skills are not considered. The
// policy is deliberately order-sensitive and non-optimal: determinism
// matters more than packing density here.
func AssemblePrompt(records []Record, budget PromptBudget) Prompt {
	var included []Record
	var rendered []string
	budgetUsed := 0

	for _, record := range records {
		if len(included) >= budget.MaxSkills {
			break
		}

		content := ""
		if budget.IncludeContent {
			content = clampChars(record.Content, budget.MaxCharsPerSkill)
		}

		cost := len(record.Name) + len(record.Description) + len(record.DefinitionFilePath) + len(content) + entryOverhead
		if budgetUsed+cost > budget.MaxTotalChars {
			break
		}

		budgetUsed += cost
		included = append(included, record)
		rendered = append(rendered, renderEntry(record, content))
	}

	var sb strings.Builder
	sb.WriteString(promptPreamble)
	sb.WriteString("\n\n## Available Skills\n\n")
	if len(included) == 0 {
		sb.WriteString(noSkillsSentinel)
		sb.WriteString("\n")
	} else {
		sb.WriteString(strings.Join(rendered, "\n"))
	}

	return Prompt{Text: sb.String(), Included: included}
}

func renderEntry(record Record, content string) string {
	var sb strings.Builder
	sb.WriteString("<skill>\n")
	fmt.Fprintf(&sb, "  <id>%s</id>\n", escapeText(record.ID))
	fmt.Fprintf(&sb, "  <name>%s</name>\n", escapeText(record.Name))
	fmt.Fprintf(&sb, "  <description>%s</description>\n", escapeText(record.Description))
	fmt.Fprintf(&sb, "  <location>%s</location>\n", escapeText(record.DefinitionFilePath))
	fmt.Fprintf(&sb, "  <source>%s</source>\n", escapeText(string(record.Source)))
	if content != "" {
		fmt.Fprintf(&sb, "  <instructions>\n%s\n  </instructions>\n", content)
	}
	sb.WriteString("</skill>\n")
	return sb.String()
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func clampChars(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
