package skills

import "strings"

const frontmatterDelimiter = "---"

// ParseFrontmatter splits a skill definition document into metadata and body.
// It never fails: a document whose first non-blank line is not a delimiter,
// or whose frontmatter block is never closed, degrades to empty metadata
// with the whole input as body. Unrecognized keys are ignored and boolean
// keys are only honoured for the literal values "true" and "false".
func ParseFrontmatter(content string) (Metadata, string) {
	lines := strings.Split(content, "\n")

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start >= len(lines) || strings.TrimSpace(lines[start]) != frontmatterDelimiter {
		return Metadata{}, content
	}

	end := -1
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			end = i
			break
		}
	}
	if end == -1 {
		return Metadata{}, content
	}

	var meta Metadata
	for _, line := range lines[start+1 : end] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "name":
			meta.Name = unquote(value)
		case "description":
			meta.Description = unquote(value)
		case "enabled":
			meta.Enabled = parseBoolLiteral(value)
		case "user-invocable", "user_invocable":
			meta.UserInvocable = parseBoolLiteral(value)
		case "disable-model-invocation", "disable_model_invocation":
			meta.DisableModelInvocation = parseBoolLiteral(value)
		}
	}

	return meta, strings.Join(lines[end+1:], "\n")
}

// parseBoolLiteral accepts only the literals "true" and "false"; anything
// else leaves the field unset rather than defaulting to false.
func parseBoolLiteral(value string) *bool {
	switch value {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
