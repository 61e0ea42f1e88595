package ai

import (
	"regexp"
	"strings"
)

// 正则：以未闭合的字符串字面量结尾（`"key": "...` 被截断）
var openStringPattern = regexp.MustCompile(`:\s*"(?:[^"\\]|\\.)*$`)

// CleanResponseText 去掉响应首尾的Markdown代码栅栏
func CleanResponseText(text string) string {
	clean := strings.TrimSpace(text)

	if strings.HasPrefix(clean, "```json") {
		clean = clean[len("```json"):]
	} else if strings.HasPrefix(clean, "```") {
		clean = clean[len("```"):]
	}

	if strings.HasSuffix(clean, "```") {
		clean = clean[:len(clean)-len("```")]
	}

	return strings.TrimSpace(clean)
}

// RepairJSON 尽力修复被截断的JSON：先补上未闭合的字符串字面量，
// 再扫描字符串字面量以外的括号，按栈序倒序补齐缺失的 ] 和 }，
// 嵌套交错时闭合顺序才正确（如 `[{[{` 补成 `}]}]`）。这只是抢救
// 手段，修复产物必须再经过完整的结构校验才能被采信。
func RepairJSON(jsonStr string) string {
	repaired := jsonStr

	if openStringPattern.MatchString(repaired) {
		repaired += `"`
	}

	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(repaired); i++ {
		c := repaired[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			repaired += "}"
		} else {
			repaired += "]"
		}
	}

	return repaired
}
