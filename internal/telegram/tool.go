package telegram

import "strings"

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// EscapeMarkdown 转义 Markdown（旧版）中的特殊字符
func EscapeMarkdown(input string) string {
	return markdownEscaper.Replace(input)
}
