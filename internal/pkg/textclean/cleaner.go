package textclean

import (
	"regexp"
	"strings"
)

// 模型回复只允许纯文本段落，以下规则按顺序执行
var (
	boldRe       = regexp.MustCompile(`\*\*`)
	starRe       = regexp.MustCompile(`\*`)
	hashRe       = regexp.MustCompile(`#`)
	underscoreRe = regexp.MustCompile(`_`)
	backtickRe   = regexp.MustCompile("`")
	quoteRe      = regexp.MustCompile(`> `)
	bulletRe     = regexp.MustCompile(`(?m)^- `)
	orderedRe    = regexp.MustCompile(`(?m)^(\d+)\. `)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// Clean 去除 Markdown 格式标记，只保留纯文本
// 规则反复应用直到结果不再变化，因此 Clean(Clean(s)) == Clean(s)
// 每一轮要么不变要么严格变短，循环必然结束
func Clean(text string) string {
	for {
		next := pass(text)
		if next == text {
			return text
		}
		text = next
	}
}

func pass(text string) string {
	text = boldRe.ReplaceAllString(text, "")
	text = starRe.ReplaceAllString(text, "")
	text = hashRe.ReplaceAllString(text, "")
	text = underscoreRe.ReplaceAllString(text, "")
	text = backtickRe.ReplaceAllString(text, "")
	text = quoteRe.ReplaceAllString(text, "")
	text = bulletRe.ReplaceAllString(text, "")
	text = orderedRe.ReplaceAllString(text, "$1 ")
	text = linkRe.ReplaceAllString(text, "$1") // 保留链接文字
	return strings.TrimSpace(text)
}
