package service

import (
	"regexp"
	"strings"
)

// markdownImagePattern 匹配 ![alt](url "title") 与 ![alt](<url>) 两种写法。
var markdownImagePattern = regexp.MustCompile(`!\[[^\]]*]\((<[^>]+>|[^)\s]+)([^)]*)\)`)

// markdownImageURLs 按出现顺序返回正文中的图片链接，去掉尖括号。
func markdownImageURLs(content string) []string {
	matches := markdownImagePattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	urls := make([]string, 0, len(matches))
	for _, groups := range matches {
		if len(groups) < 2 {
			continue
		}
		url := strings.TrimSuffix(strings.TrimPrefix(groups[1], "<"), ">")
		if url = strings.TrimSpace(url); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

// defaultCoverImage 在未指定封面时取正文第一张图片。
func defaultCoverImage(content string) string {
	urls := markdownImageURLs(content)
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}
