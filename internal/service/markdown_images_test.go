package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownImageURLs(t *testing.T) {
	content := "intro\n\n![bowl](https://cdn.example/bowl.jpg \"broth\")\n\ntext ![](<https://cdn.example/with space.png>) ![x]( )"
	assert.Equal(t, []string{"https://cdn.example/bowl.jpg", "https://cdn.example/with space.png"}, markdownImageURLs(content))
	assert.Nil(t, markdownImageURLs("no images here"))
}

func TestDefaultCoverImage(t *testing.T) {
	assert.Equal(t, "/static/uploads/a.png", defaultCoverImage("![a](/static/uploads/a.png) ![b](/static/uploads/b.png)"))
	assert.Equal(t, "", defaultCoverImage("plain"))
}
