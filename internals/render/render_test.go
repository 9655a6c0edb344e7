package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Friendbook/internals/models"
)

func renderPage(t *testing.T, name string, v View) string {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, name, v))
	return buf.String()
}

func TestNavWithoutIdentity(t *testing.T) {
	out := renderPage(t, PageLogin, View{})

	assert.Contains(t, out, `href="/login"`)
	assert.Contains(t, out, `href="/register"`)
	assert.NotContains(t, out, "Hello,")
	assert.NotContains(t, out, `href="/logout"`)
	assert.NotContains(t, out, "alert-info")
	assert.Contains(t, out, "<h2>Login</h2>")
}

func TestNavWithIdentity(t *testing.T) {
	out := renderPage(t, PageCreatePost, View{Identity: &models.Identity{Id: 1, Username: "alice"}})

	assert.Contains(t, out, "Hello, alice")
	assert.Contains(t, out, `href="/create_post"`)
	assert.Contains(t, out, `href="/logout"`)
	assert.NotContains(t, out, `href="/register"`)
	assert.Contains(t, out, `name="subject"`)
}

func TestFlashBanner(t *testing.T) {
	out := renderPage(t, PageRegister, View{Flashes: []string{"Username already exists."}})

	assert.Contains(t, out, "alert-info")
	assert.Contains(t, out, "<div>Username already exists.</div>")
}

func TestFeedListsPostsInGivenOrder(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	out := renderPage(t, PageFeed, View{Posts: []models.FeedItem{
		{Id: 2, Subject: "Second", Content: "b", Username: "bob", CreatedAt: at},
		{Id: 1, Subject: "First", Content: "a", Username: "alice", CreatedAt: at},
	}})

	assert.Contains(t, out, "Recent Posts")
	assert.Contains(t, out, "by <strong>bob</strong> at 2024-05-01 10:30:00")
	assert.Less(t, strings.Index(out, "Second"), strings.Index(out, "First"))
}

func TestUserContentIsEscaped(t *testing.T) {
	out := renderPage(t, PageFeed, View{
		Identity: &models.Identity{Username: "<b>eve</b>"},
		Posts: []models.FeedItem{{
			Subject:  "<script>alert(1)</script>",
			Content:  `"quoted" & <i>tagged</i>`,
			Username: "<b>eve</b>",
		}},
	})

	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.NotContains(t, out, "<b>eve</b>")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, out, "&lt;i&gt;tagged&lt;/i&gt;")
}

func TestUnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.Error(t, r.Page(&buf, "nope", View{}))
	assert.Zero(t, buf.Len())
}
