package midjourney

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// promptMarker delimits the prompt in bot message content, e.g.
// "**a red fox** - <@123> (fast)".
const promptMarker = "**"

var percentRe = regexp.MustCompile(`\((\d{1,3})%\)`)

// ExtractPrompt returns the first run of text enclosed in "**" markers. If
// the content has no such run, the whole content is returned.
func ExtractPrompt(content string) string {
	p, _ := extractPrompt(content)
	return p
}

// extractPrompt is ExtractPrompt that also reports whether the markers were
// found.
func extractPrompt(content string) (string, bool) {
	start := strings.Index(content, promptMarker)
	if start < 0 {
		return content, false
	}
	rest := content[start+len(promptMarker):]
	end := strings.Index(rest, promptMarker)
	if end < 0 {
		return content, false
	}
	return rest[:end], true
}

// parsePercent returns the progress percentage embedded as "(NN%)".
func parsePercent(content string) (int, bool) {
	m := percentRe.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 100 {
		return 0, false
	}
	return n, true
}

// jobHash extracts the job hash from an image URL. The bot names grid
// images "<user>_<prompt words>_<hash>.png".
func jobHash(uri string) string {
	if uri == "" {
		return ""
	}
	p := uri
	if u, err := url.Parse(uri); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	name = strings.TrimSuffix(name, path.Ext(name))
	if i := strings.LastIndex(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
