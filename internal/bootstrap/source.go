package bootstrap

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"

	"cosurvival/pkg/platform/sentinel"
)

const (
	// ScriptID is the id of the JSON script element carrying the payload.
	ScriptID = "cosurvival-bootstrap"
	// GlobalName is the legacy inline assignment target.
	GlobalName = "__COSURVIVAL_BOOTSTRAP__"
	// EnvVar is the default environment variable for FromEnv.
	EnvVar = "COSURVIVAL_BOOTSTRAP"
)

// Source returns the raw JSON payload. sentinel.ErrNotFound means no payload
// was embedded.
type Source func() ([]byte, error)

// FromBytes serves a fixed payload.
func FromBytes(b []byte) Source {
	return func() ([]byte, error) {
		if len(bytes.TrimSpace(b)) == 0 {
			return nil, sentinel.ErrNotFound
		}
		return b, nil
	}
}

// FromEnv reads the payload from an environment variable.
func FromEnv(name string) Source {
	return func() ([]byte, error) {
		v, ok := os.LookupEnv(name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil, sentinel.ErrNotFound
		}
		return []byte(v), nil
	}
}

// FromFile reads a JSON payload file, or an HTML page when the file name ends in .html/.htm.
func FromFile(path string) Source {
	return func() ([]byte, error) {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, sentinel.ErrNotFound
			}
			return nil, fmt.Errorf("open bootstrap file: %w", err)
		}
		defer f.Close()
		lower := strings.ToLower(path)
		if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
			return extractFromHTML(f)
		}
		return io.ReadAll(f)
	}
}

// FromHTML extracts the payload from a served dashboard page. Both the JSON
// script element and the legacy inline global assignment are recognised.
func FromHTML(r io.Reader) Source {
	return func() ([]byte, error) {
		return extractFromHTML(r)
	}
}

func extractFromHTML(r io.Reader) ([]byte, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bootstrap page: %w", err)
	}
	var inline []byte
	var found []byte
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" {
			body := scriptText(n)
			if getAttr(n, "id") == ScriptID {
				found = []byte(strings.TrimSpace(body))
				return
			}
			if inline == nil {
				inline = inlineAssignment(body)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	switch {
	case len(found) > 0:
		return found, nil
	case len(inline) > 0:
		return inline, nil
	default:
		return nil, sentinel.ErrNotFound
	}
}

// inlineAssignment extracts the object literal from
// `window.__COSURVIVAL_BOOTSTRAP__ = {...};`.
func inlineAssignment(script string) []byte {
	idx := strings.Index(script, GlobalName)
	if idx < 0 {
		return nil
	}
	rest := script[idx+len(GlobalName):]
	eq := strings.Index(rest, "=")
	if eq < 0 {
		return nil
	}
	rest = strings.TrimSpace(rest[eq+1:])
	start := strings.Index(rest, "{")
	end := strings.LastIndex(rest, "}")
	if start != 0 || end < start {
		return nil
	}
	return []byte(rest[start : end+1])
}

func scriptText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
