package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippet(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: " \n\t ", expected: ""},
		{name: "plain text", input: "Go 1.24   is\nout", expected: "Go 1.24 is out"},
		{name: "plain text with entities", input: "Fish &amp; chips", expected: "Fish & chips"},
		{name: "inline markup", input: "<p>Hello <b>world</b></p>", expected: "Hello world"},
		{name: "block elements separated", input: "<p>First</p><p>Second</p>", expected: "First Second"},
		{name: "line breaks", input: "one<br>two<br/>three", expected: "one two three"},
		{name: "scripts dropped", input: "<p>Body</p><script>alert(1)</script><style>p{}</style>", expected: "Body"},
		{name: "entities in markup", input: "<p>R&amp;D &lt;3</p>", expected: "R&D <3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Snippet(tt.input))
		})
	}
}

func TestSnippet_FullDocument(t *testing.T) {
	doc := `<!DOCTYPE html>
<html>
<head><title>Release notes</title></head>
<body>
	<article>
		<h1>Release notes</h1>
		<p>This release improves the garbage collector and adds iterator functions to the standard library.</p>
		<p>Upgrading is recommended for all users running production workloads on older toolchains.</p>
	</article>
</body>
</html>`

	got := Snippet(doc)

	assert.Contains(t, got, "improves the garbage collector")
	assert.NotContains(t, got, "<p>")
	assert.NotContains(t, got, "\n")
}
