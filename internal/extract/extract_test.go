package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Scores</title><style>body { color: red; }</style></head>
<body>
<nav>Home | Scores | Teams</nav>
<script>var tracking = true;</script>
<h1>NBA Scoreboard</h1>
<div>Thunder 112 - Lakers 105</div>
<p>Final score from tonight's game.</p>
<div>Unrelated sidebar text</div>
<footer>Copyright 2025</footer>
</body>
</html>`

func TestVisibleLinesSkipsNonContent(t *testing.T) {
	lines := VisibleLines(samplePage)

	joined := ""
	for _, l := range lines {
		joined += l + "\n"
	}
	assert.Contains(t, joined, "NBA Scoreboard")
	assert.Contains(t, joined, "Thunder 112 - Lakers 105")
	assert.NotContains(t, joined, "tracking")
	assert.NotContains(t, joined, "color: red")
	assert.NotContains(t, joined, "Home | Scores")
	assert.NotContains(t, joined, "Copyright")
}

func TestRelevantContentKeepsContext(t *testing.T) {
	content := RelevantContent(samplePage, []string{"thunder"})

	assert.Contains(t, content, "Thunder 112 - Lakers 105")
	// Surrounding lines come along as context
	assert.Contains(t, content, "NBA Scoreboard")
	assert.Contains(t, content, "Final score")
}

func TestRelevantContentNoTerms(t *testing.T) {
	assert.Empty(t, RelevantContent(samplePage, nil))
	assert.Empty(t, RelevantContent(samplePage, []string{"  "}))
}

func TestRelevantContentNoMatches(t *testing.T) {
	assert.Empty(t, RelevantContent(samplePage, []string{"cricket"}))
}

func TestDedupPreservesFirstSeenOrder(t *testing.T) {
	in := []string{"a", "b", "a", "c", "b", "a"}
	assert.Equal(t, []string{"a", "b", "c"}, Dedup(in, 0))
}

func TestDedupLimit(t *testing.T) {
	in := []string{"a", "b", "c", "d"}
	assert.Equal(t, []string{"a", "b"}, Dedup(in, 2))
}
