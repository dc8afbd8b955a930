package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringTaggedBuild(t *testing.T) {
	i := Info{Version: "1.4.0", CommitHash: "abc1234def", BuildTime: "2026-08-01"}
	assert.Equal(t, "donorscope 1.4.0 (commit abc1234def, built 2026-08-01)", i.String())
}

func TestStringDevBuild(t *testing.T) {
	i := Info{Version: "dev", CommitHash: "abc1234def", BuildTime: "unknown"}
	assert.Equal(t, "donorscope dev (commit abc1234def, built unknown)", i.String())
}

func TestShortTruncatesCommitHash(t *testing.T) {
	assert.Equal(t, "abc1234", Info{CommitHash: "abc1234def"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}
