package collaborator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestTranscriptContents(t *testing.T) {
	contents := transcriptContents([]ChatMessage{
		{Role: "user", Content: "what should I file first"},
		{Role: "model", Content: "start with the visitation log"},
		{Role: "", Content: "a bare turn"},
	})

	require.Len(t, contents, 3)

	// Roles must carry the typed genai values, not raw strings.
	assert.Equal(t, genai.RoleUser, string(contents[0].Role))
	assert.Equal(t, genai.RoleModel, string(contents[1].Role))
	assert.Equal(t, genai.RoleUser, string(contents[2].Role))

	require.Len(t, contents[0].Parts, 1)
	assert.Equal(t, "what should I file first", contents[0].Parts[0].Text)
}
