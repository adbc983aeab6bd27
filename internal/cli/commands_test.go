package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	t.Run("command with args", func(t *testing.T) {
		cmd, err := ParseCommand("/send chat-1 Hello there")
		require.NoError(t, err)
		assert.Equal(t, "send", cmd.Name)
		assert.Equal(t, []string{"chat-1", "Hello", "there"}, cmd.Args)
	})

	t.Run("bare command", func(t *testing.T) {
		cmd, err := ParseCommand("/chats")
		require.NoError(t, err)
		assert.Equal(t, "chats", cmd.Name)
		assert.Empty(t, cmd.Args)
	})

	t.Run("surrounding whitespace trimmed", func(t *testing.T) {
		cmd, err := ParseCommand("  /whoami  \n")
		require.NoError(t, err)
		assert.Equal(t, "whoami", cmd.Name)
	})

	t.Run("empty input rejected", func(t *testing.T) {
		_, err := ParseCommand("   ")
		require.Error(t, err)
	})

	t.Run("missing slash rejected", func(t *testing.T) {
		_, err := ParseCommand("send chat-1 hi")
		require.Error(t, err)
	})
}

func TestExecute_UnknownCommand(t *testing.T) {
	h := NewCommandHandler(nil, nil, nil, nil, "")

	_, err := h.Execute(context.Background(), &Command{Name: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestExecute_SessionRequired(t *testing.T) {
	h := NewCommandHandler(nil, nil, nil, nil, "")

	for _, name := range []string{"chats", "send", "group", "statuses", "calls"} {
		_, err := h.Execute(context.Background(), &Command{Name: name})
		require.Error(t, err, "command %q should demand a session", name)
	}

	// whoami reports the signed-out state instead of erroring
	res, err := h.Execute(context.Background(), &Command{Name: "whoami"})
	require.NoError(t, err)
	info, ok := res.(SessionInfo)
	require.True(t, ok)
	assert.False(t, info.SignedIn)
}
