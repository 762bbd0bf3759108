package launcher

import (
	"bytes"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type started struct {
	args   []string
	detach bool
}

func recorder(out *[]started, err error) RunFunc {
	return func(c *exec.Cmd, detach bool) error {
		*out = append(*out, started{args: c.Args, detach: detach})
		return err
	}
}

func TestRunTerminal_ConfiguredTerminal(t *testing.T) {
	var got []started
	l := New(
		WithTerminal([]string{"x-terminal-emulator", "-e", "sh", "-c"}),
		WithRunFunc(recorder(&got, nil)),
	)

	require.NoError(t, l.RunTerminal("brew install wget || exec $SHELL"))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"x-terminal-emulator", "-e", "sh", "-c", "brew install wget || exec $SHELL"}, got[0].args)
	assert.True(t, got[0].detach)
}

func TestRunTerminal_Inline(t *testing.T) {
	var got []started
	l := New(WithRunFunc(recorder(&got, nil)))

	require.NoError(t, l.RunTerminal("brew info wget ; exec $SHELL"))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"sh", "-c", "brew info wget ; exec $SHELL"}, got[0].args)
	assert.False(t, got[0].detach)
}

func TestRunTerminal_InlineStdio(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not on PATH")
	}
	var out bytes.Buffer
	l := New(WithStdio(strings.NewReader(""), &out, &out))

	require.NoError(t, l.RunTerminal("echo hello"))
	assert.Equal(t, "hello\n", out.String())
	assert.Error(t, l.RunTerminal("exit 3"))
}

func TestRunTerminal_Errors(t *testing.T) {
	var got []started
	l := New(WithTerminal([]string{"term"}), WithRunFunc(recorder(&got, errors.New("boom"))))

	assert.Error(t, l.RunTerminal(""))
	assert.Empty(t, got)

	err := l.RunTerminal("true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "term")
}

func TestOpenURL(t *testing.T) {
	var got []started
	l := New(WithOpener([]string{"open"}), WithRunFunc(recorder(&got, nil)))

	require.NoError(t, l.OpenURL("https://formulae.brew.sh/formula/wget"))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"open", "https://formulae.brew.sh/formula/wget"}, got[0].args)
	assert.True(t, got[0].detach)

	for _, bad := range []string{"", "file:///etc/passwd", "javascript:alert(1)", "https://", "not a url"} {
		assert.ErrorIs(t, l.OpenURL(bad), ErrInvalidURL, bad)
	}
	assert.Len(t, got, 1)
}

func TestDefaultOpener(t *testing.T) {
	l := New()
	require.NotEmpty(t, l.opener)
	if runtime.GOOS == "darwin" {
		assert.Equal(t, []string{"open"}, l.opener)
	}
	if runtime.GOOS == "linux" {
		assert.Equal(t, []string{"xdg-open"}, l.opener)
	}
}
