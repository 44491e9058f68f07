package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionGeneration(t *testing.T) {
	tests := []struct {
		shell string
		gen   func(*bytes.Buffer) error
		want  []string
	}{
		{"bash", func(b *bytes.Buffer) error { return rootCmd.GenBashCompletion(b) },
			[]string{"# bash completion for aegis", "__start_aegis"}},
		{"zsh", func(b *bytes.Buffer) error { return rootCmd.GenZshCompletion(b) },
			[]string{"#compdef aegis", "_aegis()"}},
		{"fish", func(b *bytes.Buffer) error { return rootCmd.GenFishCompletion(b, true) },
			[]string{"fish completion for aegis", "complete -c aegis"}},
		{"powershell", func(b *bytes.Buffer) error { return rootCmd.GenPowerShellCompletion(b) },
			[]string{"Register-ArgumentCompleter"}},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.gen(&buf))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestCompletionIncludesCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenBashCompletion(&buf))
	output := buf.String()

	// Commands with local flags get their own functions.
	assert.Contains(t, output, "_aegis_run()")
	assert.Contains(t, output, "_aegis_status()")
	assert.Contains(t, output, "_aegis_completion()")
}

func TestRunValidArgsCompletesOperationIDs(t *testing.T) {
	ids, _ := runCmd.ValidArgsFunction(runCmd, nil, "")
	assert.Equal(t, []string{"security-scan", "malware-scan", "harden-ssh", "enable-firewall"}, ids)

	more, _ := runCmd.ValidArgsFunction(runCmd, []string{"security-scan"}, "")
	assert.Empty(t, more)
}

func TestRootCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"dashboard", "ops", "run", "status", "config", "version", "completion"} {
		assert.Contains(t, joined, want)
	}
}
