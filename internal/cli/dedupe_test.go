package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duplicatePods = `kind: Pod
metadata:
  name: a
---
kind: Pod
metadata:
  name: a
spec:
  x: 1
`

func TestDedupe_DropsLaterDuplicates(t *testing.T) {
	stdout, stderr, err := executeCommandWithInput(duplicatePods)
	require.NoError(t, err)

	assert.Equal(t, "kind: Pod\nmetadata:\n  name: a\n", stdout)
	assert.Empty(t, stderr)
}

func TestDedupe_KeepsDistinctDocumentsInOrder(t *testing.T) {
	input := "kind: Pod\nmetadata:\n  name: a\n---\nkind: Pod\nmetadata:\n  name: b\n"

	stdout, _, err := executeCommandWithInput(input)
	require.NoError(t, err)
	assert.Equal(t, input, stdout)
}

func TestDedupe_DefaultKeysIgnoreOtherFields(t *testing.T) {
	input := `apiVersion: v1
kind: Service
metadata:
  name: web
  namespace: one
spec:
  port: 80
---
apiVersion: v2
kind: Service
metadata:
  name: web
  namespace: two
  labels:
    x: y
spec:
  port: 81
`
	stdout, _, err := executeCommandWithInput(input)
	require.NoError(t, err)

	assert.Contains(t, stdout, "namespace: one")
	assert.NotContains(t, stdout, "namespace: two")
	assert.NotContains(t, stdout, "---")
}

func TestDedupe_CustomKey(t *testing.T) {
	input := `metadata:
  namespace: ns1
---
metadata:
  namespace: ns1
---
metadata:
  namespace: ns2
`
	stdout, _, err := executeCommandWithInput(input, "--key", "metadata.namespace")
	require.NoError(t, err)
	assert.Equal(t, "metadata:\n  namespace: ns1\n---\nmetadata:\n  namespace: ns2\n", stdout)
}

func TestDedupe_RepeatedShortKeyFlag(t *testing.T) {
	input := "kind: A\nid: 1\n---\nkind: A\nid: 2\n---\nkind: A\nid: 1\n"

	stdout, _, err := executeCommandWithInput(input, "-k", "kind", "-k", "id")
	require.NoError(t, err)
	assert.Equal(t, "kind: A\nid: 1\n---\nkind: A\nid: 2\n", stdout)
}

func TestDedupe_KeysFromEnvironment(t *testing.T) {
	t.Setenv("DED_KEY", "kind")

	stdout, _, err := executeCommandWithInput("kind: A\nname: x\n---\nkind: A\nname: y\n")
	require.NoError(t, err)
	assert.Equal(t, "kind: A\nname: x\n", stdout)
}

func TestDedupe_MissingKeyIsFatal(t *testing.T) {
	input := "kind: Pod\nmetadata:\n  name: a\n---\nkind: Pod\n"

	stdout, stderr, err := executeCommandWithInput(input)
	require.Error(t, err)

	exitErr := requireExitCode(t, err, 1)
	assert.True(t, exitErr.Reported)

	assert.Empty(t, stdout, "no partial output on failure")
	assert.Contains(t, stderr, `Supplied document does not have required key "metadata"`)
	assert.Contains(t, stderr, "Failed document is:\nkind: Pod\n")
}

func TestDedupe_NonMappingValueIsFatal(t *testing.T) {
	stdout, stderr, err := executeCommandWithInput("kind: Pod\nmetadata: [a]\n")
	require.Error(t, err)
	requireExitCode(t, err, 1)

	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Supplied document cannot be identified")
	assert.Contains(t, stderr, "metadata: [a]")
}

func TestDedupe_MalformedInput(t *testing.T) {
	stdout, _, err := executeCommandWithInput("kind: Pod\nmetadata:\n  name: a\n---\nkind: [oops\n")
	require.Error(t, err)

	exitErr := requireExitCode(t, err, 1)
	assert.False(t, exitErr.Reported)
	assert.Contains(t, err.Error(), "parsing document 1")
	assert.Empty(t, stdout)
}

func TestDedupe_DuplicateMappingKey(t *testing.T) {
	input := "kind: Pod\nmetadata:\n  name: a\n---\nkind: A\nkind: B\nmetadata:\n  name: x\n"

	stdout, _, err := executeCommandWithInput(input)
	require.Error(t, err)

	exitErr := requireExitCode(t, err, 1)
	assert.False(t, exitErr.Reported)
	assert.Contains(t, err.Error(), "parsing document 1")
	assert.Contains(t, err.Error(), `mapping key "kind" already defined`)
	assert.Empty(t, stdout, "no partial output on failure")
}

func TestDedupe_EmptyInput(t *testing.T) {
	stdout, _, err := executeCommandWithInput("")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestDedupe_PreservesHelmSourceComments(t *testing.T) {
	input := `---
# Source: app/templates/svc.yaml
kind: Service
metadata:
  name: web
---
# Source: app/charts/web/templates/svc.yaml
kind: Service
metadata:
  name: web
`
	stdout, _, err := executeCommandWithInput(input)
	require.NoError(t, err)

	assert.Contains(t, stdout, "# Source: app/templates/svc.yaml")
	assert.NotContains(t, stdout, "app/charts/web")
}

func TestDedupe_Idempotent(t *testing.T) {
	input := duplicatePods + "---\nkind: Service\nmetadata:\n  name: a\n---\nkind: Pod\nmetadata:\n  name: b\n"

	once, _, err := executeCommandWithInput(input)
	require.NoError(t, err)

	twice, _, err := executeCommandWithInput(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestDedupe_InputAndOutputFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "rendered.yaml")
	out := filepath.Join(dir, "out", "deduped.yaml")

	require.NoError(t, os.WriteFile(in, []byte(duplicatePods), 0o600))

	stdout, _, err := executeCommand("--input", in, "--output", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	got, err := os.ReadFile(out) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "kind: Pod\nmetadata:\n  name: a\n", string(got))
}

func TestDedupe_MissingInputFile(t *testing.T) {
	_, _, err := executeCommand("--input", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	requireExitCode(t, err, 1)
	assert.Contains(t, err.Error(), "opening input")
}

func TestDedupe_ConfigFileKeys(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "ded.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("key:\n  - metadata.namespace\n"), 0o600))

	stdout, _, err := executeCommandWithInput(
		"metadata:\n  namespace: a\n---\nmetadata:\n  namespace: a\n",
		"--config", cfg,
	)
	require.NoError(t, err)
	assert.Equal(t, "metadata:\n  namespace: a\n", stdout)
}

func TestDedupe_DebugLogging(t *testing.T) {
	_, stderr, err := executeCommandWithInput(duplicatePods, "--log-level", "debug")
	require.NoError(t, err)

	assert.Contains(t, stderr, "dropping duplicate document")
	assert.Contains(t, stderr, "identity=Pod-a")
}

func TestDedupe_DebugLogsConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "ded.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log-level: debug\n"), 0o600))

	_, stderr, err := executeCommandWithInput(duplicatePods, "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, stderr, "configuration loaded")
	assert.Contains(t, stderr, "configFile="+cfg)
}
