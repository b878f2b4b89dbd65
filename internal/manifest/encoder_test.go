package manifest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_RoundTrip(t *testing.T) {
	input := `# Source: app/templates/svc.yaml
apiVersion: v1
kind: Service
metadata:
  name: web # inline comment
  labels:
    app: web
spec:
  ports:
    - port: 80
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: cfg
data:
  z: "1"
  a: "2"
`
	docs, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, docs))

	assert.Equal(t, input, buf.String())
}

func TestEncode_NoDocuments(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestEncoder_Incremental(t *testing.T) {
	docs, err := ReadAll(strings.NewReader("a: 1\n---\nb: 2\n"))
	require.NoError(t, err)

	var buf bytes.Buffer

	enc := NewEncoder(&buf)
	require.NoError(t, enc.Encode(docs[1]))
	require.NoError(t, enc.Encode(docs[0]))
	require.NoError(t, enc.Close())

	assert.Equal(t, "b: 2\n---\na: 1\n", buf.String())
}
