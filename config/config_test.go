package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadParsesKeyValueLines(t *testing.T) {
	input := "# a comment\nproblem.maxSpeed = 2.5\n\nproblem.mapPath=/tmp/map.txt\n"
	v, err := Load(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, "2.5", v[KeyMaxSpeed])
	require.Equal(t, "/tmp/map.txt", v[KeyMapPath])
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	_, err := Load(strings.NewReader("not a valid line"))
	require.Error(t, err)
}

func TestAccessorsFallBackToDefaults(t *testing.T) {
	v := Values{}
	require.Equal(t, 5.0, v.Float("missing", 5.0))
	require.Equal(t, 7, v.Int("missing", 7))
	require.Equal(t, "fallback", v.String("missing", "fallback"))
}

func TestFloatAccessorIgnoresUnparsableValue(t *testing.T) {
	v := Values{"k": "not-a-number"}
	require.Equal(t, 1.5, v.Float("k", 1.5))
}
