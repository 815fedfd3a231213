package mapfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadMapParsesAreasAndWorld(t *testing.T) {
	input := `World 0 0 0 10 10
Start 0 1 1 2 2
Goal 0 8 8 9 9
`
	m, err := ReadMap(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, Rectangle{X0: 0, Y0: 0, X1: 10, Y1: 10}, m.World.Rect)
	require.Len(t, m.Areas, 2)
	require.Equal(t, Start, m.Areas[0].Type)
	require.Equal(t, Goal, m.Areas[1].Type)
}

func TestReadMapRejectsMissingWorld(t *testing.T) {
	_, err := ReadMap(strings.NewReader("Start 0 1 1 2 2\n"))
	require.Error(t, err)
}

func TestReadMapRejectsDuplicateWorld(t *testing.T) {
	input := "World 0 0 0 10 10\nWorld 1 0 0 10 10\n"
	_, err := ReadMap(strings.NewReader(input))
	require.Error(t, err)
}

func TestReadMapRejectsMalformedLine(t *testing.T) {
	_, err := ReadMap(strings.NewReader("World 0 0 0 10\n"))
	require.Error(t, err)
}

func TestReadMapRejectsUnknownType(t *testing.T) {
	_, err := ReadMap(strings.NewReader("Nonsense 0 0 0 10 10\n"))
	require.Error(t, err)
}

func TestReadChangesRequiresStrictlyIncreasingTime(t *testing.T) {
	input := "t 5 n 0\nt 5 n 0\n"
	_, err := ReadChanges(strings.NewReader(input))
	require.Error(t, err)
}

func TestReadChangesParsesBlocks(t *testing.T) {
	input := "t 1 n 1\nADD Obstacle 0 1 1 2 2\nt 2 n 0\n"
	blocks, err := ReadChanges(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.Equal(t, int64(1), blocks[0].Time)
	require.Len(t, blocks[0].Ops, 1)
	require.Equal(t, Obstacle, blocks[0].Ops[0].Area.Type)
	require.Len(t, blocks[1].Ops, 0)
}

func TestReadChangesSkipsMalformedOperationsWithoutFailing(t *testing.T) {
	input := "t 1 n 2\nADD Obstacle 0 1 1 2 2\nBOGUS line here\n"
	blocks, err := ReadChanges(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Ops, 1, "the unknown operation should be skipped, not fail the read")
}
