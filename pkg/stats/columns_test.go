package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRow() Row {
	return Row{
		PathColumn:      Str("/a/run1"),
		"Instructions":  Num(100),
		"WallTime":      Num(2),
		"ICov":          Num(50),
		"BCov":          Num(75),
		"ICount":        Num(200),
		"RelSolverTime": Num(10),
		"UserTime":      Num(1.5),
		"NumStates":     Num(8),
		"MaxMem":        Num(64),
	}
}

func TestSelect_DefaultProfile(t *testing.T) {
	out := Select(sampleRow(), "default")

	assert.Len(t, out, 7)
	assert.Contains(t, out, PathColumn)
	assert.Contains(t, out, "Instructions")
	assert.Contains(t, out, "RelSolverTime")
	assert.NotContains(t, out, "UserTime")
	assert.NotContains(t, out, "NumStates")
}

func TestSelect_AllKeepsEverything(t *testing.T) {
	row := sampleRow()
	out := Select(row, ProfileAll)

	assert.Equal(t, row, out)
}

func TestSelect_MissingColumnsSilentlyOmitted(t *testing.T) {
	// The reltime profile asks for Rel* columns this row lacks.
	out := Select(Row{
		PathColumn: Str("/a/run1"),
		"WallTime": Num(2),
	}, "reltime")

	assert.Len(t, out, 2)
	assert.Contains(t, out, PathColumn)
	assert.Contains(t, out, "WallTime")
}

func TestValidProfile(t *testing.T) {
	for _, name := range Profiles() {
		assert.True(t, ValidProfile(name), name)
	}

	assert.False(t, ValidProfile("bogus"))
	assert.False(t, ValidProfile(""))
}
