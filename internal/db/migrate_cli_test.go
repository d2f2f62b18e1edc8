package db

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrateCommand_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	steps := []struct {
		action string
		want   string
	}{
		{"status", "Current version: 0 (dirty: false)\n"},
		{"up", "Current version: 2 (dirty: false)\n"},
		{"down", "Current version: 1 (dirty: false)\n"},
		{"up", "Current version: 2 (dirty: false)\n"},
	}
	for _, st := range steps {
		var buf bytes.Buffer
		require.NoError(t, RunMigrateCommand(&buf, st.action, path), st.action)
		assert.Equal(t, st.want, buf.String(), st.action)
	}

	// The registry stays usable after the round trip.
	db, err := NewDB(path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.RecordRun(RunRecord{GCodePath: "part.gcode"})
	assert.NoError(t, err)
}

func TestRunMigrateCommand_Help(t *testing.T) {
	for _, action := range []string{"", "help"} {
		var buf bytes.Buffer
		require.NoError(t, RunMigrateCommand(&buf, action, ""))
		assert.Contains(t, buf.String(), "Usage: ampes -db")
	}
}

func TestRunMigrateCommand_Errors(t *testing.T) {
	var buf bytes.Buffer
	err := RunMigrateCommand(&buf, "sideways", "runs.db")
	assert.True(t, errors.Is(err, ErrUnknownMigrateAction))
	assert.Contains(t, buf.String(), "Actions:")

	err = RunMigrateCommand(&buf, "status", "")
	assert.ErrorContains(t, err, "-db")
}
