package archive

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vwbackup/internal/models"
)

type mockExecutor struct {
	name string
	args []string
	err  error
}

func (m *mockExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	if m.err != nil {
		return []byte("disk full"), m.err
	}
	return []byte{}, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestCreate_Zip(t *testing.T) {
	executor := &mockExecutor{}
	svc := NewWithExecutor(testLogger(), executor)
	settings := models.ArchiveSettings{Enabled: true, Type: models.ArchiveZip}

	path, err := svc.Create(context.Background(), settings, "/tmp", "backup-20260831", []string{"/data"})

	require.NoError(t, err)
	assert.Equal(t, "/tmp/backup-20260831.zip", path)
	assert.Equal(t, "zip", executor.name)
	assert.Equal(t, []string{"-r", "-q", "/tmp/backup-20260831.zip", "/data"}, executor.args)
}

func TestCreate_ZipWithPassword(t *testing.T) {
	executor := &mockExecutor{}
	svc := NewWithExecutor(testLogger(), executor)
	settings := models.ArchiveSettings{Enabled: true, Type: models.ArchiveZip, Password: "pw"}

	_, err := svc.Create(context.Background(), settings, "/tmp", "b", []string{"/data"})

	require.NoError(t, err)
	assert.Equal(t, []string{"-r", "-q", "-P", "pw", "/tmp/b.zip", "/data"}, executor.args)
}

func TestCreate_SevenZip(t *testing.T) {
	executor := &mockExecutor{}
	svc := NewWithExecutor(testLogger(), executor)
	settings := models.ArchiveSettings{Enabled: true, Type: models.ArchiveSevenZip, Password: "pw"}

	path, err := svc.Create(context.Background(), settings, "/tmp", "b", []string{"/data", "/dump.sql"})

	require.NoError(t, err)
	assert.Equal(t, "/tmp/b.7z", path)
	assert.Equal(t, "7z", executor.name)
	assert.Equal(t, []string{"a", "-t7z", "-ppw", "-mhe=on", "/tmp/b.7z", "/data", "/dump.sql"}, executor.args)
}

func TestCreate_Error(t *testing.T) {
	executor := &mockExecutor{err: errors.New("exit status 1")}
	svc := NewWithExecutor(testLogger(), executor)
	settings := models.ArchiveSettings{Enabled: true, Type: models.ArchiveZip}

	_, err := svc.Create(context.Background(), settings, "/tmp", "b", []string{"/data"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
