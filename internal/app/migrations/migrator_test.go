package migrations

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFilesOrdersSQLFiles(t *testing.T) {
	src := fstest.MapFS{
		"002_events.sql": {Data: []byte("SELECT 1;")},
		"001_init.sql":   {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("notes")},
	}
	files, err := ListFiles(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_events.sql"}, files)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "001", Version("001_init.sql"))
	assert.Equal(t, "010", Version("sql/010_add_index.sql"))
}

func TestEmbeddedSchemaDeclaresConstraints(t *testing.T) {
	files, err := ListFiles(Files())
	require.NoError(t, err)
	require.NotEmpty(t, files)

	// repositories map these constraint names onto domain errors
	body, err := fsReadAll(files)
	require.NoError(t, err)
	for _, name := range []string{"registrations_live_uq", "semesters_name_key", "courses_code_key", "course_sections_occupied_check", "rooms_code_key"} {
		assert.Contains(t, body, name)
	}
}

func fsReadAll(files []string) (string, error) {
	var out string
	for _, f := range files {
		b, err := fs.ReadFile(Files(), f)
		if err != nil {
			return "", err
		}
		out += string(b)
	}
	return out, nil
}
