package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, driver string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "store:\n  driver: " + driver + "\n  app_id: cli-test\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExportRankings_CSV(t *testing.T) {
	cfgPath := writeConfig(t, "memory")
	outPath := filepath.Join(t.TempDir(), "rankings.csv")

	out, err := execute(t, "-c", cfgPath, "export", "rankings", "-f", "csv", "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, outPath)

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "\ufeff"))
	assert.Contains(t, string(b), "積分")
}

func TestImport_FileIntoMemoryStore(t *testing.T) {
	cfgPath := writeConfig(t, "memory")
	csvPath := filepath.Join(t.TempDir(), "players.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("班級,姓名,學號\n壁球A,陳大文,1\n"), 0o600))

	out, err := execute(t, "-c", cfgPath, "import", "class_players", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "已匯入 1 行")

	_, err = execute(t, "-c", cfgPath, "import", "student_awards", csvPath)
	assert.Error(t, err)
}

func TestPasswd_RequiresStore(t *testing.T) {
	cfgPath := writeConfig(t, "none")
	_, err := execute(t, "-c", cfgPath, "passwd", "secret")
	assert.Error(t, err)

	_, err = execute(t, "-c", writeConfig(t, "memory"), "--driver", "memory", "passwd", "secret")
	assert.NoError(t, err)
}

func TestSetup_UnknownDriverFallsBackForServe(t *testing.T) {
	cfgPath := writeConfig(t, "cassandra")
	_, err := setup(&RootOptions{ConfigPath: cfgPath}, true)
	assert.Error(t, err)

	e, err := setup(&RootOptions{ConfigPath: cfgPath}, false)
	require.NoError(t, err)
	defer e.close()
	assert.False(t, e.tables.Connected())
}
