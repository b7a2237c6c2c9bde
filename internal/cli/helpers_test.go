package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testCatalog = `items:
  item-1:
    basis_points: 250
    creators:
      - address: carol
        verified: true
        share: 100
`

const testConfig = `store:
  path: %DB%
market:
  admin: admin
  fee_rate: 500
  treasuries:
    - recipient: treasury-a
      rate: 10000
metadata:
  catalog: %CATALOG%
log:
  level: warn
`

// testEnv is a config file, catalog and database in a temp directory.
type testEnv struct {
	dir    string
	config string
	db     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		config: filepath.Join(dir, "bourse.yaml"),
		db:     filepath.Join(dir, "bourse.db"),
	}
	catalog := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte(testCatalog), 0644))

	cfg := bytes.ReplaceAll([]byte(testConfig), []byte("%DB%"), []byte(env.db))
	cfg = bytes.ReplaceAll(cfg, []byte("%CATALOG%"), []byte(catalog))
	require.NoError(t, os.WriteFile(env.config, cfg, 0644))
	return env
}

// run executes the root command with the env's config and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", e.config}, args...)...)
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "bourse %v: %s", args, out)
	return out
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// seedSale initializes the registry, funds bob, mints item-1 to alice
// and lists it at 1,000,000.
func (e *testEnv) seedSale(t *testing.T) {
	t.Helper()
	e.mustRun(t, "init")
	e.mustRun(t, "fund", "bob", "2000000")
	e.mustRun(t, "mint", "item-1", "alice")
	e.mustRun(t, "invoke", "init_user", "--args", `{"owner":"alice"}`)
	e.mustRun(t, "invoke", "init_user", "--args", `{"owner":"bob"}`)
	e.mustRun(t, "invoke", "deposit", "--args", `{"owner":"bob","amount":2000000}`)
	e.mustRun(t, "invoke", "list", "--args", `{"item":"item-1","seller":"alice","price":1000000}`)
}
