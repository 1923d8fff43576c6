package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeMonths = `
startdate: 2020-01-01
enddate: 2020-03-31
birthdate: 1970-07-06
payouttype: brs
balances:
  oa: 1000
  sa: 500
  ma: 200
allocation:
  below55:
    oa: {amount: 300}
    sa: {amount: 100}
    ma: {amount: 100}
`

func writeRules(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(threeMonths), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	if _, ok := os.LookupEnv("LOG_LEVEL"); !ok {
		t.Setenv("LOG_LEVEL", "disabled")
	}
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

type runDoc struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
	Rows   []struct {
		PeriodKey string `json:"period"`
		Reason    string `json:"reason"`
	} `json:"rows"`
}

func TestRunCommandJSON(t *testing.T) {
	out, _, err := execute(t, "--store", "memory", "run", "--rules", writeRules(t), "--format", "json")
	require.NoError(t, err)

	var doc runDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotEmpty(t, doc.RunID)
	assert.Equal(t, "completed", doc.Status)
	require.Len(t, doc.Rows, 3)
	assert.Equal(t, "2020-01", doc.Rows[0].PeriodKey)
	assert.Equal(t, "2020-03", doc.Rows[2].PeriodKey)
}

func TestRunCommandWritesFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "report.csv")

	out, _, err := execute(t, "--store", "memory", "run", "-r", writeRules(t), "-f", "csv", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "reference,period,age"))
}

func TestRunCommandWarnsOncePerMissingKey(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")

	_, errOut, err := execute(t, "--store", "memory", "run", "--rules", writeRules(t), "--format", "json")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(errOut, `"key":"interestrates.sa"`), errOut)
}

func TestRunCommandUnknownFormat(t *testing.T) {
	_, _, err := execute(t, "run", "--format", "xml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestRunCommandMissingRules(t *testing.T) {
	_, _, err := execute(t, "--store", "memory", "run", "--rules", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read rule table")
}

func TestStoredRunCommands(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "cpfsim.db"))

	out, _, err := execute(t, "run", "--rules", writeRules(t), "--format", "json")
	require.NoError(t, err)
	var doc runDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	out, _, err = execute(t, "rows", doc.RunID, "--format", "csv")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)

	out, _, err = execute(t, "entries", doc.RunID, "--period", "2020-02")
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 3)

	out, _, err = execute(t, "consistency", doc.RunID)
	require.NoError(t, err)
	assert.Contains(t, out, "Consistency check PASSED")
	assert.Contains(t, out, "Rows: 3")
}

func TestRowsCommandRejectsBadID(t *testing.T) {
	_, _, err := execute(t, "rows", "not-a-ulid")
	assert.Error(t, err)
}

func TestRulesFlatten(t *testing.T) {
	out, _, err := execute(t, "rules", "flatten", "--rules", writeRules(t))
	require.NoError(t, err)

	assert.Contains(t, out, "allocation.below55.oa.amount = 300\n")
	assert.Contains(t, out, "balances.sa = 500\n")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "allocation."), "keys are sorted: %q", lines[0])
}

func TestRulesFlattenResolve(t *testing.T) {
	out, _, err := execute(t, "rules", "flatten", "--rules", writeRules(t), "--resolve")
	require.NoError(t, err)
	assert.Contains(t, out, "# missing: interestrates.sa")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cpfsim dev\n", out)
}
