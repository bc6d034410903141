package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calmux/internal/temporal"
)

// run executes a fresh command tree against dbPath and returns stdout.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append(args, "--db", dbPath, "--user", "alice", "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func TestAccountsAddListRemove(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calmux.db")

	out, err := run(t, dbPath, "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No accounts connected.")

	out, err = run(t, dbPath, "accounts", "add",
		"--provider", "Microsoft",
		"--access-token", "at",
		"--refresh-token", "rt",
		"--email", "alice@contoso.com",
		"--expires-in", "50m")
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 4, out)
	id := fields[3]

	out, err = run(t, dbPath, "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "microsoft")
	assert.Contains(t, out, "alice@contoso.com")

	_, err = run(t, dbPath, "accounts", "remove", "missing")
	assert.Error(t, err)

	out, err = run(t, dbPath, "accounts", "remove", id)
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = run(t, dbPath, "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No accounts connected.")
}

func TestAccountsAdd_Validation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calmux.db")

	_, err := run(t, dbPath, "accounts", "add", "--provider", "apple", "--access-token", "a", "--refresh-token", "r")
	assert.ErrorContains(t, err, "unsupported provider")

	_, err = run(t, dbPath, "accounts", "add", "--provider", "google", "--access-token", "a")
	assert.ErrorContains(t, err, "--refresh-token")
}

func TestAccountsConnect_NoCode(t *testing.T) {
	t.Setenv("CALMUX_GOOGLE_CLIENT_ID", "gid")
	dbPath := filepath.Join(t.TempDir(), "calmux.db")

	out, err := run(t, dbPath, "accounts", "connect", "--provider", "google")
	require.Error(t, err)
	assert.Contains(t, out, "accounts.google.com")
}

func TestEvents_NoAccounts(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calmux.db")

	out, err := run(t, dbPath, "events", "list", "--from", "2025-03-01", "--to", "2025-03-31")
	require.NoError(t, err)
	assert.Contains(t, out, "No events.")

	out, err = run(t, dbPath, "events", "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"events": []`)

	_, err = run(t, dbPath, "events", "export")
	assert.ErrorContains(t, err, "no events to export")

	_, err = run(t, dbPath, "events", "list", "--from", "2025-03-31", "--to", "2025-03-01")
	assert.ErrorContains(t, err, "--to must not be before --from")
}

func TestEventWindow_PlainDatesUseTimeZone(t *testing.T) {
	w := eventWindow{from: "2025-03-14", to: "2025-03-15T00:00:00Z"}

	req, err := w.request("Europe/Paris")
	require.NoError(t, err)
	require.NotNil(t, req.TimeMin)
	assert.True(t, req.TimeMin.Equal(time.Date(2025, 3, 13, 23, 0, 0, 0, time.UTC)))
	assert.True(t, req.TimeMax.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Europe/Paris", req.TimeZone)

	_, err = (&eventWindow{from: "next week"}).request("UTC")
	assert.ErrorContains(t, err, "--from")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "-", formatValue(temporal.Value{}, time.UTC))
	assert.Equal(t, "2025-03-14", formatValue(temporal.PlainDate(2025, 3, 14), time.UTC))
	assert.Equal(t, "2025-03-14 10:00",
		formatValue(temporal.Instant(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)), time.FixedZone("CET", 3600)))
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "calmux version "+version)
}
