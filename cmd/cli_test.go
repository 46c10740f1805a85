package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixture = map[string]string{
	"ki/0/events.json": `{"management":{"events":[
		{"mgmt_operations_event":"harvest","date":"2021-06-01","harvest_crop":"grass","harvest_yield_harvest_dw_total":"-99.0"},
		{"mgmt_operations_event":"mowing","date":"2021-07-01"},
		{"mgmt_operations_event":"harvest","date":"2021-08-01","harvest_yield_harvest_dw":250}
	]}}`,
	"ki/0/soil_sensors/T12-1.csv":      "time,moisture\n2021-06-01 00:00:00,0.31\n",
	"ki/0/soil_sensors/T12-2/2021.csv": "time,moisture\n2021-06-01 00:00:00,0.28\n",
	"fieldobs_blocks_translated.geojson": `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"id":"ki_0","site":"ki","site_type":"intensive"},"geometry":{"type":"Point","coordinates":[22.1,60.4]}},
		{"type":"Feature","properties":{"id":"ruukki_1","site":"ruukki","site_type":"advisory"},"geometry":{"type":"Point","coordinates":[25.1,64.7]}}
	]}`,
	"fieldobs_sites_translated.geojson": `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"id":"ki","site_type":"intensive"},"geometry":null},
		{"type":"Feature","properties":{"id":"ruukki","site_type":"advisory"},"geometry":null}
	]}`,
}

// setupMirror writes the fixture to a temp dir and points the dir driver at it.
func setupMirror(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for key, content := range fixture {
		p := filepath.Join(root, filepath.FromSlash(key))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	// Run from an empty dir so no config.yaml is picked up.
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("FIELDOBS_STORE_DRIVER", "dir")
	t.Setenv("FIELDOBS_STORE_DIR", root)
	t.Setenv("FIELDOBS_LOG_LEVEL", "error")
	return root
}

// resetFlags restores every flag of c and its children to its default, since
// the command tree is shared across tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetFlags(child)
	}
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}

func TestCLI_Ls(t *testing.T) {
	root := setupMirror(t)

	out, _, err := execute(t, "ls", "ki/0/soil", "--keys")
	require.NoError(t, err)
	assert.Equal(t, []string{"ki/0/soil_sensors/T12-1.csv", "ki/0/soil_sensors/T12-2/2021.csv"}, decodeJSON[[]string](t, out))

	out, _, err = execute(t, "ls", "ki/0/events")
	require.NoError(t, err)
	urls := decodeJSON[[]string](t, out)
	require.Len(t, urls, 1)
	assert.True(t, strings.HasPrefix(urls[0], "file://"))
	assert.True(t, strings.HasSuffix(urls[0], filepath.ToSlash(filepath.Join(root, "ki/0/events.json"))))

	out, _, err = execute(t, "ls", "ki/0/events", "--long", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "ki/0/events.json")
}

func TestCLI_EventViews(t *testing.T) {
	setupMirror(t)

	out, _, err := execute(t, "events", "ki_0", "harvest-dates")
	require.NoError(t, err)
	assert.Equal(t, []string{"2021-06-01", "2021-08-01"}, decodeJSON[[]string](t, out))

	out, _, err = execute(t, "events", "ki_0", "harvest-amounts")
	require.NoError(t, err)
	assert.JSONEq(t, `[null, 250]`, out)

	out, _, err = execute(t, "events", "ki_0", "species")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"date":"2021-06-01","species":"grass","event_type":"harvest"},
		{"date":"2021-07-01","species":"-99.0","event_type":"mowing"},
		{"date":"2021-08-01","species":"-99.0","event_type":"harvest"}
	]`, out)

	out, _, err = execute(t, "events", "ki_0", "mowing-info", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "date: \"2021-07-01\"")
	assert.Contains(t, out, "event_type: mowing")
}

func TestCLI_EventsMissingDocument(t *testing.T) {
	setupMirror(t)

	out, _, err := execute(t, "events", "ki_5", "species")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestCLI_EventsUnknownView(t *testing.T) {
	setupMirror(t)

	_, _, err := execute(t, "events", "ki_0", "yield")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown view")
}

func TestCLI_OnDate(t *testing.T) {
	setupMirror(t)

	out, _, err := execute(t, "on-date", "ki_0", "2021-08-01")
	require.NoError(t, err)
	assert.JSONEq(t, `{"field_id":"ki_0","date":"2021-08-01","event_type":"harvest","harvest_amount":250}`, out)

	out, _, err = execute(t, "on-date", "ki_0", "2021-07-01")
	require.NoError(t, err)
	assert.JSONEq(t, `{"field_id":"ki_0","date":"2021-07-01","event_type":"mowing","harvest_amount":null}`, out)

	out, _, err = execute(t, "on-date", "ki_0", "2021-07-01", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "harvest_amount  -")

	_, _, err = execute(t, "on-date", "ki_0", "someday")
	require.Error(t, err)
}

func TestCLI_Timeseries(t *testing.T) {
	setupMirror(t)

	out, _, err := execute(t, "timeseries", "field", "ki_0", "soil_sensors")
	require.NoError(t, err)
	assert.Equal(t, "time,moisture\n2021-06-01T00:00:00Z,0.31\n2021-06-01T00:00:00Z,0.28\n", out)

	_, _, err = execute(t, "timeseries", "site", "ki", "ec")
	require.Error(t, err)
}

func TestCLI_Devices(t *testing.T) {
	setupMirror(t)

	out, _, err := execute(t, "devices", "ki", "0", "soil_sensors", "-o", "text")
	require.NoError(t, err)
	assert.Equal(t, "T12-1\nT12-2\n", out)
}

func TestCLI_Boundary(t *testing.T) {
	setupMirror(t)

	out, _, err := execute(t, "boundary", "ki_0")
	require.NoError(t, err)
	feature := decodeJSON[map[string]any](t, out)
	assert.Equal(t, "Feature", feature["type"])
	assert.Equal(t, "ki_0", feature["id"])

	out, _, err = execute(t, "boundary", "ki_0", "--geometry")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Point","coordinates":[22.1,60.4]}`, out)

	out, _, err = execute(t, "boundary", "ki_0", "--ewkb")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "0101000020e6100000"), "got %s", out)

	_, _, err = execute(t, "boundary", "nowhere_0")
	require.Error(t, err)
}

func TestCLI_SitesAndFields(t *testing.T) {
	setupMirror(t)

	out, _, err := execute(t, "sites")
	require.NoError(t, err)
	assert.Equal(t, []string{"ki", "ruukki"}, decodeJSON[[]string](t, out))

	out, _, err = execute(t, "sites", "--type", "advisory")
	require.NoError(t, err)
	assert.Equal(t, []string{"ruukki"}, decodeJSON[[]string](t, out))

	out, _, err = execute(t, "site-types", "-o", "text")
	require.NoError(t, err)
	assert.Equal(t, "intensive\nadvisory\n", out)

	out, _, err = execute(t, "fields", "--site", "ki")
	require.NoError(t, err)
	assert.Equal(t, []string{"ki_0"}, decodeJSON[[]string](t, out))

	out, _, err = execute(t, "fields", "--site", "ki", "--site-type", "advisory")
	require.NoError(t, err)
	assert.Equal(t, []string{"ki_0", "ruukki_1"}, decodeJSON[[]string](t, out))

	out, _, err = execute(t, "fields")
	require.NoError(t, err)
	assert.Len(t, decodeJSON[[]string](t, out), 2)
}

func TestCLI_InvalidOutput(t *testing.T) {
	setupMirror(t)

	_, _, err := execute(t, "sites", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestCLI_InvalidConfig(t *testing.T) {
	setupMirror(t)
	t.Setenv("FIELDOBS_STORE_DIR", "")

	_, _, err := execute(t, "sites")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.dir is required")
}

func TestCLI_MetricsDump(t *testing.T) {
	setupMirror(t)
	t.Setenv("FIELDOBS_METRICS_ENABLED", "true")

	_, stderr, err := execute(t, "sites")
	require.NoError(t, err)
	assert.Contains(t, stderr, "fieldobs_blobstore_requests_total")
}
