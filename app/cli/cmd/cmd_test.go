package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"directMail/internal/bootstrap"
	"directMail/internal/testkit"
	"directMail/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, w *testkit.World, args ...string) (string, error) {
	t.Helper()
	opts := &RootOptions{
		cfg: &config.Config{Storage: config.StorageSQLite},
		open: func(*config.Config) (*bootstrap.Deps, error) {
			return &bootstrap.Deps{Store: w.Store}, nil
		},
	}
	root := newRootCommand(opts)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseChainFile(t *testing.T) {
	f, err := ParseChainFile(strings.NewReader(`
title: Autumn
brand_id: 7
first_offer_id: 3
edges:
  3:
    - next_offer_id: 2
      days_to_add: 4
`))
	require.NoError(t, err)
	assert.Equal(t, "Autumn", f.Title)
	assert.Equal(t, uint64(7), *f.BrandID)
	require.Len(t, f.Edges[3], 1)
	assert.Equal(t, uint64(2), f.Edges[3][0].NextOfferID)
	assert.Equal(t, 4, f.Edges[3][0].DaysToAdd)

	_, err = ParseChainFile(strings.NewReader("title: Autumn\n"))
	assert.Error(t, err)
	_, err = ParseChainFile(strings.NewReader("title: A\nfirst_offer_id: 1\ncolour: red\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestChainImport(t *testing.T) {
	w := testkit.NewWorld(t)

	path := filepath.Join(t.TempDir(), "chain.yaml")
	def := fmt.Sprintf("title: Autumn\nfirst_offer_id: %d\nedges:\n  %d:\n    - next_offer_id: %d\n      days_to_add: 2\n",
		w.OfferC.ID, w.OfferC.ID, w.OfferB.ID)
	require.NoError(t, os.WriteFile(path, []byte(def), 0o600))

	out, err := run(t, w, "chain", "import", "-f", path, "--format", "json")
	require.NoError(t, err)

	var created struct {
		ID    uint64 `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Autumn", created.Title)

	chains, err := w.Engine.Chains.ListChains(t.Context())
	require.NoError(t, err)
	assert.Len(t, chains, 2)

	_, err = run(t, w, "chain", "import", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSegmentCommands(t *testing.T) {
	w := testkit.NewWorld(t)
	_, err := w.Engine.Segments.CreateKeyCode(t.Context(), testkit.FrenchKeyCode(w.Campaign.ID))
	require.NoError(t, err)

	campaign := fmt.Sprint(w.Campaign.ID)
	out, err := run(t, w, "segment", "extract", "--campaign", campaign)
	require.NoError(t, err)
	assert.Contains(t, out, "extracted 2 client(s)")

	out, err = run(t, w, "segment", "stats", "--campaign", campaign)
	require.NoError(t, err)
	assert.Contains(t, out, "SPR26#1")
	assert.Contains(t, out, "NOT SENT")

	_, err = run(t, w, "segment", "stats")
	assert.Error(t, err, "campaign flag is required")

	_, err = run(t, w, "segment", "stats", "--campaign", campaign, "--format", "xml")
	assert.Error(t, err)
}

func TestPrintsExport(t *testing.T) {
	w := testkit.NewWorld(t)
	w.Extracted(t)
	dir := t.TempDir()

	args := []string{"prints", "export", "--offer", fmt.Sprint(w.OfferA.ID),
		"--return-address", "40", "--printer", "north", "--date", "2026-10-01"}
	out, err := run(t, w, append(args, "-o", dir)...)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 print(s)")

	data, err := os.ReadFile(filepath.Join(dir, "Spring A_2026-10-01.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Ana")

	out, err = run(t, w, "segment", "stats", "--campaign", fmt.Sprint(w.Campaign.ID), "--format", "json")
	require.NoError(t, err)
	var stats []struct {
		Printed int64 `json:"printed"`
		NotSent int64 `json:"not_sent"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	require.NotEmpty(t, stats)
	assert.Equal(t, int64(2), stats[0].Printed)
	assert.Equal(t, int64(0), stats[0].NotSent)

	_, err = run(t, w, append(args, "-o", "-")...)
	assert.Error(t, err, "nothing left to export")

	_, err = run(t, w, "prints", "export")
	assert.Error(t, err, "offer flag is required")
}
