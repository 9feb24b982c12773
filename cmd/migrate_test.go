// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/sprout/growth"
)

func TestWithMigrationDBRequiresURL(t *testing.T) {
	t.Parallel()

	called := false
	cmd := &cli.Command{
		Name:  "up",
		Flags: []cli.Flag{&cli.StringFlag{Name: "database-url"}},
		Action: withMigrationDB(func(context.Context, *sql.DB) error {
			called = true
			return nil
		}),
	}

	err := cmd.Run(context.Background(), []string{"up"})
	if !errors.Is(err, errDatabaseURLRequired) {
		t.Fatalf("expected errDatabaseURLRequired, got %v", err)
	}

	if called {
		t.Fatalf("action must not run without a database url")
	}
}

func TestMigrateCommandNames(t *testing.T) {
	t.Parallel()

	want := []string{"up", "down", "redo", "status", "version", "create", "references"}
	if len(CmdMigrate.Commands) != len(want) {
		t.Fatalf("expected %d subcommands, got %d", len(want), len(CmdMigrate.Commands))
	}

	for i, name := range want {
		if got := CmdMigrate.Commands[i].Name; got != name {
			t.Fatalf("subcommand %d: expected %q, got %q", i, name, got)
		}
	}
}

func TestWriteReferenceCounts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writeReferenceCounts(&buf, map[growth.MeasurementType]int{
		growth.Weight:            122,
		growth.HeadCircumference: 122,
		growth.Length:            120,
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}

	if !strings.HasPrefix(lines[0], "head_circumference") || !strings.HasSuffix(lines[0], "122 rows") {
		t.Fatalf("unexpected first line %q", lines[0])
	}

	if !strings.HasPrefix(lines[1], "length") || !strings.HasSuffix(lines[1], "120 rows") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}
