package main

import (
	"context"
	"fmt"

	"github.com/okian/fieldtrace/internal/adapters/http/api"
)

func runSchema(_ context.Context, e env, args []string) error {
	fs := newFlagSet("schema", e)
	name := fs.String("name", "submission", "Schema to print: submission or trace")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	switch *name {
	case "submission":
		return writeJSON(e.stdout, api.SubmissionSchema())
	case "trace":
		return writeJSON(e.stdout, api.TraceSchema())
	default:
		fmt.Fprintf(e.stderr, "schema: unknown schema %q\n", *name)
		return errUsage
	}
}
