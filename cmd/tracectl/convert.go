package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/fieldtrace/internal/domain/trace"
)

func runEncode(_ context.Context, e env, args []string) error {
	fs := newFlagSet("encode", e)
	var sf seasonFlags
	sf.register(fs)
	in := fs.String("in", "-", "Input trace file")
	raw := fs.Bool("raw", false, "Print only the encoded string, without the envelope")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	t, _, err := loadTrace(*in, &sf, e)
	if err != nil {
		return err
	}
	if *raw {
		_, err := fmt.Fprintln(e.stdout, trace.EncodeTrace(trace.Quantize(t.Points())))
		return err
	}
	out, err := t.Envelope(true)
	if err != nil {
		return err
	}
	return writeJSON(e.stdout, out)
}

func runDecode(_ context.Context, e env, args []string) error {
	fs := newFlagSet("decode", e)
	var sf seasonFlags
	sf.register(fs)
	in := fs.String("in", "-", "Input trace file")
	expanded := fs.Bool("expanded", false, "Print every grid slot instead of the compacted trace")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	t, _, err := loadTrace(*in, &sf, e)
	if err != nil {
		return err
	}
	if *expanded {
		raw, err := json.Marshal(t.Points())
		if err != nil {
			return fmt.Errorf("marshal expanded trace: %w", err)
		}
		return writeJSON(e.stdout, trace.Envelope{State: trace.StateExpanded, Trace: raw})
	}
	out, err := t.Envelope(false)
	if err != nil {
		return err
	}
	return writeJSON(e.stdout, out)
}
