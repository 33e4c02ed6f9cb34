package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/adgraph/internal/autodiff"
	"github.com/born-ml/adgraph/internal/catalog"
	"github.com/born-ml/adgraph/internal/config"
	"github.com/born-ml/adgraph/internal/numeric"
)

type evalOptions struct {
	file      string
	mode      string
	order     int
	at        []string
	direction []string
	workers   int
}

func newEvalCmd() *cobra.Command {
	var opts evalOptions

	c := &cobra.Command{
		Use:   "eval [function]",
		Short: "Evaluate a catalog function and its derivatives",
		Long: `Evaluates a catalog function at a point.

Modes: eval, forward, reverse, nth, hessian. Coordinates are name=value or
name=v1,v2,... for arrays; missing coordinates use the function's starting
point. With --file the run is read from a YAML or TOML file instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := opts.run(cmd, args)
			if err != nil {
				return err
			}
			return evaluate(cmd.OutOrStdout(), run)
		},
	}

	f := c.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "read the run from a YAML or TOML file")
	f.StringVarP(&opts.mode, "mode", "m", string(config.ModeForward), "evaluation mode")
	f.IntVarP(&opts.order, "order", "n", 1, "derivative order for --mode nth")
	f.StringArrayVar(&opts.at, "at", nil, "coordinate name=value (repeatable)")
	f.StringArrayVar(&opts.direction, "dir", nil, "velocity name=value for --mode nth (repeatable)")
	f.IntVar(&opts.workers, "workers", 0, "kernel goroutines (0 keeps the default)")
	return c
}

// run assembles the run from --file or from the flags.
func (o *evalOptions) run(cmd *cobra.Command, args []string) (config.Run, error) {
	if o.file != "" {
		if len(args) > 0 {
			return config.Run{}, errors.New("eval: give either a function or --file, not both")
		}
		slog.Debug("loading run", "file", o.file)
		return config.Load(o.file, config.FormatAuto)
	}
	if len(args) == 0 {
		return config.Run{}, errors.New("eval: function name required")
	}

	run := config.DefaultConfig()
	run.Function = args[0]
	run.Mode = config.Mode(o.mode)
	run.Order = o.order
	if cmd.Flags().Changed("workers") {
		run.Parallel.Enabled = o.workers > 1
		run.Parallel.Workers = max(o.workers, 1)
	}

	var err error
	if run.Point, err = parseAssignments(o.at); err != nil {
		return config.Run{}, err
	}
	if run.Direction, err = parseAssignments(o.direction); err != nil {
		return config.Run{}, err
	}
	return run, run.Validate()
}

// parseAssignments parses name=value and name=v1,v2,... entries.
func parseAssignments(entries []string) (map[string]any, error) {
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		name, raw, ok := strings.Cut(e, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("bad assignment %q, want name=value", e)
		}
		fields := strings.Split(raw, ",")
		xs := make([]any, len(fields))
		for i, s := range fields {
			x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("bad value in %q: %w", e, err)
			}
			xs[i] = x
		}
		if len(xs) == 1 {
			out[name] = xs[0]
		} else {
			out[name] = xs
		}
	}
	return out, nil
}

// evaluate runs one configured evaluation and prints the result.
func evaluate(out io.Writer, run config.Run) error {
	fn, err := catalog.Lookup(run.Function)
	if err != nil {
		return err
	}
	in := fn.Build()

	b, err := bindings(in, fn.Start, run)
	if err != nil {
		return err
	}
	opts := []autodiff.Option{autodiff.WithKernel(numeric.NewKernel(run.Parallel.Config()))}
	vel, err := run.Velocities()
	if err != nil {
		return err
	}
	for name, v := range vel {
		n, err := in.Graph.Lookup(name)
		if err != nil {
			return err
		}
		opts = append(opts, autodiff.WithDirection(n, v))
	}

	slog.Debug("evaluating", "function", fn.Name, "mode", run.Mode, "nodes", in.Graph.Len())

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "function\t%s\n", fn.Name)
	fmt.Fprintf(w, "expression\t%s\n", in.Root)
	for _, v := range in.Vars {
		fmt.Fprintf(w, "%s\t%v\n", v.Name(), b[v])
	}

	switch run.Mode {
	case config.ModeEval:
		v, err := autodiff.Eval(in.Root, b, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "value\t%v\n", v)

	case config.ModeForward:
		v, p, err := autodiff.Forward(in.Root, b, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "value\t%v\n", v)
		for _, x := range in.Vars {
			fmt.Fprintf(w, "∂/∂%s\t%v\n", x.Name(), p.At(x))
		}

	case config.ModeReverse:
		rg := autodiff.NewReverseGraph(in.Graph, opts...)
		v, err := rg.Evaluate(in.Root, b)
		if err != nil {
			return err
		}
		if err := rg.Outer(in.Root); err != nil {
			return err
		}
		fmt.Fprintf(w, "value\t%v\n", v)
		for _, x := range in.Vars {
			g, err := rg.Gradient(x)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "∂/∂%s\t%v\n", x.Name(), g)
		}

	case config.ModeNth:
		d, err := autodiff.NthDerivative(in.Root, run.Order, b, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "order\t%d\n", run.Order)
		fmt.Fprintf(w, "derivative\t%v\n", d)

	case config.ModeHessian:
		h, err := autodiff.Hessian(in.Root, b, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "value\t%v\n", h.Value())
		for i, x := range in.Vars {
			fmt.Fprintf(w, "∂/∂%s\t%v\n", x.Name(), h.Gradient().At(x))
			for _, y := range in.Vars[i:] {
				fmt.Fprintf(w, "∂²/∂%s∂%s\t%v\n", x.Name(), y.Name(), h.At(x, y))
			}
		}
	}
	return w.Flush()
}

// bindings resolves the run's point against the instance, filling missing
// coordinates from start.
func bindings(in catalog.Instance, start []float64, run config.Run) (autodiff.Bindings, error) {
	values, err := run.Values()
	if err != nil {
		return nil, err
	}
	named := make(map[string]any, len(in.Vars))
	for i, v := range in.Vars {
		named[v.Name()] = start[i]
	}
	for name, v := range values {
		if _, ok := named[name]; !ok {
			return nil, fmt.Errorf("%w: %s has no variable %q", autodiff.ErrUnboundVariable, run.Function, name)
		}
		named[name] = v
	}
	return in.Graph.BindNamed(named)
}
