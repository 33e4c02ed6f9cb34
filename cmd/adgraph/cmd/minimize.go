package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/adgraph/internal/catalog"
	"github.com/born-ml/adgraph/internal/optim"
)

type minimizeOptions struct {
	optimizer string
	lr        float64
	momentum  float64
	steps     int
	tol       float64
	from      string
	every     int
}

func newMinimizeCmd() *cobra.Command {
	var opts minimizeOptions

	c := &cobra.Command{
		Use:   "minimize <function>",
		Short: "Minimize a catalog function",
		Long: `Minimizes a catalog function with reverse-mode gradients.

Optimizers: sgd, adam, newton (uses the exact Hessian).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.minimize(cmd, args[0])
		},
	}

	f := c.Flags()
	f.StringVarP(&opts.optimizer, "optimizer", "o", "newton", "sgd, adam or newton")
	f.Float64Var(&opts.lr, "lr", 0, "learning rate (0 selects the optimizer default)")
	f.Float64Var(&opts.momentum, "momentum", 0, "momentum for sgd")
	f.IntVar(&opts.steps, "steps", 1000, "maximum number of steps")
	f.Float64Var(&opts.tol, "tol", 1e-8, "gradient tolerance")
	f.StringVar(&opts.from, "from", "", "starting point v1,v2,... (default: the function's start)")
	f.IntVar(&opts.every, "log-every", 100, "log progress every n steps at debug level")
	return c
}

func (o *minimizeOptions) optimizerFor() (optim.Optimizer, error) {
	switch o.optimizer {
	case "sgd":
		return optim.NewSGD(optim.SGDConfig{LR: o.lr, Momentum: o.momentum}), nil
	case "adam":
		return optim.NewAdam(optim.AdamConfig{LR: o.lr}), nil
	case "newton":
		return optim.NewNewton(optim.NewtonConfig{LR: o.lr}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q", o.optimizer)
	}
}

func (o *minimizeOptions) minimize(cmd *cobra.Command, name string) error {
	fn, err := catalog.Lookup(name)
	if err != nil {
		return err
	}
	opt, err := o.optimizerFor()
	if err != nil {
		return err
	}

	start := fn.Start
	if o.from != "" {
		if start, err = parsePoint(o.from); err != nil {
			return err
		}
	}
	in := fn.Build()
	b, err := in.Bind(start)
	if err != nil {
		return err
	}

	slog.Debug("minimizing", "function", fn.Name, "optimizer", o.optimizer, "lr", opt.GetLR())
	res, err := optim.Minimize(cmd.Context(), in.Root, b, opt, optim.MinimizeConfig{
		Steps:   o.steps,
		GradTol: o.tol,
		OnStep: func(step int, value float64) {
			if o.every > 0 && step%o.every == 0 {
				slog.Debug("step", "n", step, "value", value)
			}
		},
	})
	if err != nil {
		return err
	}
	if !res.Converged {
		slog.Warn("did not converge", "steps", res.Steps, "value", res.Value)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "function\t%s\n", fn.Name)
	fmt.Fprintf(w, "optimizer\t%s\n", o.optimizer)
	fmt.Fprintf(w, "steps\t%d\n", res.Steps)
	fmt.Fprintf(w, "converged\t%t\n", res.Converged)
	fmt.Fprintf(w, "value\t%g\n", res.Value)
	for _, v := range in.Vars {
		fmt.Fprintf(w, "%s\t%v\n", v.Name(), res.Params[v])
	}
	return w.Flush()
}

func parsePoint(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate %q: %w", f, err)
		}
		out[i] = x
	}
	return out, nil
}
