package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/warp/pricing-engine/api"
	"github.com/warp/pricing-engine/factory"
	"github.com/warp/pricing-engine/format"
	"github.com/warp/pricing-engine/pricing"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pricingsim",
		Short:        "Drug pricing revenue simulator",
		Long:         "Projects monthly net revenue of a drug under initial response or fixed discount pricing",
		SilenceUsage: true,
	}
	root.AddCommand(simulateCmd(), compareCmd(), scenariosCmd(), versionCmd())
	return root
}

// =============================================================================
// PARAMETER FLAGS
// =============================================================================

// paramFlags are per-field overrides applied over the file or scenario.
type paramFlags struct {
	scenario     string
	model        string
	listPrice    float64
	patients     float64
	duration     float64
	admins       float64
	horizon      float64
	responseRate float64
	discountRate float64
}

func (pf *paramFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&pf.scenario, "scenario", "", "start from a preset scenario (see 'pricingsim scenarios')")
	f.StringVar(&pf.model, "model", "", "pricing model: initialResponse | fixedDiscount")
	f.Float64Var(&pf.listPrice, "list-price", 0, "list price per administration (EUR)")
	f.Float64Var(&pf.patients, "patients", 0, "new patients per month")
	f.Float64Var(&pf.duration, "duration", 0, "average treatment duration (months)")
	f.Float64Var(&pf.admins, "admins", 0, "administrations per patient per month")
	f.Float64Var(&pf.horizon, "horizon", 0, "time horizon (months, 4-24)")
	f.Float64Var(&pf.responseRate, "response-rate", 0, "response rate after month 1 (0-1)")
	f.Float64Var(&pf.discountRate, "discount-rate", 0, "fixed discount rate (0-1)")
}

// resolve builds validated parameters from defaults, then the scenario,
// then the file, then any flag the user set.
func (pf *paramFlags) resolve(cmd *cobra.Command, args []string) (*pricing.Parameters, error) {
	parser := factory.NewParametersFactory()
	pj := factory.DefaultParametersJSON()

	if pf.scenario != "" {
		s, ok := factory.FindScenario(pf.scenario)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", pf.scenario)
		}
		pj = pj.Merge(s.Parameters)
	}

	if len(args) == 1 {
		fromFile, err := parser.LoadFile(args[0])
		if err != nil {
			return nil, err
		}
		pj = pj.Merge(fromFile)
	}

	f := cmd.Flags()
	var override factory.ParametersJSON
	if f.Changed("model") {
		override.PricingModel = &pf.model
	}
	for name, dst := range map[string]struct {
		val *float64
		set **float64
	}{
		"list-price":    {&pf.listPrice, &override.ListPricePerAdministration},
		"patients":      {&pf.patients, &override.NewPatientsPerMonth},
		"duration":      {&pf.duration, &override.AverageTreatmentDuration},
		"admins":        {&pf.admins, &override.AdministrationsPerPatientPerMonth},
		"horizon":       {&pf.horizon, &override.TimeHorizon},
		"response-rate": {&pf.responseRate, &override.ResponseRateAfterMonth1},
		"discount-rate": {&pf.discountRate, &override.FixedDiscountRate},
	} {
		if f.Changed(name) {
			*dst.set = dst.val
		}
	}
	pj = pj.Merge(override)

	p, err := parser.FromJSON(pj)
	if err != nil {
		if fields := factory.FieldErrors(err); len(fields) > 0 {
			var sb strings.Builder
			sb.WriteString("invalid parameters:")
			for _, fe := range fields {
				sb.WriteString(fmt.Sprintf("\n  %s: %s", fe.Field, fe.Message))
			}
			return nil, fmt.Errorf("%s", sb.String())
		}
		return nil, err
	}
	return p, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

func simulateCmd() *cobra.Command {
	var (
		pf           paramFlags
		outputFormat string
	)
	cmd := &cobra.Command{
		Use:   "simulate [params-file]",
		Short: "Simulate monthly revenue for one pricing model",
		Long: "Simulate monthly revenue. Parameters start from the form defaults and are\n" +
			"overridden by --scenario, then the YAML/JSON file, then individual flags.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.resolve(cmd, args)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), outputFormat, *p, pricing.Simulate(*p))
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format: table | csv | json")
	return cmd
}

func compareCmd() *cobra.Command {
	var (
		pf           paramFlags
		outputFormat string
	)
	cmd := &cobra.Command{
		Use:   "compare [params-file]",
		Short: "Compare both pricing models on the same parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.resolve(cmd, args)
			if err != nil {
				return err
			}
			c := pricing.Compare(*p)
			out := cmd.OutOrStdout()

			switch outputFormat {
			case "table":
				_, err = io.WriteString(out, format.ComparisonTable(c))
				return err
			case "json":
				return writeJSON(out, api.NewCompareResponse(factory.NewParametersFactory().ToJSON(*p), c))
			default:
				return fmt.Errorf("unsupported format %q for compare (table | json)", outputFormat)
			}
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format: table | json")
	return cmd
}

func scenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List preset scenarios",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, s := range factory.Scenarios() {
				fmt.Fprintf(out, "%-28s %s\n", s.ID, s.Name)
				fmt.Fprintf(out, "%-28s %s\n", "", s.Description)
			}
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pricingsim %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(cmd.OutOrStdout(), bi.Main.Path, bi.GoVersion)
			}
		},
	}
}

// =============================================================================
// OUTPUT
// =============================================================================

func writeResults(out io.Writer, outputFormat string, p pricing.Parameters, results []pricing.MonthResult) error {
	switch outputFormat {
	case "table":
		title := fmt.Sprintf("%s PRICING - %d MONTHS", strings.ToUpper(p.PricingModel.DisplayName()), p.TimeHorizon)
		_, err := io.WriteString(out, format.Table(title, results))
		return err
	case "csv":
		data, err := format.CSV(results)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "json":
		return writeJSON(out, api.NewSimulateResponse(factory.NewParametersFactory().ToJSON(p), results))
	default:
		return fmt.Errorf("unsupported format %q (table | csv | json)", outputFormat)
	}
}

// writeJSON emits the same envelope the HTTP API returns.
func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	_, err = out.Write(append(data, '\n'))
	return err
}
