package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/especia/especia/internal/fit"
	"github.com/especia/especia/internal/model"
	"github.com/especia/especia/internal/opt"
	"github.com/especia/especia/internal/profiles"
	"github.com/especia/especia/internal/store"
	"github.com/spf13/cobra"
)

var (
	profileName    string
	traceFile      string
	checkpointFile string
)

func init() {
	rootCmd.Flags().StringVar(&profileName, "profile", "doppler", "Line profile: doppler, many-multiplet, voigt, voigt-extended")
	rootCmd.Flags().StringVar(&traceFile, "trace-file", "", "Write the generation trace as JSON lines to this file")
	rootCmd.Flags().StringVar(&checkpointFile, "checkpoint-file", "", "Write the terminal state as JSON to this file")
}

// runOptimization carries out a single optimization run: it reads the
// model definition from standard input and writes the report to
// standard output.
func runOptimization(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Usage()
	}
	if len(args) != 7 {
		return &invalidArgumentError{reason: "an invalid number of arguments was supplied"}
	}

	params, traceModulus, err := parseArgs(args)
	if err != nil {
		return err
	}

	factory, ok := profiles.ForName(profileName)
	if !ok {
		return &invalidArgumentError{reason: fmt.Sprintf("unknown profile %q", profileName)}
	}

	return run(os.Stdin, os.Stdout, factory, params, traceModulus)
}

func parseArgs(args []string) (fit.Params, uint64, error) {
	names := []string{
		"random seed", "parent number", "population size",
		"global step size", "accuracy goal", "stop generation", "trace modulus",
	}
	parseUint := func(i int, bits int) (uint64, error) {
		v, err := strconv.ParseUint(args[i], 10, bits)
		if err != nil {
			return 0, &invalidArgumentError{reason: fmt.Sprintf("argument %q is not a valid %s", args[i], names[i])}
		}
		return v, nil
	}
	parseFloat := func(i int) (float64, error) {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return 0, &invalidArgumentError{reason: fmt.Sprintf("argument %q is not a valid %s", args[i], names[i])}
		}
		return v, nil
	}

	seed, err := parseUint(0, 32)
	if err != nil {
		return fit.Params{}, 0, err
	}
	parents, err := parseUint(1, 31)
	if err != nil {
		return fit.Params{}, 0, err
	}
	population, err := parseUint(2, 31)
	if err != nil {
		return fit.Params{}, 0, err
	}
	step, err := parseFloat(3)
	if err != nil {
		return fit.Params{}, 0, err
	}
	accuracy, err := parseFloat(4)
	if err != nil {
		return fit.Params{}, 0, err
	}
	stop, err := parseUint(5, 64)
	if err != nil {
		return fit.Params{}, 0, err
	}
	modulus, err := parseUint(6, 64)
	if err != nil {
		return fit.Params{}, 0, err
	}

	return fit.Params{
		RandomSeed:     uint32(seed),
		ParentNumber:   int(parents),
		PopulationSize: int(population),
		GlobalStepSize: step,
		AccuracyGoal:   accuracy,
		StopGeneration: stop,
	}, modulus, nil
}

func run(in io.Reader, out io.Writer, factory profiles.Factory, params fit.Params, traceModulus uint64) error {
	m, err := model.Read(in, factory, nil)
	if err != nil {
		return err
	}

	if err := m.WriteModelBlock(out); err != nil {
		return err
	}

	tracer, closeTrace, err := buildTracer(out, traceModulus)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "<!DOCTYPE html PUBLIC \"-//W3C//DTD HTML 4.01 Transitional//EN\">\n<html>\n<!--\n<log>\n")
	result, runErr := fit.Run(m, params, tracer)
	fmt.Fprint(out, "</log>\n-->\n")

	if closeTrace != nil {
		closeTrace()
	}

	if result != nil {
		writeResultMessages(out, result)
	}
	fmt.Fprint(out, "</html>\n")

	if result != nil {
		if err := m.WriteReport(out); err != nil {
			return err
		}
		if checkpointFile != "" {
			if err := saveCheckpoint(result, params, traceModulus); err != nil {
				return err
			}
		}
	}

	if runErr != nil {
		return runErr
	}
	if !result.Optimized {
		return &notConvergedError{generation: result.Generation}
	}
	return nil
}

// buildTracer traces into the report log block and, when requested,
// into a JSON-lines trace file.
func buildTracer(out io.Writer, modulus uint64) (opt.Tracer, func(), error) {
	reportTracer := opt.NewWriterTracer(out, modulus)
	if traceFile == "" {
		return reportTracer, nil, nil
	}

	tw, err := store.NewTraceWriter(traceFile)
	if err != nil {
		return nil, nil, err
	}

	return &teeTracer{report: reportTracer, store: tw}, func() { tw.Close() }, nil
}

// teeTracer duplicates trace records to the report stream and the
// persistent trace store.
type teeTracer struct {
	report *opt.WriterTracer
	store  *store.TraceWriter
}

func (t *teeTracer) Enabled(g uint64) bool {
	return t.report.Enabled(g)
}

func (t *teeTracer) Trace(g uint64, y, minStep, maxStep float64) {
	t.report.Trace(g, y, minStep, maxStep)
	t.store.Write(store.TraceEntry{
		Generation: g,
		Fitness:    y,
		MinStep:    minStep,
		MaxStep:    maxStep,
		Timestamp:  time.Now().UTC(),
	})
}

func writeResultMessages(out io.Writer, result *opt.Result) {
	switch {
	case result.Underflow:
		fmt.Fprint(out, "<!-- especia: optimization stopped on mutation variance underflow -->\n")
	case result.Optimized:
		fmt.Fprintf(out, "<!-- especia: optimization completed after %d generations -->\n", result.Generation)
	default:
		fmt.Fprintf(out, "<!-- especia: optimization did not converge within %d generations -->\n", result.Generation)
	}
}

func saveCheckpoint(result *opt.Result, params fit.Params, traceModulus uint64) error {
	checkpoint := store.NewCheckpoint(store.NewRunID(), result.X, result.Z, result.Fitness,
		result.Generation, result.Optimized, store.RunConfig{
			Profile:        profileName,
			RandomSeed:     params.RandomSeed,
			ParentNumber:   params.ParentNumber,
			PopulationSize: params.PopulationSize,
			GlobalStepSize: params.GlobalStepSize,
			AccuracyGoal:   params.AccuracyGoal,
			StopGeneration: params.StopGeneration,
			TraceModulus:   traceModulus,
		})

	return store.SaveCheckpoint(checkpointFile, checkpoint)
}
