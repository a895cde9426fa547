package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gazemap/internal/assign"
	"gazemap/internal/canvas"
	"gazemap/internal/config"
	"gazemap/internal/interval"
	"gazemap/internal/logging"
	"gazemap/internal/model"
	"gazemap/internal/parser"
	"gazemap/internal/pipeline"
	"gazemap/internal/project"
	"gazemap/internal/render"
	"gazemap/internal/sampling"
	"gazemap/internal/view"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	envFile    string
	verbose    bool
}

// outputOptions holds the listing flags shared by every subcommand.
type outputOptions struct {
	formatFlag   string
	noHeader     bool
	width        int
	forceColor   bool
	forceNoColor bool
}

func (o *outputOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.formatFlag, "format", "table", "output format: table, plain, json, or jsonl")
	flags.BoolVar(&o.noHeader, "no-header", false, "omit header row for table and plain output")
	flags.IntVar(&o.width, "width", 0, "maximum output width (0 detects the terminal)")
	flags.BoolVar(&o.forceColor, "color", false, "force coloured output")
	flags.BoolVar(&o.forceNoColor, "no-color", false, "disable coloured output")
}

func (o *outputOptions) view(cmd *cobra.Command) (view.Options, error) {
	if o.forceColor && o.forceNoColor {
		return view.Options{}, errors.New("--color and --no-color cannot be used together")
	}
	out := cmd.OutOrStdout()
	opts := view.Options{
		Format:       strings.ToLower(o.formatFlag),
		NoHeader:     o.noHeader,
		Width:        o.width,
		ForceColor:   o.forceColor,
		ForceNoColor: o.forceNoColor,
		Out:          out,
	}
	if f, ok := out.(*os.File); ok {
		opts.OutFile = f
	}
	return opts, nil
}

func newRootCmd() *cobra.Command {
	globals := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "gazemap",
		Short:         "Segment eye-tracking exports by stimulus and render gaze maps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnv(globals.envFile)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&globals.configPath, "config", "", "YAML run file")
	flags.StringVar(&globals.envFile, "env-file", ".env", "dotenv file with GAZEMAP_* defaults")
	flags.BoolVarP(&globals.verbose, "verbose", "v", false, "log pipeline progress to stderr")

	cmd.AddCommand(newRenderCmd(globals))
	cmd.AddCommand(newIntervalsCmd(globals))
	cmd.AddCommand(newAssignCmd(globals))
	cmd.AddCommand(newStimuliCmd())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gazemap: %v\n", err)
		os.Exit(1)
	}
}

func newRenderCmd(globals *globalOptions) *cobra.Command {
	var (
		participant  string
		stimuliDir   string
		outDir       string
		modeFlag     string
		movementFlag string
		axisFlag     string
		bins         int
		sigma        float64
		samplingFlag string
		capFlag      int
		seed         uint64
		from         int
		to           int
		onStimulus   bool
		workers      int
		dryRun       bool
		output       outputOptions
	)

	cmd := &cobra.Command{
		Use:   "render <export.tsv>",
		Short: "Aggregate one participant's gaze per stimulus and write PNG overlays",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewOpts, err := output.view(cmd)
			if err != nil {
				return err
			}
			file, err := config.Load(globals.configPath)
			if err != nil {
				return err
			}

			cfg := pipeline.DefaultConfig()
			cfg.Participant = config.Env(config.EnvParticipant, "")
			dir := config.Env(config.EnvStimuliDir, "stimuli")
			out := config.Env(config.EnvOutputDir, "output")
			if err := file.Apply(&cfg); err != nil {
				return fmt.Errorf("config file: %w", err)
			}
			if file.StimuliDir != nil {
				dir = *file.StimuliDir
			}
			if file.OutputDir != nil {
				out = *file.OutputDir
			}

			flags := cmd.Flags()
			if flags.Changed("participant") {
				cfg.Participant = participant
			}
			if flags.Changed("stimuli-dir") {
				dir = stimuliDir
			}
			if flags.Changed("out") {
				out = outDir
			}
			if flags.Changed("mode") {
				if cfg.Mode, err = pipeline.ParseMode(modeFlag); err != nil {
					return err
				}
				if file.Movement == nil {
					cfg.Movement = ""
				}
			}
			if flags.Changed("movement") {
				if cfg.Movement, err = pipeline.ParseMovement(movementFlag, cfg.Mode); err != nil {
					return err
				}
			}
			if flags.Changed("axis") {
				if cfg.Axis, err = project.ParseAxis(axisFlag); err != nil {
					return err
				}
			}
			if flags.Changed("bins") {
				cfg.Density.BinsX, cfg.Density.BinsY = bins, bins
			}
			if flags.Changed("sigma") {
				cfg.Density.Sigma = sigma
			}
			if flags.Changed("sampling") {
				if cfg.Sampling.Mode, err = sampling.ParseMode(samplingFlag); err != nil {
					return err
				}
			}
			if flags.Changed("cap") {
				cfg.Sampling.Cap = capFlag
			}
			if flags.Changed("seed") {
				cfg.Sampling.Seed = seed
			}
			if flags.Changed("from") {
				cfg.FirstStimulus = from
			}
			if flags.Changed("to") {
				cfg.LastStimulus = to
			}
			if flags.Changed("on-stimulus") {
				cfg.OnStimulusOnly = onStimulus
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			cfg.Canvas = canvas.DirResolver{Dir: dir}

			records, err := readExport(cmd, args[0], file)
			if err != nil {
				return err
			}
			if cfg.Participant == "" {
				return missingParticipant(records)
			}

			logger := logging.New(cmd.ErrOrStderr(), globals.verbose)
			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}
			report := p.Run(pipeline.Input{Events: records.Events, Samples: records.Samples})

			if !dryRun {
				renderer := render.NewPNG(out)
				if file.Render.DensityAlpha != nil {
					renderer.Options.DensityAlpha = *file.Render.DensityAlpha
				}
				if file.Render.Caption != nil {
					renderer.Options.Caption = *file.Render.Caption
				}
				pipeline.Render(renderer, report)
			}

			view.Warnings(cmd.ErrOrStderr(), report.Warnings, output.forceColor, output.forceNoColor)
			return view.Report(viewOpts, report)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&participant, "participant", "p", "", "participant name (default $"+config.EnvParticipant+")")
	flags.StringVar(&stimuliDir, "stimuli-dir", "stimuli", "directory holding Question<N> images (default $"+config.EnvStimuliDir+")")
	flags.StringVarP(&outDir, "out", "o", "output", "directory for rendered PNG files (default $"+config.EnvOutputDir+")")
	flags.StringVar(&modeFlag, "mode", "density", "aggregation: density, path, or saccades")
	flags.StringVar(&movementFlag, "movement", "", "sample type: fixation or saccade (default depends on mode)")
	flags.StringVar(&axisFlag, "axis", "image", "vertical axis: image (origin top-left) or plot (origin bottom-left)")
	flags.IntVar(&bins, "bins", 300, "density histogram bins per axis")
	flags.Float64Var(&sigma, "sigma", 10, "density smoothing sigma in bins")
	flags.StringVar(&samplingFlag, "sampling", "none", "sample cap policy: none, truncate, or random")
	flags.IntVar(&capFlag, "cap", 0, "maximum samples per stimulus when sampling")
	flags.Uint64Var(&seed, "seed", 42, "seed for random sampling")
	flags.IntVar(&from, "from", 1, "first question number")
	flags.IntVar(&to, "to", 12, "last question number")
	flags.BoolVar(&onStimulus, "on-stimulus", false, "drop samples outside the stimulus area")
	flags.IntVar(&workers, "workers", 1, "stimuli aggregated in parallel")
	flags.BoolVar(&dryRun, "dry-run", false, "print the report without writing images")
	output.bind(cmd)

	return cmd
}

func newIntervalsCmd(globals *globalOptions) *cobra.Command {
	var (
		participant string
		output      outputOptions
	)

	cmd := &cobra.Command{
		Use:   "intervals <export.tsv>",
		Short: "List stimulus intervals and excluded marker pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewOpts, err := output.view(cmd)
			if err != nil {
				return err
			}
			file, err := config.Load(globals.configPath)
			if err != nil {
				return err
			}
			records, err := readExport(cmd, args[0], file)
			if err != nil {
				return err
			}

			built := interval.Build(records.Events)
			intervals := built.Set.All()
			issues := built.Issues
			if participant != "" {
				intervals = built.Set.For(participant)
				issues = issuesFor(issues, participant)
			}
			return view.Intervals(viewOpts, intervals, issues)
		},
	}

	cmd.Flags().StringVarP(&participant, "participant", "p", "", "only list this participant")
	output.bind(cmd)
	return cmd
}

func newAssignCmd(globals *globalOptions) *cobra.Command {
	var (
		participant  string
		movementFlag string
		output       outputOptions
	)

	cmd := &cobra.Command{
		Use:   "assign <export.tsv>",
		Short: "Show how a participant's samples resolve to stimuli",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewOpts, err := output.view(cmd)
			if err != nil {
				return err
			}
			file, err := config.Load(globals.configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("participant") {
				participant = config.Env(config.EnvParticipant, "")
				if file.Participant != nil {
					participant = *file.Participant
				}
			}
			movement, err := file.MovementOrDefault(model.KindDensity)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("movement") {
				if movement, err = pipeline.ParseMovement(movementFlag, model.KindDensity); err != nil {
					return err
				}
			}

			records, err := readExport(cmd, args[0], file)
			if err != nil {
				return err
			}
			if participant == "" {
				return missingParticipant(records)
			}

			var events []model.RawEvent
			for _, ev := range records.Events {
				if ev.Participant == participant {
					events = append(events, ev)
				}
			}
			var samples []model.RawSample
			for _, s := range records.Samples {
				if s.Participant == participant && s.Movement == movement {
					samples = append(samples, s)
				}
			}
			built := interval.Build(events)
			view.Warnings(cmd.ErrOrStderr(), issueErrors(built.Issues), output.forceColor, output.forceNoColor)
			_, stats := assign.Assign(samples, built.Set)
			return view.Assignment(viewOpts, participant, stats)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&participant, "participant", "p", "", "participant name (default $"+config.EnvParticipant+")")
	flags.StringVar(&movementFlag, "movement", "fixation", "sample type: fixation or saccade")
	output.bind(cmd)
	return cmd
}

func newStimuliCmd() *cobra.Command {
	var output outputOptions

	cmd := &cobra.Command{
		Use:   "stimuli [dir]",
		Short: "List the Question<N> images found in a stimuli directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewOpts, err := output.view(cmd)
			if err != nil {
				return err
			}
			dir := config.Env(config.EnvStimuliDir, "stimuli")
			if len(args) == 1 {
				dir = args[0]
			}
			result, err := canvas.Scan(dir)
			if err != nil {
				return err
			}
			view.Warnings(cmd.ErrOrStderr(), result.Warnings, output.forceColor, output.forceNoColor)

			canvases := make([]model.Canvas, 0, len(result.Canvases))
			for _, id := range result.IDs() {
				canvases = append(canvases, result.Canvases[id])
			}
			return view.Canvases(viewOpts, canvases)
		},
	}

	output.bind(cmd)
	return cmd
}

func readExport(cmd *cobra.Command, path string, file config.File) (parser.Records, error) {
	records, err := parser.ReadFile(path, file.ParserOptions())
	if err != nil {
		return parser.Records{}, err
	}
	printWarnings(cmd.ErrOrStderr(), records.Warnings)
	return records, nil
}

func printWarnings(errs io.Writer, warnings []error) {
	for _, warn := range warnings {
		fmt.Fprintf(errs, "warning: %v\n", warn)
	}
}

func missingParticipant(records parser.Records) error {
	names := records.Participants()
	if len(names) == 0 {
		return errors.New("--participant is required")
	}
	return fmt.Errorf("--participant is required (export contains: %s)", strings.Join(names, ", "))
}

func issuesFor(issues []interval.Issue, participant string) []interval.Issue {
	var out []interval.Issue
	for _, issue := range issues {
		if issue.Participant == participant {
			out = append(out, issue)
		}
	}
	return out
}

func issueErrors(issues []interval.Issue) []error {
	errs := make([]error, len(issues))
	for i, issue := range issues {
		errs[i] = issue
	}
	return errs
}
