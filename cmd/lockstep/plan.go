package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lockstep-sync/lockstep/pkg/filesystem"
	"github.com/lockstep-sync/lockstep/pkg/logging"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/core"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/core/filter"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/scan"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/status"
)

// sessionConfig is the YAML session file format. It is a host-side concern:
// the engine itself only consumes the parsed objects assembled from it.
type sessionConfig struct {
	// Left and Right are the base folder roots.
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
	// Variant selects the comparison variant: "time-size" (default),
	// "content", or "size".
	Variant string `yaml:"variant"`
	// ToleranceSeconds is the modification time tolerance.
	ToleranceSeconds int64 `yaml:"toleranceSeconds"`
	// IgnoreTimeShiftMinutes lists whole-minute time shifts to ignore.
	IgnoreTimeShiftMinutes []int64 `yaml:"ignoreTimeShiftMinutes"`
	// Includes and Excludes are the hard filter pattern lists.
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	// TwoWay selects two-way resolution.
	TwoWay bool `yaml:"twoWay"`
}

// loadSessionConfig reads and parses a session file.
func loadSessionConfig(path string) (*sessionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read session file: %w", err)
	}
	config := &sessionConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unable to parse session file: %w", err)
	}
	return config, nil
}

// comparisonVariant converts the session file's variant name.
func comparisonVariant(name string) (core.ComparisonVariant, error) {
	switch name {
	case "", "time-size":
		return core.VariantTimeSize, nil
	case "content":
		return core.VariantContent, nil
	case "size":
		return core.VariantSize, nil
	default:
		return 0, fmt.Errorf("unknown comparison variant: %q", name)
	}
}

// consoleCallback renders progress events on the console.
type consoleCallback struct {
	status.NopCallback
	// logger receives informational messages.
	logger *logging.Logger
}

// LogInfo implements status.Callback.LogInfo.
func (c *consoleCallback) LogInfo(message string) {
	c.logger.Println(message)
}

// ReportError implements status.Callback.ReportError. The CLI is
// non-interactive, so item failures are logged and skipped.
func (c *consoleCallback) ReportError(message string) status.ErrorResponse {
	c.logger.Errorf("%s", message)
	return status.ResponseIgnore
}

// ReportWarning implements status.Callback.ReportWarning.
func (c *consoleCallback) ReportWarning(message string, warnActive *bool) {
	if warnActive != nil && !*warnActive {
		return
	}
	c.logger.Warnf("%s", message)
}

func planMain(command *cobra.Command, arguments []string) error {
	// Assemble the session configuration from a session file or from flags.
	var session *sessionConfig
	if planConfiguration.session != "" {
		loaded, err := loadSessionConfig(planConfiguration.session)
		if err != nil {
			return err
		}
		session = loaded
	} else if len(arguments) == 2 {
		session = &sessionConfig{Left: arguments[0], Right: arguments[1]}
	} else {
		return errors.New("expected a session file (--session) or left and right folder arguments")
	}
	session.TwoWay = session.TwoWay || planConfiguration.twoWay

	// Color output only makes sense on terminals.
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	logger := logging.RootLogger.Sublogger("plan")
	callback := &consoleCallback{logger: logger}

	// Set up the devices and verify that the base folders exist.
	leftDevice, err := filesystem.NewLocal(session.Left)
	if err != nil {
		return err
	}
	rightDevice, err := filesystem.NewLocal(session.Right)
	if err != nil {
		return err
	}
	left := filesystem.AbstractPath{Device: leftDevice}
	right := filesystem.AbstractPath{Device: rightDevice}
	for _, result := range filesystem.CheckFoldersExist([]filesystem.AbstractPath{left, right}) {
		if result.Err != nil {
			return fmt.Errorf("unable to verify %s: %w", result.Path, result.Err)
		} else if !result.Exists {
			return fmt.Errorf("base folder does not exist: %s", result.Path)
		}
	}

	// Build the hard filter.
	hardFilter, err := filter.NewHardFilter(session.Includes, session.Excludes)
	if err != nil {
		return err
	}

	// Warn about overlapping base folders.
	if dependency := core.CheckPathDependency(left, right, hardFilter, hardFilter); dependency != nil {
		logger.Warnf("Base folders overlap: %s contains %s", dependency.Ancestor, dependency.Descendant)
	}

	// Scan.
	base, err := scan.ScanBasePair(left, right, &scan.Config{
		Filter:      filter.NewCachedHardFilter(hardFilter, 4096),
		ParallelOps: planConfiguration.parallelOps,
	}, callback)
	if err != nil {
		return err
	}

	// Classify.
	variant, err := comparisonVariant(session.Variant)
	if err != nil {
		return err
	}
	tolerance := session.ToleranceSeconds
	if tolerance == 0 {
		tolerance = core.FATTimeTolerance
	}
	compare := &core.CompareConfig{
		Variant:                variant,
		FileTimeTolerance:      tolerance,
		IgnoreTimeShiftMinutes: session.IgnoreTimeShiftMinutes,
		ContentCompare:         core.StreamContentCompare(nil, logger),
	}
	core.Classify(base, compare)

	// Resolve directions. The CLI has no persisted last-sync state, so
	// two-way resolution takes the first-run path.
	mode := core.ModeOneWay
	if session.TwoWay {
		mode = core.ModeTwoWay
	}
	core.ResolveDirections(base, &core.ResolutionConfig{
		Mode: mode,
		Policy: core.DirectionPolicy{
			ExLeftOnly: core.DirectionRight,
			RightNewer: core.DirectionLeft,
			LeftNewer:  core.DirectionRight,
		},
		Compare: compare,
	}, callback)

	// Apply the hard filter to the active flags.
	core.ApplyHardFilter(base, hardFilter, core.StrategySet)

	// Render the decision report.
	printPlan(base)
	return nil
}

// printPlan renders the per-item decisions.
func printPlan(base *core.BaseFolderPair) {
	var actions, conflicts, inSync int
	base.Walk(func(pair core.Pair) {
		if !pair.Active() {
			return
		}
		if conflict := pair.Conflict(); conflict != "" {
			conflicts++
			color.Red("  ! %-40s  conflict: %s", pair.RelPath(), conflict)
			return
		}
		switch pair.Direction() {
		case core.DirectionNone:
			inSync++
		case core.DirectionLeft:
			actions++
			color.Cyan("  < %-40s  %s", pair.RelPath(), describeAction(pair, core.SideLeft))
		case core.DirectionRight:
			actions++
			color.Green("  > %-40s  %s", pair.RelPath(), describeAction(pair, core.SideRight))
		}
	})
	fmt.Printf("%d action(s), %d conflict(s), %d item(s) in sync\n", actions, conflicts, inSync)
}

// describeAction renders the operation a direction implies for a pair.
func describeAction(pair core.Pair, target core.Side) string {
	source := target.Opposite()
	if !pair.PresentOnSide(source) {
		return fmt.Sprintf("delete on %s", target)
	}
	var size string
	if file, ok := pair.(*core.FilePair); ok {
		size = " (" + status.FormatBytes(file.Attributes(source).Size) + ")"
	}
	if pair.PresentOnSide(target) {
		return fmt.Sprintf("overwrite on %s%s", target, size)
	}
	return fmt.Sprintf("copy to %s%s", target, size)
}

var planCommand = &cobra.Command{
	Use:          "plan [<left> <right>]",
	Short:        "Scan two folders and show the synchronization decisions",
	RunE:         planMain,
	Args:         cobra.MaximumNArgs(2),
	SilenceUsage: true,
}

var planConfiguration struct {
	// session is the path of a YAML session file.
	session string
	// twoWay selects two-way resolution.
	twoWay bool
	// parallelOps bounds per-device folder fan-out during scanning.
	parallelOps int
}

func init() {
	flags := planCommand.Flags()
	flags.StringVarP(&planConfiguration.session, "session", "s", "", "Session file to load")
	flags.BoolVar(&planConfiguration.twoWay, "two-way", false, "Resolve directions bidirectionally")
	flags.IntVar(&planConfiguration.parallelOps, "parallel-ops", 4, "Concurrent folder enumerations per device")
}
