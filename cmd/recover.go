package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/pders01/zfs-tools/internal/config"
	"github.com/pders01/zfs-tools/internal/copier"
	"github.com/pders01/zfs-tools/internal/models"
	"github.com/pders01/zfs-tools/internal/zfs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const candidateTimeLayout = "2006-01-02 15:04:05 -0700"

var (
	recoverAuto      bool
	recoverNoClobber bool
	recoverNoop      bool
	recoverVerbose   bool
)

// diffRunner runs the diff command for the 'd' choice
var diffRunner zfs.Runner = zfs.ExecRunner{}

var recoverCmd = &cobra.Command{
	Use:   "recover [flags] <file>...",
	Short: "Restore files from ZFS snapshots",
	Long: `Find every snapshot copy of each file and restore the one you choose.

Copies are listed newest first. A copy identical to the live file is
struck through, one of a different size is shown in blue. At the prompt
give the number of a copy, optionally followed by:
  k  keep the live file, renamed with a .backup extension
  d  show the differences between the copy and the live file

Examples:
  ztools recover notes.txt
  ztools recover -a -N src/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecover,
}

func init() {
	rootCmd.AddCommand(recoverCmd)

	recoverCmd.Flags().BoolVarP(&recoverAuto, "auto", "a", false, "Restore the newest copy without asking")
	recoverCmd.Flags().BoolVarP(&recoverNoClobber, "noclobber", "N", false, "Do not overwrite existing live files")
	recoverCmd.Flags().BoolVarP(&recoverNoop, "noop", "n", false, "Print what would happen, without doing it")
	recoverCmd.Flags().BoolVarP(&recoverVerbose, "verbose", "v", false, "Be verbose")
}

// restoreChoice is a parsed answer to the recover prompt
type restoreChoice struct {
	index   int
	command string
}

var choicePattern = regexp.MustCompile(`^(\d+)([a-z]?)$`)

func parseChoice(input string) (restoreChoice, bool) {
	m := choicePattern.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return restoreChoice{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return restoreChoice{}, false
	}
	return restoreChoice{index: n, command: m[2]}, true
}

func runRecover(cmd *cobra.Command, args []string) error {
	ctx := contextOf(cmd)
	cp := copier.New(appFs, copier.Options{
		NoClobber: recoverNoClobber,
		Noop:      recoverNoop,
		Verbose:   recoverVerbose,
		Out:       out,
	})
	input := bufio.NewReader(stdin)

	errs := 0
	for _, arg := range args {
		file, err := filepath.Abs(arg)
		if err != nil {
			log.Error("failed to resolve file", zap.String("file", arg), zap.Error(err))
			errs++
			continue
		}

		if err := recoverFile(ctx, file, cp, input); err != nil {
			fmt.Fprintf(out, "ERROR restoring %s: %v\n", file, err)
			errs++
		}
	}

	if errs > 0 {
		return fmt.Errorf("encountered %d error(s)", errs)
	}
	return nil
}

func recoverFile(ctx context.Context, file string, cp *copier.Copier, input *bufio.Reader) error {
	candidates, err := findCopies(ctx, file)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		fmt.Fprintln(out, "No matches found.")
		return nil
	}
	if recoverVerbose {
		fmt.Fprintf(out, "Found %d candidate(s).\n", len(candidates))
	}

	live := liveDetails(file)

	choice := restoreChoice{}
	if !recoverAuto {
		for i, c := range candidates {
			fmt.Fprintln(out, decoratedLine(live, c, candidateLine(i, c)))
		}
		fmt.Fprint(out, "choose file to promote [add 'd' for diff, 'k' to keep] > ")

		answer, err := input.ReadString('\n')
		if err != nil && answer == "" {
			return fmt.Errorf("failed to read choice: %w", err)
		}

		var ok bool
		choice, ok = parseChoice(answer)
		if !ok {
			return nil
		}
	}

	if choice.index >= len(candidates) {
		fmt.Fprintln(out, "Cannot find requested item")
		return nil
	}
	src := candidates[choice.index]

	switch choice.command {
	case "k":
		if err := backupLive(file, cp); err != nil {
			return err
		}
	case "d":
		return showDiff(ctx, src.Path, file)
	}

	return cp.Copy(src.Path, file)
}

// liveDetails returns the live file as a candidate, or nil if it is gone
func liveDetails(file string) *models.Candidate {
	info, err := appFs.Stat(file)
	if err != nil {
		return nil
	}
	return &models.Candidate{Snapshot: ".", Path: file, ModTime: info.ModTime(), Size: info.Size()}
}

func candidateLine(index int, c models.Candidate) string {
	return fmt.Sprintf("%2d %-20s %-35s %d", index, c.Snapshot, c.ModTime.Format(candidateTimeLayout), c.Size)
}

// decoratedLine marks a copy identical to the live file as struck through
// and one of a different size in blue
func decoratedLine(live *models.Candidate, c models.Candidate, line string) string {
	if live == nil {
		return line
	}
	if live.Size == c.Size && live.ModTime.Equal(c.ModTime) {
		return color.New(color.CrossedOut).Sprint(line)
	}
	if live.Size == c.Size {
		return line
	}
	return color.New(color.FgBlue).Sprint(line)
}

func backupFile(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file)) + ".backup"
}

func backupLive(file string, cp *copier.Copier) error {
	dest := backupFile(file)
	exists, err := afero.Exists(appFs, dest)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", dest, err)
	}
	if exists && !recoverNoop {
		return fmt.Errorf("backup target %s exists", dest)
	}
	return cp.Rename(file, dest)
}

func showDiff(ctx context.Context, src, dest string) error {
	output, err := diffRunner.Run(ctx, config.DiffBinary(), src, dest)
	var exitErr interface{ ExitCode() int }
	if err != nil && !(errors.As(err, &exitErr) && exitErr.ExitCode() == 1) {
		return fmt.Errorf("failed to run '%s %s %s': %w", config.DiffBinary(), src, dest, err)
	}
	fmt.Fprintln(out, string(output))
	return nil
}
