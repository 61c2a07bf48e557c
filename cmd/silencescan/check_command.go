package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"silencescan/internal/config"
	"silencescan/internal/deps"
	"silencescan/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report decoder binaries and directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cfg)
			results := append(preflight.DirectoryChecks(cfg), preflight.DependencyResults(statuses)...)
			lines := renderSectionHeader("Configuration", colorize)
			lines = append(lines,
				renderStatusLine("Decoder", statusOK, cfg.Decoder.Backend, colorize),
				renderStatusLine("Threshold", statusOK, formatDBFS(cfg.Scan.ThresholdDBFS), colorize),
				renderStatusLine("Min silence", statusOK, formatMs(int64(cfg.Scan.MinSilenceMs)), colorize),
				renderStatusLine("Extensions", statusOK, strings.Join(cfg.Scan.Extensions, " "), colorize),
				"",
			)
			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			for _, r := range results {
				lines = append(lines, renderStatusLine(r.Name, checkKind(r), r.Detail, colorize))
			}
			lines = append(lines, "", renderStatusLine("Result cache", cacheKind(cfg), cacheDetail(cfg), colorize))
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, status := range missing {
					names = append(names, status.Command)
				}
				return fmt.Errorf("missing required binaries: %s", strings.Join(names, ", "))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}

func checkKind(r preflight.Result) statusKind {
	switch {
	case !r.Passed:
		return statusError
	case strings.HasSuffix(r.Detail, "(optional)"):
		return statusWarn
	default:
		return statusOK
	}
}

func cacheKind(cfg *config.Config) statusKind {
	if cfg.Cache.Enabled {
		return statusOK
	}
	return statusWarn
}

func cacheDetail(cfg *config.Config) string {
	if cfg.Cache.Enabled {
		return cfg.StateDBPath()
	}
	return "disabled"
}
