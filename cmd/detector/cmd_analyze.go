package main

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
	"github.com/bryanwahyu/ai-detector/internal/infra/media"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	var humanize bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze content and record the result in history",
		Long: `Analyze content and record the result in history.

Subcommands:
  text [text|-]  - Analyze text given as an argument or on stdin
  file <path>    - Analyze a document (PDF, DOCX, ...)
  image <path>   - Analyze an image`,
	}
	cmd.PersistentFlags().BoolVar(&humanize, "humanize", false, "Also rewrite text results to read more naturally")

	text := &cobra.Command{
		Use:   "text [text|-]",
		Short: "Analyze text",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			s, err := readText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return runAnalyze(cmd, a, media.FromText(s), humanize)
		}),
	}

	fileCmd := func(mode detection.Mode, short string) *cobra.Command {
		return &cobra.Command{
			Use:   string(mode) + " <path>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
				u, err := media.ReadFile(mode, args[0])
				if err != nil {
					return err
				}
				return runAnalyze(cmd, a, u, false)
			}),
		}
	}

	cmd.AddCommand(text, fileCmd(detection.ModeFile, "Analyze a document"), fileCmd(detection.ModeImage, "Analyze an image"))
	return cmd
}

func runAnalyze(cmd *cobra.Command, a *app, u media.Upload, humanize bool) error {
	rec, err := a.session.Analyze(cmd.Context(), u)
	if err != nil {
		return err
	}
	if humanize {
		h, err := a.session.Humanize(cmd.Context())
		if err != nil {
			return err
		}
		rec.Humanizer = h
	}
	return a.printJSON(rec)
}

func newHumanizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "humanize [text|-]",
		Short: "Rewrite text without recording a scan",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			s, err := readText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			h, err := a.session.HumanizeText(cmd.Context(), s)
			if err != nil {
				return err
			}
			return a.printJSON(h)
		}),
	}
}

// readText takes the argument, or stdin when it is absent or "-".
func readText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", errors.New("no text given")
	}
	return s, nil
}
