package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"iclicker-monitor/internal/capture"
	"iclicker-monitor/internal/cli"
	"iclicker-monitor/internal/detect"
	"iclicker-monitor/internal/templates"
	"iclicker-monitor/internal/vision"

	"github.com/spf13/cobra"
)

func detectCmd() *cobra.Command {
	var imagePath string
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run one classification pass and print the label scores",
		Long: `Capture the screen (or read --image), match it against every template
group and print each label's score, the candidate set and the resolved label.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib := templates.LoadSmoothed(cfg.Paths.Templates, cfg.Detect.Blur)
			defer lib.Close()
			if lib.Len() == 0 {
				return fmt.Errorf("no templates under %s", cfg.Paths.Templates)
			}

			var sampler *capture.Sampler
			if imagePath != "" {
				g, err := vision.Load(imagePath)
				if err != nil {
					return err
				}
				img := g.Image()
				_ = g.Close()
				sampler = capture.NewSamplerWithGrabber(capture.StaticImage(img), cfg.Detect.Blur)
			} else {
				sampler = capture.NewSampler(cfg.Detect.Blur)
			}

			snap, err := sampler.Capture()
			if err != nil {
				return err
			}
			defer snap.Close()

			classifier := detect.NewClassifier(cfg.Detect.Threshold)
			result := detect.NewResult(classifier.Classify(snap.Image, lib), snap.At)

			labels := make([]string, 0, len(result.Scores))
			for name := range result.Scores {
				labels = append(labels, name)
			}
			sort.Strings(labels)

			out := cmd.OutOrStdout()
			t := cli.NewTable(out, "Label", "Templates", "Score", "Match")
			for _, name := range labels {
				score := result.Scores[name]
				match := cli.SubtleStyle.Render("no")
				if score >= classifier.Threshold {
					match = cli.SuccessStyle.Render("yes")
				}
				t.Row(name, len(lib.TemplatesFor(name)), fmt.Sprintf("%.3f", score), match)
			}
			if err := t.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nCandidates: %v\nResolved:   %s\n",
				result.Candidates, cli.LabelStyle(result.Name).Render(detect.DisplayName(result.Name)))
			return nil
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "classify a saved screenshot instead of the screen")
	return cmd
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the loaded template groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib := templates.Load(cfg.Paths.Templates)
			defer lib.Close()

			out := cmd.OutOrStdout()
			if lib.Len() == 0 {
				fmt.Fprintln(out, cli.WarningStyle.Render("No templates under "+cfg.Paths.Templates))
				return nil
			}
			t := cli.NewTable(out, "Label", "Kind", "Images", "Files")
			for _, name := range lib.Labels() {
				kind := detect.ParseLabel(name).String()
				group := lib.TemplatesFor(name)
				files := ""
				for i, tpl := range group {
					if i > 0 {
						files += ", "
					}
					files += fmt.Sprintf("%s (%dx%d)", filepath.Base(tpl.Path), tpl.Image.Width(), tpl.Image.Height())
				}
				t.Row(cli.LabelStyle(name).Render(name), kind, len(group), files)
			}
			if err := t.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.SubtleStyle.Render(lib.Summary()))
			return nil
		},
	}
}
