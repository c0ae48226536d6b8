package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/dispatch"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/renderers/tui"
)

var (
	editValues string
	editFormat string
	editOutput string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a form-set interactively and print its submission values",
	Long: `edit searches and adds entries, removes them, and prints the resulting
management form values. --values seeds the form-set from a previous
submission (URL-encoded).`,
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editValues, "values", "", "URL-encoded submission to start from")
	editCmd.Flags().StringVarP(&editFormat, "format", "f", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	editCmd.Flags().StringVarP(&editOutput, "output", "o", "", "output file (stdout if empty)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cfg, "", logger)
	if err != nil {
		return err
	}

	var state *formset.State
	if editValues != "" {
		state, err = readState(editValues, rt.controller)
		if err != nil {
			return err
		}
	}

	ctrl, err := formset.New(state, append(rt.controller, formset.WithRenderer(rt.renderer), formset.WithLogger(logger))...)
	if err != nil {
		return err
	}

	editor, err := tui.NewEditor(dispatch.New(ctrl, dispatch.WithLogger(logger)),
		tui.WithOutputFormat(tui.OutputFormat(strings.ToLower(editFormat))),
		tui.WithMessages(cmd.ErrOrStderr()),
		tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
	)
	if err != nil {
		return err
	}

	out, err := editor.Run(cmd.Context())
	if err != nil {
		return err
	}

	if editOutput != "" {
		if err := os.WriteFile(editOutput, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		logger.Info("values written", zap.String("path", editOutput), zap.String("content_type", editor.ContentType()))
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func readState(path string, fns []formset.OptionFn) (*formset.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	values, err := url.ParseQuery(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parse values %s: %w", path, err)
	}
	return formset.ParseManagementForm(values, fns...)
}
