package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formset/pkg/formset"
)

type inspectOutput struct {
	Prefix          string `json:"prefix"`
	HiddenField     string `json:"hiddenField"`
	FormPK          string `json:"formPK"`
	Src             string `json:"src"`
	SearchField     string `json:"searchField"`
	Exclude         bool   `json:"excludeCategories"`
	ExcludeParam    string `json:"excludeParam"`
	MinSearchLength int    `json:"minSearchLength"`
	TotalFormsName  string `json:"totalFormsName"`
	ExtraTemplate   string `json:"extraTemplate"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the effective form-set settings and extra-entry template",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cfg, cfg.Server.BasePath, logger)
		if err != nil {
			return err
		}
		opts := formset.NewOptions(rt.controller...)
		extra, err := rt.renderer.ExtraTemplate()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(inspectOutput{
			Prefix:          opts.Prefix,
			HiddenField:     opts.HiddenField,
			FormPK:          opts.FormPK,
			Src:             opts.Src,
			SearchField:     opts.SearchField,
			Exclude:         opts.ExcludeCategories,
			ExcludeParam:    opts.ExcludeParam,
			MinSearchLength: opts.MinSearchLength,
			TotalFormsName:  formset.TotalFormsName(opts.Prefix),
			ExtraTemplate:   extra,
		})
	},
}
