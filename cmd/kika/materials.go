package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"kika/internal/composition"
	"kika/internal/material"
	"kika/internal/presets"
)

type loadedMaterial struct {
	key      string
	material *material.Material
}

// loadMaterials reads every material in path, or only the one stored under
// key when key is set.
func loadMaterials(path, key string) ([]loadedMaterial, error) {
	doc, err := presets.LoadFile(path)
	if err != nil {
		return nil, err
	}

	var out []loadedMaterial
	for _, p := range doc.Materials {
		if key != "" && !strings.EqualFold(p.Key, key) {
			continue
		}
		m, err := p.Build()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, loadedMaterial{key: p.Key, material: m})
	}
	if len(out) == 0 {
		if key != "" {
			return nil, fmt.Errorf("%s: %w: %q", path, presets.ErrUnknownPreset, key)
		}
		return nil, fmt.Errorf("%s: no materials defined", path)
	}
	return out, nil
}

func infoCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Print a composition summary for each material in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadMaterials(args[0], key)
			if err != nil {
				return err
			}
			infos := make([]material.Info, 0, len(loaded))
			for _, l := range loaded {
				infos = append(infos, l.material.Info())
			}
			return writeJSON(cmd.OutOrStdout(), infos)
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Only report the material with this key")
	return cmd
}

func normalizeCmd() *cobra.Command {
	var (
		key       string
		fractions string
		expand    bool
		elements  []string
	)

	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Rescale fractions to sum to one and print the materials as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadMaterials(args[0], key)
			if err != nil {
				return err
			}

			doc := presets.Document{}
			for _, l := range loaded {
				if expand || len(elements) > 0 {
					if err := l.material.ExpandNaturalElements(elements...); err != nil {
						return fmt.Errorf("%s: %w", l.key, err)
					}
				}
				if fractions != "" {
					kind := composition.FractionType(strings.ToLower(strings.TrimSpace(fractions)))
					if err := l.material.ConvertFractions(kind); err != nil {
						return fmt.Errorf("%s: %w", l.key, err)
					}
				}
				l.material.Normalize()
				doc.Materials = append(doc.Materials, presets.FromMaterial(l.key, l.material))
			}

			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(doc); err != nil {
				return err
			}
			return encoder.Close()
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Only normalize the material with this key")
	cmd.Flags().StringVar(&fractions, "fractions", "", "Convert to atomic or weight fractions before normalizing")
	cmd.Flags().BoolVar(&expand, "expand", false, "Split natural elements into their isotopes before normalizing")
	cmd.Flags().StringSliceVar(&elements, "elements", nil, "Only expand these element symbols (implies --expand)")
	return cmd
}

func mcnpCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "mcnp <file>",
		Short: "Render MCNP material cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadMaterials(args[0], key)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, l := range loaded {
				if _, err := io.WriteString(out, l.material.MCNPCard()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Only render the material with this key")
	return cmd
}

func writeJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
