package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kika/internal/units"
)

func convertCmd() *cobra.Command {
	var (
		temperature float64
		density     float64
		from        string
		to          string
		mass        float64
		file        string
		key         string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a temperature or density value between units",
		Example: `  kika convert --temperature 293.6 --from K --to MeV
  kika convert --density 1.0 --from g/cm3 --to atoms/barn-cm --mass 6
  kika convert --density 1.0 --from g/cm3 --to atoms/barn-cm --file water.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			hasTemperature, hasDensity := flags.Changed("temperature"), flags.Changed("density")
			switch {
			case hasTemperature == hasDensity:
				return errors.New("exactly one of --temperature or --density is required")
			case hasTemperature:
				fromUnit, err := units.ParseTemperatureUnit(from)
				if err != nil {
					return err
				}
				toUnit, err := units.ParseTemperatureUnit(to)
				if err != nil {
					return err
				}
				value, err := units.Temperature(temperature, fromUnit, toUnit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.6e %s\n", value, toUnit)
				return nil
			}

			fromUnit, err := units.ParseDensityUnit(from)
			if err != nil {
				return err
			}
			toUnit, err := units.ParseDensityUnit(to)
			if err != nil {
				return err
			}
			if file != "" && !flags.Changed("mass") {
				loaded, err := loadMaterials(file, key)
				if err != nil {
					return err
				}
				if mass, err = loaded[0].material.AverageAtomicMass(); err != nil {
					return err
				}
			}
			value, err := units.Density(density, fromUnit, toUnit, mass)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.6e %s\n", value, toUnit)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&temperature, "temperature", 0, "Temperature value to convert")
	flags.Float64Var(&density, "density", 0, "Density value to convert")
	flags.StringVar(&from, "from", "", "Source unit (K, MeV, g/cm3, atoms/barn-cm)")
	flags.StringVar(&to, "to", "", "Target unit (K, MeV, g/cm3, atoms/barn-cm)")
	flags.Float64Var(&mass, "mass", 0, "Average atomic mass in g/mol for density conversions")
	flags.StringVar(&file, "file", "", "Material file used to derive the average atomic mass")
	flags.StringVar(&key, "key", "", "Material key within --file")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
