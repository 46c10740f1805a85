package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fieldobs-cli/internal/timeseries"
)

var timeseriesCmd = &cobra.Command{
	Use:   "timeseries",
	Short: "Stack timeseries CSVs into one table",
	Long:  "Fetches every CSV object under a field or site data-type prefix and prints them as one CSV, stacked in listing order. Output is always CSV.",
}

// -- timeseries field --

var timeseriesFieldCmd = &cobra.Command{
	Use:     "field <field-id> <data-type>",
	Short:   "Stack a field's CSVs, e.g. ki_0 soil_sensors",
	Args:    cobra.ExactArgs(2),
	Example: "  fieldobs timeseries field ki_0 soil_sensors",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}

		tbl, err := timeseries.NewAssembler(st).FetchField(ctx, args[0], args[1])
		if err != nil {
			return eris.Wrap(err, "timeseries field")
		}
		return tbl.WriteCSV(cmd.OutOrStdout())
	},
}

// -- timeseries site --

var timeseriesSiteCmd = &cobra.Command{
	Use:     "site <site-id> <data-type>",
	Short:   "Stack a site's CSVs, e.g. qvidja ec",
	Args:    cobra.ExactArgs(2),
	Example: "  fieldobs timeseries site qvidja ec",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}

		tbl, err := timeseries.NewAssembler(st).FetchSite(ctx, args[0], args[1])
		if err != nil {
			return eris.Wrap(err, "timeseries site")
		}
		return tbl.WriteCSV(cmd.OutOrStdout())
	},
}

var devicesCmd = &cobra.Command{
	Use:     "devices <site-id> <field-index> <kind>",
	Short:   "List the devices recorded for a field",
	Args:    cobra.ExactArgs(3),
	Example: "  fieldobs devices ki 0 soil_sensors",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}

		devices, err := timeseries.Devices(ctx, st, args[0], args[1], args[2])
		if err != nil {
			return eris.Wrap(err, "devices")
		}
		return writeResult(cmd.OutOrStdout(), devices)
	},
}

func init() {
	timeseriesCmd.AddCommand(timeseriesFieldCmd, timeseriesSiteCmd)
	rootCmd.AddCommand(timeseriesCmd, devicesCmd)
}
