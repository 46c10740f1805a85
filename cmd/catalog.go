package main

import (
	"encoding/hex"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/fieldobs-cli/internal/fieldmeta"
)

var boundaryCmd = &cobra.Command{
	Use:   "boundary <field-id>",
	Short: "Print a field's boundary",
	Long:  "Prints the block feature of a field as GeoJSON. --geometry prints the bare geometry; --ewkb prints it as hex-encoded EWKB (SRID 4326).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		catalog, err := initCatalog(ctx)
		if err != nil {
			return err
		}

		b, err := catalog.Boundary(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "boundary")
		}

		out := cmd.OutOrStdout()
		geometryOnly, _ := cmd.Flags().GetBool("geometry")
		asEWKB, _ := cmd.Flags().GetBool("ewkb")
		switch {
		case asEWKB:
			data, err := b.EWKB()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, hex.EncodeToString(data))
			return err
		case geometryOnly:
			data, err := geojson.Marshal(b.Geometry)
			if err != nil {
				return eris.Wrap(err, "boundary: encode geometry")
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		default:
			return writeJSON(out, b.Feature())
		}
	},
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List site ids",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		catalog, err := initCatalog(ctx)
		if err != nil {
			return err
		}

		types, _ := cmd.Flags().GetStringSlice("type")
		sites, err := catalog.Sites(ctx, types...)
		if err != nil {
			return eris.Wrap(err, "sites")
		}
		return writeResult(cmd.OutOrStdout(), sites)
	},
}

var siteTypesCmd = &cobra.Command{
	Use:   "site-types",
	Short: "List the site type of every site, in document order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		catalog, err := initCatalog(ctx)
		if err != nil {
			return err
		}

		types, err := catalog.SiteTypes(ctx)
		if err != nil {
			return eris.Wrap(err, "site-types")
		}
		return writeResult(cmd.OutOrStdout(), types)
	},
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List field ids",
	Long:  "Lists the id of every field block. With --site or --site-type, a field is listed when it matches either filter.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		catalog, err := initCatalog(ctx)
		if err != nil {
			return err
		}

		var filter fieldmeta.Filter
		filter.Sites, _ = cmd.Flags().GetStringSlice("site")
		filter.SiteTypes, _ = cmd.Flags().GetStringSlice("site-type")

		fields, err := catalog.Fields(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "fields")
		}
		return writeResult(cmd.OutOrStdout(), fields)
	},
}

func init() {
	boundaryCmd.Flags().Bool("geometry", false, "print only the GeoJSON geometry")
	boundaryCmd.Flags().Bool("ewkb", false, "print the geometry as hex-encoded EWKB")
	boundaryCmd.MarkFlagsMutuallyExclusive("geometry", "ewkb")

	sitesCmd.Flags().StringSlice("type", nil, "only sites of these site types")

	fieldsCmd.Flags().StringSlice("site", nil, "fields of these sites")
	fieldsCmd.Flags().StringSlice("site-type", nil, "fields of these site types")

	rootCmd.AddCommand(boundaryCmd, sitesCmd, siteTypesCmd, fieldsCmd)
}
