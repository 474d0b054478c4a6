package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/storeradar/radar-service/internal/geo"
)

// distanceCmd represents the distance command
var distanceCmd = &cobra.Command{
	Use:     "distance <lat1> <lng1> <lat2> <lng2>",
	Short:   "Great-circle distance between two points in km",
	Example: `  radar distance 37.5665 126.9780 35.1796 129.0756`,
	Args:    cobra.ExactArgs(4),
	RunE:    runDistance,
}

func init() {
	rootCmd.AddCommand(distanceCmd)
}

func runDistance(cmd *cobra.Command, args []string) error {
	coords := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q: %w", a, err)
		}
		coords[i] = v
	}
	if err := checkPoint(coords[0], coords[1]); err != nil {
		return err
	}
	if err := checkPoint(coords[2], coords[3]); err != nil {
		return err
	}

	km := geo.DistanceKm(coords[0], coords[1], coords[2], coords[3])
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%.3f km\n", km)
	return err
}

func checkPoint(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", lng)
	}
	return nil
}
