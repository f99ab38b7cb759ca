package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/especia/especia/internal/equations"
	"github.com/spf13/cobra"
)

var (
	equationName string
	skipLines    int
)

var airtovacCmd = &cobra.Command{
	Use:   "airtovac < ISTREAM > OSTREAM",
	Short: "Convert photon wavelength in spectroscopic data from air to vacuum",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return convertWavelengths(os.Stdin, os.Stdout, true)
	},
}

var vactoairCmd = &cobra.Command{
	Use:   "vactoair < ISTREAM > OSTREAM",
	Short: "Convert photon wavelength in spectroscopic data from vacuum to air",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return convertWavelengths(os.Stdin, os.Stdout, false)
	},
}

func init() {
	for _, c := range []*cobra.Command{airtovacCmd, vactoairCmd} {
		c.Flags().StringVar(&equationName, "equation", "birch94", "Refraction equation: birch94, edlen53, edlen66")
		c.Flags().IntVar(&skipLines, "skip", 0, "Number of leading lines to skip")
		rootCmd.AddCommand(c)
	}
}

// convertWavelengths converts the first column of a wavelength, flux,
// noise table between air and vacuum, passing the other columns
// through.
func convertWavelengths(in io.Reader, out io.Writer, toVacuum bool) error {
	equation, ok := equations.ForName(equationName)
	if !ok {
		return &invalidArgumentError{reason: fmt.Sprintf("unknown equation %q", equationName)}
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	writer := bufio.NewWriter(out)
	defer writer.Flush()

	line := 0
	for scanner.Scan() {
		line++
		if line <= skipLines {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Fields(text)
		wavelength, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return &invalidArgumentError{reason: fmt.Sprintf("line %d: %q is not a wavelength", line, fields[0])}
		}

		if toVacuum {
			wavelength, err = equations.AirToVac(equation, wavelength)
			if err != nil {
				return err
			}
		} else {
			wavelength = equations.VacToAir(equation, wavelength)
		}

		fmt.Fprintf(writer, "%14.6f", wavelength)
		for _, f := range fields[1:] {
			fmt.Fprintf(writer, " %s", f)
		}
		fmt.Fprintln(writer)
	}
	return scanner.Err()
}
