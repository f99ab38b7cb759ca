package model

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// fluxData holds the samples of one spectral data file.
type fluxData struct {
	wav []float64 // observed wavelength (Angstrom)
	flx []float64 // observed spectral flux
	unc []float64 // flux uncertainty
}

// readFluxData reads whitespace-separated columns of wavelength, flux
// and noise, one sample per line. Lines starting with '#' and blank
// lines are skipped; extra columns are ignored.
func readFluxData(r io.Reader) (*fluxData, error) {
	d := &fluxData{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, &ParseError{Reason: "input failed: expected at least three data columns"}
		}

		var row [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, &ParseError{Reason: "input failed: " + err.Error()}
			}
			row[i] = v
		}

		d.wav = append(d.wav, row[0])
		d.flx = append(d.flx, row[1])
		d.unc = append(d.unc, row[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return d, nil
}
