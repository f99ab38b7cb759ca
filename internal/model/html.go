package model

import (
	"fmt"
	"io"
	"math"
	"sort"
)

const doctype = "<!DOCTYPE html PUBLIC \"-//W3C//DTD HTML 4.01 Transitional//EN\">"

// The speed of light (km s-1) used to convert the fitted redshift and
// radial velocity into an observed wavelength.
const speedOfLightKms = 299792.458

// WriteModelBlock writes the raw model definition, embedded in an HTML
// comment, to the report stream.
func (m *Model) WriteModelBlock(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\n<html>\n<!--\n<model>\n%s</model>\n-->\n</html>\n", doctype, ensureNewline(m.text))
	return err
}

// WriteReport writes the fitted-data dump and the section and line
// parameter tables as an HTML document.
func (m *Model) WriteReport(w io.Writer) error {
	fmt.Fprintf(w, "%s\n<html>\n<!--\n<data>\n", doctype)
	for _, id := range sortedKeys(m.sim) {
		if err := m.sections[m.sim[id]].put(w); err != nil {
			return err
		}
	}
	fmt.Fprint(w, "</data>\n-->\n")

	fmt.Fprint(w, "<head>\n  <title>Parameter Table</title>\n</head>\n<body>\n")

	if err := m.writeSectionTable(w); err != nil {
		return err
	}
	fmt.Fprint(w, "<br>\n")
	if err := m.writeLineTable(w); err != nil {
		return err
	}

	fmt.Fprint(w, "<address>\n Created by Evolutionary spectrum inversion and analysis (Especia).\n</address>\n")
	_, err := fmt.Fprint(w, "</body>\n</html>\n")
	return err
}

func (m *Model) writeSectionTable(w io.Writer) error {
	fmt.Fprint(w, "<table border=\"1\" cellspacing=\"2\" cellpadding=\"2\" width=\"100%\">\n")
	fmt.Fprint(w, "  <thead align=\"center\" valign=\"middle\">\n")
	fmt.Fprint(w, "    <tr>\n")
	fmt.Fprint(w, "      <td>Section</td>\n")
	fmt.Fprint(w, "      <td>Start<br>Wavelength<br>(&Aring;)</td>\n")
	fmt.Fprint(w, "      <td>End<br>Wavelength<br>(&Aring;)</td>\n")
	fmt.Fprint(w, "      <td>Legendre Basis<br>Polynomials</td>\n")
	fmt.Fprint(w, "      <td>Resolution<br>(10<sup>3</sup>)</td>\n")
	fmt.Fprint(w, "      <td>Data Points</td>\n")
	fmt.Fprint(w, "      <td>Cost</td>\n")
	fmt.Fprint(w, "      <td>Cost per<br>Data Point</td>\n")
	fmt.Fprint(w, "    </tr>\n")
	fmt.Fprint(w, "  </thead>\n")
	fmt.Fprint(w, "  <tbody align=\"left\">\n")

	for _, id := range sortedKeys(m.sim) {
		j := m.sim[id]
		sec := m.sections[j]
		px := sec.ValidDataCount()
		st := sec.CachedCost()

		fmt.Fprint(w, "    <tr>\n")
		fmt.Fprintf(w, "      <td>%s</td>\n", id)
		fmt.Fprintf(w, "      <td>%.2f</td>\n", sec.LowerBound())
		fmt.Fprintf(w, "      <td>%.2f</td>\n", sec.UpperBound())
		fmt.Fprintf(w, "      <td>%d</td>\n", m.nle[j])
		fmt.Fprintf(w, "      <td>%s</td>\n", m.formatParameter("%.2f", m.isc[j]))
		fmt.Fprintf(w, "      <td>%d</td>\n", px)
		fmt.Fprintf(w, "      <td><strong>%.2f</strong></td>\n", st)
		fmt.Fprintf(w, "      <td>%.2f</td>\n", st/float64(px))
		fmt.Fprint(w, "    </tr>\n")
	}

	fmt.Fprint(w, "  </tbody>\n")
	_, err := fmt.Fprint(w, "</table>\n")
	return err
}

func (m *Model) writeLineTable(w io.Writer) error {
	manyMultiplet := m.factory.Name == "many-multiplet"

	fmt.Fprint(w, "<table border=\"1\" cellspacing=\"2\" cellpadding=\"2\" width=\"100%\">\n")
	fmt.Fprint(w, "  <thead align=\"center\" valign=\"middle\">\n")
	fmt.Fprint(w, "    <tr>\n")
	fmt.Fprint(w, "      <td>Line</td>\n")
	fmt.Fprint(w, "      <td>Observed<br>Wavelength<br>(&Aring;)</td>\n")
	fmt.Fprint(w, "      <td>Rest<br>Wavelength<br>(&Aring;)</td>\n")
	fmt.Fprint(w, "      <td>Oscillator<br>Strength</td>\n")
	fmt.Fprint(w, "      <td>Redshift</td>\n")
	fmt.Fprint(w, "      <td>Radial<br>Velocity<br>(km s<sup>-1</sup>)</td>\n")
	fmt.Fprint(w, "      <td>Broadening<br>Velocity<br>(km s<sup>-1</sup>)</td>\n")
	fmt.Fprint(w, "      <td>Log. Column<br>Density<br>(cm<sup>-2</sup>)</td>\n")
	if manyMultiplet {
		fmt.Fprint(w, "      <td>&Delta;&alpha;/&alpha;<br>(10<sup>-6</sup>)</td>\n")
	}
	fmt.Fprint(w, "    </tr>\n")
	fmt.Fprint(w, "  </thead>\n")
	fmt.Fprint(w, "  <tbody align=\"left\">\n")

	for _, id := range sortedKeys(m.pim) {
		j := m.pim[id]

		x := m.val[j]
		z := m.val[j+2]
		v := m.val[j+3]
		obs := x * (1.0 + z) * (1.0 + v/speedOfLightKms)
		dx := m.err[j]
		dz := m.err[j+2]
		dv := m.err[j+3]
		dObs := dx + x*math.Sqrt(sqr((1.0+v/speedOfLightKms)*dz)+sqr((1.0+z)*dv/speedOfLightKms))

		fmt.Fprint(w, "    <tr>\n")
		fmt.Fprintf(w, "      <td>%s</td>\n", id)
		fmt.Fprintf(w, "      <td>%.4f &plusmn; %.4f</td>\n", obs, dObs)
		fmt.Fprintf(w, "      <td>%s</td>\n", m.formatParameter("%.4f", j))
		fmt.Fprintf(w, "      <td>%s</td>\n", m.formatParameter("%.3e", j+1))
		fmt.Fprintf(w, "      <td>%s</td>\n", m.formatParameter("%.7f", j+2))
		fmt.Fprintf(w, "      <td>%s</td>\n", m.formatParameter("%.3f", j+3))
		fmt.Fprintf(w, "      <td>%s</td>\n", m.formatParameter("%.3f", j+4))
		fmt.Fprintf(w, "      <td>%s</td>\n", m.formatParameter("%.3f", j+5))
		if manyMultiplet {
			fmt.Fprintf(w, "      <td>%s</td>\n", m.formatParameter("%.3f", j+7))
		}
		fmt.Fprint(w, "    </tr>\n")
	}

	fmt.Fprint(w, "  </tbody>\n")
	_, err := fmt.Fprint(w, "</table>\n")
	return err
}

// formatParameter formats a parameter value, appending its uncertainty
// when the parameter is free.
func (m *Model) formatParameter(format string, i int) string {
	s := fmt.Sprintf(format, m.val[i])
	if m.msk[i] {
		s += " &plusmn; " + fmt.Sprintf(format, m.err[i])
	}
	return s
}

func sqr(x float64) float64 {
	if x == 0.0 {
		return 0.0
	}
	return x * x
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ensureNewline(s string) string {
	if s == "" || s[len(s)-1] == '\n' {
		return s
	}
	return s + "\n"
}
