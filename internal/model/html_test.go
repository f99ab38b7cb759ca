package model

import (
	"strings"
	"testing"

	"github.com/especia/especia/internal/profiles"
)

const twoSectionModel = `
{
sec1 test.dat 5000.0 5005.0 1
50.0 30.0 80.0 1
la 1215.6701 1215.0 1216.0 0
   0.4164 0.0 1.0 0
   3.114 3.1135 3.1145 1
   0.0 -10.0 10.0 0
   25.0 5.0 50.0 1
   13.5 12.0 15.0 1
}
{
sec2 test.dat 5005.0 5010.0 1
sec1
lb 1215.6701 1215.0 1216.0 0
   0.4164 0.0 1.0 0
   3.1170 3.1165 3.1175 1
   0.0 -10.0 10.0 0
   25.0 5.0 50.0 1
   13.0 12.0 15.0 1
}
`

func readTwoSections(t *testing.T) *Model {
	t.Helper()
	m, err := Read(strings.NewReader(twoSectionModel), dopplerFactory(t), memOpener(map[string]string{"test.dat": testData()}))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSectionResolutionAlias(t *testing.T) {
	m := readTwoSections(t)

	j := m.isc[m.sim["sec1"]]
	k := m.isc[m.sim["sec2"]]

	if m.val[k] != m.val[j] || m.msk[k] != m.msk[j] || m.ind[k] != m.ind[j] {
		t.Error("sec2 does not inherit the resolution parameter of sec1")
	}

	// One shared resolution plus three free line parameters each.
	if got := m.ParameterCount(); got != 7 {
		t.Errorf("free parameter count %d, want 7", got)
	}
}

func TestWriteReport(t *testing.T) {
	m := readTwoSections(t)

	x := m.InitialValues()
	z := make([]float64, len(x))
	for i := range z {
		z[i] = 1.0e-04
	}
	m.Apply(x, z)

	var sb strings.Builder
	if err := m.WriteReport(&sb); err != nil {
		t.Fatal(err)
	}
	report := sb.String()

	for _, want := range []string{
		"<!DOCTYPE html PUBLIC \"-//W3C//DTD HTML 4.01 Transitional//EN\">",
		"<data>",
		"</data>",
		"<td>Section</td>",
		"<td>sec1</td>",
		"<td>sec2</td>",
		"<td>Line</td>",
		"<td>la</td>",
		"<td>lb</td>",
		"&plusmn;",
		"Legendre Basis<br>Polynomials",
		"Resolution<br>(10<sup>3</sup>)",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report lacks %q", want)
		}
	}

	// A Doppler model has no alpha variation column.
	if strings.Contains(report, "&Delta;&alpha;") {
		t.Error("doppler report carries the alpha variation column")
	}
}

func TestWriteReportDeterministic(t *testing.T) {
	render := func() string {
		m := readTwoSections(t)
		x := m.InitialValues()
		m.Apply(x, make([]float64, len(x)))

		var sb strings.Builder
		if err := m.WriteReport(&sb); err != nil {
			t.Fatal(err)
		}
		return sb.String()
	}

	if render() != render() {
		t.Error("two renderings of the same model differ")
	}
}

func TestWriteModelBlock(t *testing.T) {
	m := readTwoSections(t)

	var sb strings.Builder
	if err := m.WriteModelBlock(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()

	if !strings.Contains(out, "<model>") || !strings.Contains(out, "</model>") {
		t.Error("model block not embedded")
	}
	if !strings.Contains(out, "sec2 test.dat") {
		t.Error("raw model text not embedded")
	}
}

func TestManyMultipletReportColumn(t *testing.T) {
	text := `
{
sec1 test.dat 5000.0 5010.0 1
50.0 30.0 80.0 0
la 1548.2049 1548.0 1549.0 0
   0.1899 0.0 1.0 0
   2.23 2.2295 2.2305 1
   0.0 -10.0 10.0 0
   12.0 5.0 50.0 1
   14.0 12.0 15.0 1
   0.05 0.0 0.1 0
   0.0 -50.0 50.0 1
}
`
	f, ok := profiles.ForName("many-multiplet")
	if !ok {
		t.Fatal("many-multiplet factory not registered")
	}

	m, err := Read(strings.NewReader(text), f, memOpener(map[string]string{"test.dat": testData()}))
	if err != nil {
		t.Fatal(err)
	}

	x := m.InitialValues()
	m.Apply(x, make([]float64, len(x)))

	var sb strings.Builder
	if err := m.WriteReport(&sb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "&Delta;&alpha;") {
		t.Error("many-multiplet report lacks the alpha variation column")
	}
}
