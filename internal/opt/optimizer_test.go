package opt

import (
	"math"
	"testing"
)

func sphere(x []float64) float64 {
	var y float64
	for _, v := range x {
		y += v * v
	}
	return y
}

func cigar(x []float64) float64 {
	var y float64
	for _, v := range x[1:] {
		y += v * v
	}
	return 1.0e+06*y + x[0]*x[0]
}

func rosenbrock(x []float64) float64 {
	var y float64
	for i := 0; i < len(x)-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1.0 - x[i]
		y += 100.0*a*a + b*b
	}
	return y
}

func testConfig(stopGeneration uint64) Config {
	return Config{
		Dimension:      10,
		ParentNumber:   10,
		PopulationSize: 40,
		UpdateModulus:  1,
		AccuracyGoal:   1.0e-06,
		StopGeneration: stopGeneration,
		RandomSeed:     31415,
	}
}

func constant(n int, v float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = v
	}
	return x
}

func TestMinimizeSphere(t *testing.T) {
	o, err := New(testConfig(200))
	if err != nil {
		t.Fatal(err)
	}

	res, err := o.Minimize(sphere, constant(10, 1.0), constant(10, 1.0), 1.0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !res.Optimized {
		t.Fatal("sphere: not optimized")
	}
	if res.Underflow {
		t.Fatal("sphere: mutation variance underflow")
	}
	if math.Abs(res.Fitness) > 1.0e-10 {
		t.Errorf("sphere: fitness %g", res.Fitness)
	}
	for i, v := range res.X {
		if math.Abs(v) > 1.0e-06 {
			t.Errorf("sphere: parameter %d is %g", i, v)
		}
	}
}

func TestMinimizeCigar(t *testing.T) {
	o, err := New(testConfig(400))
	if err != nil {
		t.Fatal(err)
	}

	res, err := o.Minimize(cigar, constant(10, 1.0), constant(10, 1.0), 1.0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !res.Optimized {
		t.Fatal("cigar: not optimized")
	}
	if res.Underflow {
		t.Fatal("cigar: mutation variance underflow")
	}
	if math.Abs(res.Fitness) > 1.0e-10 {
		t.Errorf("cigar: fitness %g", res.Fitness)
	}
	for i, v := range res.X {
		if math.Abs(v) > 1.0e-06 {
			t.Errorf("cigar: parameter %d is %g", i, v)
		}
	}
}

func TestMinimizeRosenbrock(t *testing.T) {
	o, err := New(testConfig(400))
	if err != nil {
		t.Fatal(err)
	}

	res, err := o.Minimize(rosenbrock, constant(10, 0.0), constant(10, 1.0), 0.1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !res.Optimized {
		t.Fatal("rosenbrock: not optimized")
	}
	if res.Underflow {
		t.Fatal("rosenbrock: mutation variance underflow")
	}
	if math.Abs(res.Fitness) > 1.0e-10 {
		t.Errorf("rosenbrock: fitness %g", res.Fitness)
	}
	for i, v := range res.X {
		if math.Abs(v-1.0) > 1.0e-06 {
			t.Errorf("rosenbrock: parameter %d is %g", i, v)
		}
	}
}

func TestMaximize(t *testing.T) {
	o, err := New(testConfig(200))
	if err != nil {
		t.Fatal(err)
	}

	// The negated sphere has its maximum at the origin.
	res, err := o.Maximize(func(x []float64) float64 { return -sphere(x) }, constant(10, 1.0), constant(10, 1.0), 1.0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !res.Optimized {
		t.Fatal("negated sphere: not optimized")
	}
	for i, v := range res.X {
		if math.Abs(v) > 1.0e-06 {
			t.Errorf("negated sphere: parameter %d is %g", i, v)
		}
	}
}

func TestMinimizeDeterministic(t *testing.T) {
	run := func() *Result {
		o, err := New(testConfig(200))
		if err != nil {
			t.Fatal(err)
		}
		res, err := o.Minimize(sphere, constant(10, 1.0), constant(10, 1.0), 1.0, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	a := run()
	b := run()

	if a.Fitness != b.Fitness {
		t.Errorf("fitness differs: %g != %g", a.Fitness, b.Fitness)
	}
	if a.Generation != b.Generation {
		t.Errorf("generation differs: %d != %d", a.Generation, b.Generation)
	}
	for i := range a.X {
		if a.X[i] != b.X[i] {
			t.Errorf("parameter %d differs: %g != %g", i, a.X[i], b.X[i])
		}
	}
}

func TestMinimizeBoxConstrained(t *testing.T) {
	o, err := New(testConfig(300))
	if err != nil {
		t.Fatal(err)
	}

	// The minimum of the shifted sphere lies on the box boundary.
	f := func(x []float64) float64 {
		var y float64
		for _, v := range x {
			y += (v + 2.0) * (v + 2.0)
		}
		return y
	}
	constraint := NewBoxConstraint(constant(10, -1.0), constant(10, 3.0))

	res, err := o.Minimize(f, constant(10, 1.0), constant(10, 1.0), 1.0, constraint, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range res.X {
		if math.Abs(v+1.0) > 5.0e-02 {
			t.Errorf("parameter %d is %g, want close to the bound -1", i, v)
		}
	}
}

func TestNotConverged(t *testing.T) {
	cfg := testConfig(3)

	o, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	res, err := o.Minimize(rosenbrock, constant(10, 0.0), constant(10, 1.0), 0.1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if res.Optimized {
		t.Error("three generations should not satisfy the accuracy goal")
	}
	if res.Generation != 3 {
		t.Errorf("generation %d, want 3", res.Generation)
	}
}

func TestUncertaintiesFilled(t *testing.T) {
	o, err := New(testConfig(200))
	if err != nil {
		t.Fatal(err)
	}

	res, err := o.Minimize(sphere, constant(10, 1.0), constant(10, 1.0), 1.0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	n := 10
	for i := 0; i < n; i++ {
		want := res.GlobalStepSize * math.Sqrt(res.C[i*n+i])
		if res.Z[i] != want {
			t.Errorf("uncertainty %d: got %g, want %g", i, res.Z[i], want)
		}
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"dimension", func(c *Config) { c.Dimension = 0 }},
		{"parents", func(c *Config) { c.ParentNumber = 0 }},
		{"population", func(c *Config) { c.PopulationSize = 1 }},
		{"parents exceed population", func(c *Config) { c.ParentNumber = c.PopulationSize + 1 }},
		{"modulus", func(c *Config) { c.UpdateModulus = 0 }},
		{"accuracy", func(c *Config) { c.AccuracyGoal = 0.0 }},
		{"stop generation", func(c *Config) { c.StopGeneration = 0 }},
	}

	for _, tc := range cases {
		cfg := testConfig(100)
		tc.mutate(&cfg)
		if _, err := New(cfg); err == nil {
			t.Errorf("%s: expected configuration error", tc.name)
		}
	}
}

func TestStrategyParameters(t *testing.T) {
	cfg := testConfig(100)
	st := cfg.derive()

	var sum float64
	for i, w := range st.weights {
		if w <= 0.0 {
			t.Errorf("weight %d not positive: %g", i, w)
		}
		if i > 0 && w >= st.weights[i-1] {
			t.Errorf("weights not strictly descending at %d", i)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1.0e-12 {
		t.Errorf("weights sum to %g", sum)
	}

	if st.mueff <= 1.0 || st.mueff > float64(cfg.ParentNumber) {
		t.Errorf("effective variance %g out of range", st.mueff)
	}
	if st.cs <= 0.0 || st.cs >= 1.0 {
		t.Errorf("step size cumulation rate %g out of range", st.cs)
	}
	if st.cc <= 0.0 || st.cc >= 1.0 {
		t.Errorf("distribution cumulation rate %g out of range", st.cc)
	}
	if st.ccov <= 0.0 || st.ccov >= 1.0 {
		t.Errorf("covariance adaption rate %g out of range", st.ccov)
	}
	if st.damp < 1.0 {
		t.Errorf("step size damping %g below one", st.damp)
	}

	// E ||N(0, I)|| for n = 10.
	want := math.Sqrt(10.0) * (1.0 - 1.0/40.0 + 1.0/2100.0)
	if math.Abs(st.chiN-want) > 1.0e-12 {
		t.Errorf("chiN %g, want %g", st.chiN, want)
	}
}
