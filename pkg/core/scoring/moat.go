package scoring

// Moat is the composite economic moat estimate. Score runs 0 to 5 in
// half-point steps; Type is "Wide", "Narrow" or "None".
type Moat struct {
	Score float64
	Type  string
}

// MoatInputs are the five proxy signals behind the composite:
// brand (gross margin), barriers (ROIC), scale (revenue), network
// effect (net margin) and switching cost (revenue growth).
type MoatInputs struct {
	GrossMarginPct float64
	ROIC           float64
	Revenue        float64
	NetMarginPct   float64
	RevenueGrowth  float64
}

// ComputeMoat scores each proxy a full point at the high threshold and a
// half point at the low one, then maps the sum to a moat type.
func ComputeMoat(in MoatInputs) Moat {
	score := 0.0

	switch {
	case in.GrossMarginPct > 40:
		score++
	case in.GrossMarginPct > 20:
		score += 0.5
	}
	switch {
	case in.ROIC > 0.15:
		score++
	case in.ROIC > 0.10:
		score += 0.5
	}
	switch {
	case in.Revenue > 100e9:
		score++
	case in.Revenue > 10e9:
		score += 0.5
	}
	switch {
	case in.NetMarginPct > 20:
		score++
	case in.NetMarginPct > 10:
		score += 0.5
	}
	switch {
	case in.RevenueGrowth > 0.15:
		score++
	case in.RevenueGrowth > 0.05:
		score += 0.5
	}

	moatType := "None"
	if score > 3 {
		moatType = "Wide"
	} else if score >= 2 {
		moatType = "Narrow"
	}
	return Moat{Score: score, Type: moatType}
}
