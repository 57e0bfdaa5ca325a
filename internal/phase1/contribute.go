package phase1

import (
	"math/big"

	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/keygen"
)

// Contribute applies one participant's secret (τ, α, β), held in priv, to
// prev and returns the resulting accumulator (§4.4.2). priv is consumed: the
// caller is expected to have obtained it from keygen.KeyGeneration and to
// defer priv.Zeroize() around the call.
//
// new.tau_g1[i]      = prev.tau_g1[i]      * τ^i
// new.tau_g2[i]       = prev.tau_g2[i]      * τ^i
// new.alpha_tau_g1[i] = prev.alpha_tau_g1[i] * α·τ^i
// new.beta_tau_g1[i]  = prev.beta_tau_g1[i]  * β·τ^i
// new.beta_g2         = prev.beta_g2         * β
func Contribute(prev *Accumulator, priv *keygen.PrivateKey, mode curve.BatchExpMode) *Accumulator {
	eng := prev.Engine
	tau, alpha, beta := priv.Tau(), priv.Alpha(), priv.Beta()

	tauPowersG1 := powersOf(eng, tau, len(prev.TauG1))
	tauPowersG2 := powersOf(eng, tau, len(prev.TauG2))
	alphaTauPowers := scaledPowers(eng, tau, alpha, len(prev.AlphaTauG1))
	betaTauPowers := scaledPowers(eng, tau, beta, len(prev.BetaTauG1))

	next := &Accumulator{
		Engine:         eng,
		Power:          prev.Power,
		PreviousDigest: prev.PreviousDigest,
		TauG1:          eng.BatchScalarMulG1(prev.TauG1, tauPowersG1, mode),
		TauG2:          eng.BatchScalarMulG2(prev.TauG2, tauPowersG2, mode),
		AlphaTauG1:     eng.BatchScalarMulG1(prev.AlphaTauG1, alphaTauPowers, mode),
		BetaTauG1:      eng.BatchScalarMulG1(prev.BetaTauG1, betaTauPowers, mode),
		BetaG2:         eng.ScalarMulG2(prev.BetaG2, beta),
	}
	return next
}

// powersOf returns [x^0, x^1, ..., x^(n-1)] mod the curve order.
func powersOf(eng curve.Engine, x *big.Int, n int) []*big.Int {
	order := eng.Order()
	out := make([]*big.Int, n)
	cur := big.NewInt(1)
	for i := 0; i < n; i++ {
		out[i] = new(big.Int).Set(cur)
		cur = new(big.Int).Mul(cur, x)
		cur.Mod(cur, order)
	}
	return out
}

// scaledPowers returns [c, c*x, c*x^2, ..., c*x^(n-1)] mod the curve order.
func scaledPowers(eng curve.Engine, x, c *big.Int, n int) []*big.Int {
	order := eng.Order()
	out := make([]*big.Int, n)
	cur := new(big.Int).Mod(c, order)
	for i := 0; i < n; i++ {
		out[i] = new(big.Int).Set(cur)
		cur = new(big.Int).Mul(cur, x)
		cur.Mod(cur, order)
	}
	return out
}
