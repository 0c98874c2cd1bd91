package pvac

import (
	"github.com/pvaclabs/pvac/field"
	"github.com/pvaclabs/pvac/lpn"
)

// lpnParams projects a Params down to the shape lpn.PRFR needs.
func lpnParams(p Params) lpn.Params {
	return lpn.Params{
		N:      p.LPNN(),
		T:      p.LPNT(),
		TauNum: p.LPNTauNum(),
		TauDen: p.LPNTauDen(),
	}
}

// prfR evaluates the scheme's LPN-PRF for a BASE layer's seed.
func prfR(pub PublicKey, sec SecretKey, seed RSeed) field.Elt {
	lpnSeed := lpn.Seed{
		Ztag:    seed.ZTag,
		NonceLo: seed.Nonce.Lo,
		NonceHi: seed.Nonce.Hi,
	}
	key := lpn.Key{PRFKeys: sec.PRFKeys, Secret: sec.LPNSecret}
	return lpn.PRFR(key, lpnParams(pub.Params), pub.CanonTag, pub.HDigest, lpnSeed)
}

// layerR computes the R value for every layer in L, in index order:
// BASE layers read prf_R(seed); PROD layers read R[pa]*R[pb]. PROD
// layers only ever reference strictly earlier indices, so a single
// forward pass suffices.
func layerR(pub PublicKey, sec SecretKey, layers []Layer) []field.Elt {
	r := make([]field.Elt, len(layers))
	for i, l := range layers {
		switch l.Rule {
		case Base:
			r[i] = prfR(pub, sec, l.Seed)
		case Prod:
			r[i] = lpn.CombineProductR(r[l.PA], r[l.PB])
		}
	}
	return r
}
