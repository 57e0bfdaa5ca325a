/*
package verifier generates a standalone on-chain verifier contract from a
fully-verified Phase 2 Groth16 verifying key.

Only Solidity generation against BN254 is supported, since BN254 is the only
curve with pairing precompiles (ecAdd at 0x06, ecMul at 0x07, ecPairing at
0x08) on Ethereum and its L2s. The generated contract embeds AlphaG1, BetaG2,
GammaG2, DeltaG2 and the IC vector as compile-time constants plus an
internal computeVkX helper that checks the public-input count and returns
IC[0]. It has no verifyProof function and makes no precompile calls.
*/
package verifier
