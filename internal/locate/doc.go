// Package locate scores mask components against geometric and photometric
// priors and decides, through a three-tier fallback chain, where the ticket
// and its embedded label sit in a frame.
//
// # Fallback Tiers
//
// Each tier produces a confidence estimate capped to a tier-specific ceiling
// so degraded evidence can never masquerade as a fully confident detection:
//
//  1. Primary: document and label candidates both present and scoring above
//     their minimums, combined confidence above the pass threshold.
//  2. Label-only: a strong label candidate alone; the ticket box is inferred
//     from the fixed, known label-within-ticket layout.
//  3. Edge: the best edge-mask candidate stands in for the ticket box.
//
// Every rejection records an enumerated reason code; the codes and the stage
// tag are part of the observable contract and stable for tooling.
package locate
