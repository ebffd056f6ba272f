// Package fusion combines the per-source verdicts of a URL check into
// one final verdict by majority vote. The vote is symmetric: no source
// outweighs another, and a three-way disagreement settles on
// Suspicious.
package fusion
