// SPDX-License-Identifier: MIT

// Package onsager computes Onsager transport coefficients for solute and
// defect diffusion in crystals.
//
// What is onsager?
//
//	A Go library and command line that brings together:
//		• Crystal symmetry: lattice point groups, Wyckoff sets, tensor bases
//		• Defect states: vacancies, dumbbells and solute-defect complexes
//		• Star sets: symmetry-reduced shells of pair states and jumps
//		• Vector stars: the symmetric vector basis of the kinetic shell
//		• Lattice Green's functions: Fourier inversion of the bare rates
//		• Transport: vacancy-mediated Lvv, Lss, Lsv and interstitial D
//
// Why onsager?
//
//   - Exact in the dilute limit: no Monte Carlo noise
//   - Stable at extreme exchange ratios through asymptotic solvers
//   - Reusable: a calculator is built once and solved for many rates
//   - Persistent: calculators and their Green's function cache can be stored
//
// Everything is organized under these subpackages:
//
//	crystal/    lattices, basis, space group operations and tensor helpers
//	orbit/      generic orbit partition of a finite group action
//	states/     defect and complex states with their star sets
//	jumpnet/    symmetry classes of defect jumps
//	shells/     thermodynamic, kinetic and GF star sets, omega networks
//	vstar/      vector-star basis and its expansions
//	greens/     lattice Green's function and bare diffusivity
//	transport/  vacancy-mediated and interstitial calculators
//	config/     YAML calculation documents
//	store/      persisted calculators
//	telemetry/  Prometheus metrics
//	cmd/        the onsager command line
//
// Supporting packages matrix/, core/ and bfs/ provide dense linear algebra
// and the state graph used by the connectivity check.
//
// Quick start:
//
//	crys, _ := crystal.Stock("fcc")
//	net, _ := jumpnet.Sites(crys, 0, 0.75)
//	vm, _ := transport.New(ctx, net, 1)
//	bf, _ := transport.PreEne2BetaFree(kT, preene)
//	res, _ := vm.Lij(ctx, bf)
//	fmt.Println(res.Lss)
package onsager
