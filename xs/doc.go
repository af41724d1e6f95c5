// Package xs evaluates neutron cross sections for nuclides, elements and
// materials and provides the Monte Carlo sampling primitives built on them.
//
// # Reading Guide
//
// Start with these files:
//   - session.go: the Session bundling source configuration, the table store
//     and the boundary policy, plus the process-wide default
//   - material.go: constituents, atom densities, macroscopic cross sections
//     and mean free path
//   - sampler.go: nuclide and reaction sampling from caller-supplied draws
//
// # Architecture
//
// The xs package composes leaf packages:
//   - xs/source/: which data source a nuclide is read from
//   - xs/library/: fetching, disk caching and parsing of reaction files
//   - xs/table/: per-reaction tables and interpolation
//   - xs/nucdata/: nuclide identifiers, natural abundances, atomic masses
//   - xs/xserr/: the error taxonomy
//
// Reaction data is loaded lazily on first use and shared through the
// session's store. Materials hold only nuclide ids and fractions, so every
// query is a pure function of already-loaded, immutable tables and may run
// concurrently.
//
// # Units
//
// Energies are in eV, microscopic cross sections in barns, densities in
// g/cm3, atom densities in atoms/cm3 and macroscopic cross sections in 1/cm.
package xs
