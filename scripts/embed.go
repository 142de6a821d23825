// Package scripts bundles the example Risor visitor scripts shipped with
// avulto. Each script walks target_proc on target_type through walk_proc and
// reports what it finds with log.
package scripts

import "embed"

//go:embed visitors/*.risor
var FS embed.FS
