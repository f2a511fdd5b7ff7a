// Package stages maps coarse job progress onto the client's fixed pipeline
// stages.
//
// Map is a pure function. Each call derives stage states from the snapshot's
// progress band and status, then merges with the previous states so a stage
// never moves backward.
package stages
